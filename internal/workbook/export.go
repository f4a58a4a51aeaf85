package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rise-pro/debt-aging/internal/payments"
)

// sheetPaymentExport is the title of the payment-order sheet.
const sheetPaymentExport = "הוראת תשלום"

// RenderPaymentExport builds a standalone payment-order workbook from
// an export: one row per export line plus a grand-total row.
func RenderPaymentExport(export *payments.Export) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetPaymentExport); err != nil {
		return nil, fmt.Errorf("RenderPaymentExport: renaming sheet: %w", err)
	}

	headers := []string{headerSupplierNo, headerSupplierName, "סכום", headerInvoiceDate, headerPaymentDate}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("RenderPaymentExport: %w", err)
		}
		if err := f.SetCellValue(sheetPaymentExport, cell, header); err != nil {
			return nil, fmt.Errorf("RenderPaymentExport: %w", err)
		}
	}

	if export.Label != "" {
		if err := f.SetCellValue(sheetPaymentExport, "G1", export.Label); err != nil {
			return nil, fmt.Errorf("RenderPaymentExport: label: %w", err)
		}
	}

	row := 2
	for _, line := range export.Rows {
		values := []interface{}{line.AccountID, line.Name, nil, line.InvoiceDate, line.PaymentDate}
		if line.Amount != nil {
			values[2] = *line.Amount
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("RenderPaymentExport: %w", err)
			}
			if err := f.SetCellValue(sheetPaymentExport, cell, v); err != nil {
				return nil, fmt.Errorf("RenderPaymentExport row %d: %w", row, err)
			}
		}
		row++
	}

	if err := f.SetCellValue(sheetPaymentExport, fmt.Sprintf("B%d", row), "סה\"כ"); err != nil {
		return nil, fmt.Errorf("RenderPaymentExport: total: %w", err)
	}
	if err := f.SetCellValue(sheetPaymentExport, fmt.Sprintf("C%d", row), export.Total); err != nil {
		return nil, fmt.Errorf("RenderPaymentExport: total: %w", err)
	}

	rtl := true
	if err := f.SetSheetView(sheetPaymentExport, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, fmt.Errorf("RenderPaymentExport: RTL view: %w", err)
	}
	return f, nil
}
