// Package workbook reads the aging-report and contact workbooks and
// renders the processed artifacts. It is the spreadsheet boundary of
// the system: everything past ReadLedger works on typed rows only.
package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rise-pro/debt-aging/internal/ledger"
)

// Hebrew column headers of the aging report and the contact helper.
const (
	headerAccount     = "חשבון"
	headerAmount      = "חוב לחשבונית"
	headerTxType      = "סוג תנועה"
	headerPaymentDate = "תאריך תשלום"
	headerInvoiceDate = "תאריך חשבונית"
	headerReference   = "אסמכתא"
	headerDetails     = "פרטים"
	headerTerms       = "תנאי תשלום"

	headerSupplierNo    = "מס ספק"
	headerSupplierName  = "שם ספק"
	headerAccountDesc   = "תאור חשבון"
	headerAccountDescV2 = "תיאור חשבון"

	headerEmail   = "מייל"
	headerEmailV2 = "מייל ספק"
	headerEmailEn = "Email"
	headerEmailAlt = "E-mail"
)

// Fallback 1-based columns when the report omits the name or payment
// date headers, matching the fixed layout of older report exports.
const (
	fallbackNameCol        = 3
	fallbackPaymentDateCol = 4
)

// Ledger is an ingested aging report: the open workbook, the detected
// layout and the column-mapped rows with sequence indexes assigned.
type Ledger struct {
	File        *excelize.File
	Sheet       string
	HeaderRow   int // 1-based
	CompanyName string
	Rows        []ledger.Row

	amountCol int // 1-based, for rendering fills
}

// ReadLedger opens an aging-report workbook and maps its rows. The
// header row is detected over rows 1 and 2, preferring the row that
// carries both the account and amount columns. Amounts and dates that
// fail to parse degrade the affected row, never the ingestion.
func ReadLedger(r io.Reader) (*Ledger, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ReadLedger: opening workbook: %w", err)
	}

	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("ReadLedger: reading sheet %q: %w", sheet, err)
	}

	headerRow, headers := detectHeaders(rows)

	accountCol, okAccount := headers[headerAccount]
	amountCol, okAmount := headers[headerAmount]
	if !okAccount || !okAmount {
		return nil, fmt.Errorf("ReadLedger: required columns %q and %q not found", headerAccount, headerAmount)
	}

	nameCol := firstColumn(headers, headerAccountDesc, headerSupplierName, headerAccountDescV2)
	if nameCol == 0 {
		nameCol = fallbackNameCol
	}
	paymentDateCol := headers[headerPaymentDate]
	if paymentDateCol == 0 {
		paymentDateCol = fallbackPaymentDateCol
	}
	typeCol := headers[headerTxType]
	invoiceDateCol := headers[headerInvoiceDate]
	referenceCol := headers[headerReference]
	detailsCol := headers[headerDetails]
	termsCol := headers[headerTerms]

	l := &Ledger{
		File:        f,
		Sheet:       sheet,
		HeaderRow:   headerRow,
		CompanyName: cellAt(rows, 1, 3), // company name lives in C1
		amountCol:   amountCol,
	}

	for i := headerRow; i < len(rows); i++ {
		seq := i - headerRow
		l.Rows = append(l.Rows, ledger.Row{
			SequenceIndex:    seq,
			AccountID:        strings.TrimSpace(cellAt(rows, i+1, accountCol)),
			CounterpartyName: strings.TrimSpace(cellAt(rows, i+1, nameCol)),
			Amount:           ledger.ParseAmount(cellAt(rows, i+1, amountCol)),
			TransactionType:  strings.TrimSpace(cellAt(rows, i+1, typeCol)),
			InvoiceDate:      strings.TrimSpace(cellAt(rows, i+1, invoiceDateCol)),
			PaymentDate:      strings.TrimSpace(cellAt(rows, i+1, paymentDateCol)),
			Reference:        strings.TrimSpace(cellAt(rows, i+1, referenceCol)),
			Details:          strings.TrimSpace(cellAt(rows, i+1, detailsCol)),
			PaymentTerms:     strings.TrimSpace(cellAt(rows, i+1, termsCol)),
		})
	}

	return l, nil
}

// detectHeaders tries rows 1 and 2 and returns the chosen 1-based
// header row plus a map of header name to 1-based column. A row
// holding both the account and amount headers wins; otherwise the
// first nonempty candidate is kept.
func detectHeaders(rows [][]string) (int, map[string]int) {
	chosen := 0
	var headers map[string]int

	for _, rowIdx := range []int{1, 2} {
		if rowIdx > len(rows) {
			break
		}
		tmp := headerMap(rows[rowIdx-1])
		if len(tmp) == 0 {
			continue
		}
		_, hasAccount := tmp[headerAccount]
		_, hasAmount := tmp[headerAmount]
		if hasAccount && hasAmount {
			return rowIdx, tmp
		}
		if chosen == 0 {
			chosen = rowIdx
			headers = tmp
		}
	}

	if chosen == 0 {
		chosen = 1
		if len(rows) > 0 {
			headers = headerMap(rows[0])
		} else {
			headers = map[string]int{}
		}
	}
	return chosen, headers
}

func headerMap(row []string) map[string]int {
	m := make(map[string]int)
	for col, v := range row {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, exists := m[v]; !exists {
			m[v] = col + 1
		}
	}
	return m
}

// firstColumn returns the column of the first present header name.
func firstColumn(headers map[string]int, names ...string) int {
	for _, name := range names {
		if col, ok := headers[name]; ok {
			return col
		}
	}
	return 0
}

// cellAt returns the trimmed-at-source cell value at 1-based row and
// column, tolerating short rows. col 0 means "column absent".
func cellAt(rows [][]string, row, col int) string {
	if col <= 0 || row <= 0 || row > len(rows) {
		return ""
	}
	r := rows[row-1]
	if col > len(r) {
		return ""
	}
	return r[col-1]
}
