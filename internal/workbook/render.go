package workbook

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/rise-pro/debt-aging/internal/drafts"
	"github.com/rise-pro/debt-aging/internal/ledger"
	"github.com/rise-pro/debt-aging/internal/matching"
)

// Fill colors of the four match categories, as rendered in the
// processed report.
const (
	greenColor  = "00FF00"
	orangeColor = "FFA500"
	purpleColor = "CC99FF"
	blueColor   = "ADD8E6"
)

// Sheet titles of the processed report.
const (
	sheetExactSummary    = "התאמה 100%"
	sheetTolerantSummary = "התאמה 80%"
	sheetGlobalSummary   = "בדיקת ספקים"
	sheetEmails          = "מיילים לספק"
)

// RenderProcessed decorates the ingested workbook with the run
// outcome: fills amount cells by category, rewrites the three summary
// sheets and the emails sheet, and flips every sheet right-to-left.
func (l *Ledger) RenderProcessed(result *matching.Result, draftList []drafts.Draft) error {
	styles, err := l.categoryStyles()
	if err != nil {
		return err
	}

	for _, row := range result.Rows {
		styleID, ok := styles[row.Category]
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(l.amountCol, l.HeaderRow+1+row.SequenceIndex)
		if err != nil {
			return fmt.Errorf("RenderProcessed: cell name: %w", err)
		}
		if err := l.File.SetCellStyle(l.Sheet, cell, cell, styleID); err != nil {
			return fmt.Errorf("RenderProcessed: filling %s: %w", cell, err)
		}
	}

	if err := l.writeSummarySheet(sheetExactSummary, result.ExactCounts); err != nil {
		return err
	}
	if err := l.writeSummarySheet(sheetTolerantSummary, result.TolerantCounts); err != nil {
		return err
	}
	if err := l.writeSummarySheet(sheetGlobalSummary, result.GlobalCounts); err != nil {
		return err
	}
	if err := l.writeEmailsSheet(draftList); err != nil {
		return err
	}

	rtl := true
	for _, sheet := range l.File.GetSheetList() {
		if err := l.File.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return fmt.Errorf("RenderProcessed: RTL view for %q: %w", sheet, err)
		}
	}
	return nil
}

// Write serializes the decorated workbook.
func (l *Ledger) Write(w io.Writer) error {
	if err := l.File.Write(w); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	return nil
}

// Close releases the underlying workbook.
func (l *Ledger) Close() error {
	return l.File.Close()
}

func (l *Ledger) categoryStyles() (map[ledger.Category]int, error) {
	colors := map[ledger.Category]string{
		ledger.CategoryExactMatch:    greenColor,
		ledger.CategoryTolerantMatch: orangeColor,
		ledger.CategoryGlobalMatch:   purpleColor,
		ledger.CategoryTransferTag:   blueColor,
	}
	styles := make(map[ledger.Category]int, len(colors))
	for category, color := range colors {
		id, err := l.File.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("categoryStyles: %q: %w", category, err)
		}
		styles[category] = id
	}
	return styles, nil
}

// writeSummarySheet rewrites one per-pass summary sheet: account id
// and matched-row count, accounts sorted, zero counts omitted.
func (l *Ledger) writeSummarySheet(title string, counts map[string]int) error {
	if err := l.resetSheet(title); err != nil {
		return err
	}

	if err := l.File.SetCellValue(title, "A1", headerSupplierNo); err != nil {
		return fmt.Errorf("writeSummarySheet %q: %w", title, err)
	}
	if err := l.File.SetCellValue(title, "B1", "כמות שורות מותאמות"); err != nil {
		return fmt.Errorf("writeSummarySheet %q: %w", title, err)
	}

	accounts := make([]string, 0, len(counts))
	for account, count := range counts {
		if account == "" || count <= 0 {
			continue
		}
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	for i, account := range accounts {
		row := i + 2
		if err := l.File.SetCellValue(title, fmt.Sprintf("A%d", row), account); err != nil {
			return fmt.Errorf("writeSummarySheet %q row %d: %w", title, row, err)
		}
		if err := l.File.SetCellValue(title, fmt.Sprintf("B%d", row), counts[account]); err != nil {
			return fmt.Errorf("writeSummarySheet %q row %d: %w", title, row, err)
		}
	}
	return nil
}

// writeEmailsSheet rewrites the per-supplier emails sheet: one row per
// draft with display name, wrapped message body, and resolved address.
func (l *Ledger) writeEmailsSheet(draftList []drafts.Draft) error {
	if err := l.resetSheet(sheetEmails); err != nil {
		return err
	}

	for col, header := range []string{headerSupplierName, "טקסט מייל", headerEmailV2} {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := l.File.SetCellValue(sheetEmails, cell, header); err != nil {
			return fmt.Errorf("writeEmailsSheet: %w", err)
		}
	}

	wrapStyle, err := l.File.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("writeEmailsSheet: wrap style: %w", err)
	}

	for i, draft := range draftList {
		row := i + 2
		if err := l.File.SetCellValue(sheetEmails, fmt.Sprintf("A%d", row), draft.DisplayName); err != nil {
			return fmt.Errorf("writeEmailsSheet row %d: %w", row, err)
		}
		bodyCell := fmt.Sprintf("B%d", row)
		if err := l.File.SetCellValue(sheetEmails, bodyCell, draft.Body); err != nil {
			return fmt.Errorf("writeEmailsSheet row %d: %w", row, err)
		}
		if err := l.File.SetCellStyle(sheetEmails, bodyCell, bodyCell, wrapStyle); err != nil {
			return fmt.Errorf("writeEmailsSheet row %d: %w", row, err)
		}
		if draft.Address != "" {
			if err := l.File.SetCellValue(sheetEmails, fmt.Sprintf("C%d", row), draft.Address); err != nil {
				return fmt.Errorf("writeEmailsSheet row %d: %w", row, err)
			}
		}
	}
	return nil
}

// resetSheet drops and recreates a sheet so reprocessing the same
// workbook never leaves stale cells behind.
func (l *Ledger) resetSheet(title string) error {
	if idx, err := l.File.GetSheetIndex(title); err == nil && idx != -1 {
		if err := l.File.DeleteSheet(title); err != nil {
			return fmt.Errorf("resetSheet %q: %w", title, err)
		}
	}
	if _, err := l.File.NewSheet(title); err != nil {
		return fmt.Errorf("resetSheet %q: %w", title, err)
	}
	return nil
}
