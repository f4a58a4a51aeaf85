package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rise-pro/debt-aging/internal/drafts"
)

// ReadContacts builds a contact directory from a helper workbook. Both
// the account column and the supplier-name column are registered as
// lookup keys when present; a missing email column yields an empty
// directory, not an error.
func ReadContacts(r io.Reader) (drafts.Directory, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ReadContacts: opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("ReadContacts: reading sheet %q: %w", sheet, err)
	}

	headerRow, headers := detectHeaders(rows)

	accountCol := firstColumn(headers, headerAccount, headerSupplierNo)
	nameCol := firstColumn(headers, headerSupplierName, headerAccountDesc, headerAccountDescV2)
	emailCol := firstColumn(headers, headerEmail, headerEmailV2, headerEmailEn, headerEmailAlt)

	dir := drafts.Directory{}
	if emailCol == 0 {
		return dir, nil
	}

	for i := headerRow + 1; i <= len(rows); i++ {
		email := cellAt(rows, i, emailCol)
		if accountCol != 0 {
			dir.Set(cellAt(rows, i, accountCol), email)
		}
		if nameCol != 0 {
			dir.Set(cellAt(rows, i, nameCol), email)
		}
	}
	return dir, nil
}
