// Package drafts groups transfer-tagged rows into per-supplier
// communication drafts and resolves supplier addresses through an
// in-memory contact directory. The package performs no network I/O;
// the directory is built once per run by an external collaborator.
package drafts

import (
	"fmt"
	"strings"

	"github.com/rise-pro/debt-aging/internal/ledger"
)

// Directory maps normalized account ids and supplier names to contact
// addresses. Lookups are read-only.
type Directory map[string]string

// Set registers an address under the given key. Empty keys and empty
// addresses are ignored.
func (d Directory) Set(key, address string) {
	key = strings.TrimSpace(key)
	address = strings.TrimSpace(address)
	if key == "" || address == "" {
		return
	}
	d[key] = address
}

// Resolve returns the address for a supplier: the account id is tried
// first, then the display name, both trimmed. Returns "" when neither
// key resolves.
func (d Directory) Resolve(accountID, name string) string {
	if addr, ok := d[strings.TrimSpace(accountID)]; ok {
		return addr
	}
	if name != "" {
		if addr, ok := d[strings.TrimSpace(name)]; ok {
			return addr
		}
	}
	return ""
}

// Line is one (date, amount) entry of a draft, in row order within the
// supplier's group. Amount is the absolute value of the row amount.
type Line struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Draft is the aggregated message for one supplier, built from all of
// the supplier's transfer-tagged rows.
type Draft struct {
	AccountID   string `json:"account"`
	DisplayName string `json:"name"`
	Lines       []Line `json:"lines"`
	Body        string `json:"body"`
	Address     string `json:"address"` // empty when the directory has no entry
}

// Build groups the given transfer-tagged rows by account id, in row
// order, and renders one draft per group. The display name comes from
// the first contributing row; companyName signs the message body.
func Build(rows []ledger.Row, companyName string, dir Directory) []Draft {
	var accountOrder []string
	groups := make(map[string][]ledger.Row)
	for _, row := range rows {
		account := strings.TrimSpace(row.AccountID)
		if _, seen := groups[account]; !seen {
			accountOrder = append(accountOrder, account)
		}
		groups[account] = append(groups[account], row)
	}

	drafts := make([]Draft, 0, len(accountOrder))
	for _, account := range accountOrder {
		group := groups[account]

		lines := make([]Line, 0, len(group))
		for _, row := range group {
			amount := 0.0
			if row.Amount != nil {
				if *row.Amount < 0 {
					amount = -*row.Amount
				} else {
					amount = *row.Amount
				}
			}
			lines = append(lines, Line{Date: row.DisplayDate(), Amount: amount})
		}

		name := group[0].CounterpartyName
		drafts = append(drafts, Draft{
			AccountID:   account,
			DisplayName: name,
			Lines:       lines,
			Body:        renderBody(name, companyName, lines),
			Address:     dir.Resolve(account, name),
		})
	}
	return drafts
}

// renderBody renders the supplier message. The template mirrors the
// message sent by the bookkeeping team: greeting, one date/amount line
// per missing invoice, signature.
func renderBody(name, companyName string, lines []Line) string {
	details := make([]string, 0, len(lines))
	for _, l := range lines {
		details = append(details, fmt.Sprintf("תאריך - %s\nעל סכום - %v", l.Date, l.Amount))
	}
	return fmt.Sprintf(
		"שלום ל-%s\nחסרות לנו חשבוניות עבור תשלום:\n%s\nבתודה מראש,\nהנהלת חשבונות של %s",
		name,
		strings.Join(details, "\n"),
		companyName,
	)
}
