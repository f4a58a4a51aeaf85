package ledger

import (
	"math"
	"strings"
)

// AmountKeyTolerance is how close a key amount must be to a row amount
// to identify it. Rows have no stable external id once persisted, so
// the key is a best-effort composite identity.
const AmountKeyTolerance = 0.01

// MatchKey identifies a row inside a category for move and delete
// operations: account, counterparty name, amount within
// AmountKeyTolerance, and the display date as a string. Two rows with
// identical key fields are indistinguishable; operations take the
// first one in stored order.
type MatchKey struct {
	AccountID        string  `json:"account"`
	CounterpartyName string  `json:"name"`
	Amount           float64 `json:"amount"`
	Date             string  `json:"date"`
}

// KeyFor builds the MatchKey describing r.
func KeyFor(r Row) MatchKey {
	amount := 0.0
	if r.Amount != nil {
		amount = *r.Amount
	}
	return MatchKey{
		AccountID:        r.AccountID,
		CounterpartyName: r.CounterpartyName,
		Amount:           amount,
		Date:             r.DisplayDate(),
	}
}

// Matches reports whether r is identified by the key. String fields are
// compared trimmed; the amount within AmountKeyTolerance. A nil row
// amount only matches a zero key amount.
func (k MatchKey) Matches(r Row) bool {
	if !equalTrimmed(k.AccountID, r.AccountID) {
		return false
	}
	if !equalTrimmed(k.CounterpartyName, r.CounterpartyName) {
		return false
	}
	if !equalTrimmed(k.Date, r.DisplayDate()) {
		return false
	}
	amount := 0.0
	if r.Amount != nil {
		amount = *r.Amount
	}
	return math.Abs(k.Amount-amount) <= AmountKeyTolerance
}

func equalTrimmed(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
