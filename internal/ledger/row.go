package ledger

// Category is the classification tag of a ledger row. The built-in
// vocabulary is closed; caller-defined buckets are added through a
// Vocabulary value, never as free-form strings.
type Category string

const (
	// CategoryUnclassified is the initial tag of every ingested row and
	// the terminal tag of rows whose amount could not be parsed.
	CategoryUnclassified Category = "unclassified"
	// CategoryExactMatch marks a pair whose amounts sum to zero within
	// the exact epsilon, found inside a single account.
	CategoryExactMatch Category = "exact_match"
	// CategoryTolerantMatch marks an intra-account pair settled within
	// the configured tolerance.
	CategoryTolerantMatch Category = "tolerant_match"
	// CategoryGlobalMatch marks a tolerant pair found across accounts.
	CategoryGlobalMatch Category = "global_match"
	// CategoryTransferTag marks rows selected by transaction type,
	// independent of amount.
	CategoryTransferTag Category = "transfer_tag"
	// CategorySpecial is the residual bucket: unmatched rows with a
	// parseable nonzero amount that need manual handling.
	CategorySpecial Category = "special"
)

// Default custom buckets exposed by the reclassification API. They hold
// no engine semantics; rows only enter them through Move.
const (
	CategoryReadyPayment Category = "ready_payment"
	CategoryCommand      Category = "command"
	CategoryEmails       Category = "emails"
)

// TransferTransactionType is the reserved transaction-type sentinel of
// the aging report marking administrative transfer rows.
const TransferTransactionType = "העב"

// Row is one transaction line of the aging report. SequenceIndex is
// assigned once at ingestion and defines every scan and tie-break
// order; it is never re-derived or reused.
type Row struct {
	SequenceIndex    int      `json:"sequence_index"`
	AccountID        string   `json:"account"`
	CounterpartyName string   `json:"name"`
	Amount           *float64 `json:"amount"` // nil when empty or unparseable
	TransactionType  string   `json:"transaction_type,omitempty"`
	InvoiceDate      string   `json:"invoice_date,omitempty"`
	PaymentDate      string   `json:"date,omitempty"`
	Reference        string   `json:"reference,omitempty"`
	Details          string   `json:"details,omitempty"`
	PaymentTerms     string   `json:"payment_terms,omitempty"`
	Category         Category `json:"category"`
}

// AmountValue returns the parsed amount, or 0 and false when the row
// has no parseable amount.
func (r *Row) AmountValue() (float64, bool) {
	if r.Amount == nil {
		return 0, false
	}
	return *r.Amount, true
}

// DisplayDate is the date shown for the row and matched by MatchKey:
// the payment date when present, otherwise the invoice date.
func (r *Row) DisplayDate() string {
	if r.PaymentDate != "" {
		return r.PaymentDate
	}
	return r.InvoiceDate
}

// Vocabulary is the closed set of categories a result set may use.
// The engine categories are always members; custom buckets extend the
// set for reclassification targets.
type Vocabulary struct {
	categories map[Category]bool
	order      []Category
}

// NewVocabulary builds a vocabulary from the engine categories plus the
// given custom buckets. Duplicates are ignored.
func NewVocabulary(custom ...Category) Vocabulary {
	v := Vocabulary{categories: make(map[Category]bool)}
	builtin := []Category{
		CategoryUnclassified,
		CategoryExactMatch,
		CategoryTolerantMatch,
		CategoryGlobalMatch,
		CategoryTransferTag,
		CategorySpecial,
	}
	for _, c := range builtin {
		v.add(c)
	}
	for _, c := range custom {
		v.add(c)
	}
	return v
}

// DefaultVocabulary returns the vocabulary served by the API: the
// engine categories plus the ready_payment, command and emails buckets.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(CategoryReadyPayment, CategoryCommand, CategoryEmails)
}

func (v *Vocabulary) add(c Category) {
	if c == "" || v.categories[c] {
		return
	}
	v.categories[c] = true
	v.order = append(v.order, c)
}

// Contains reports whether c is a member of the vocabulary.
func (v Vocabulary) Contains(c Category) bool {
	return v.categories[c]
}

// Categories returns the members in registration order.
func (v Vocabulary) Categories() []Category {
	out := make([]Category, len(v.order))
	copy(out, v.order)
	return out
}
