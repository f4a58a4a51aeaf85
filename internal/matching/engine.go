package matching

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/rise-pro/debt-aging/internal/ledger"
)

// Config holds the tunable values of the classification passes. The
// zero value is usable; missing fields fall back to the defaults below.
type Config struct {
	// ExactEpsilon bounds the pair sum of the exact pass.
	ExactEpsilon float64

	// Tolerance bounds the pair sum of the tolerant and global passes,
	// in currency units. Rounding and rate differences under it are
	// treated as settled.
	Tolerance float64

	// TransferType is the transaction-type sentinel of the rule pass.
	TransferType string
}

// Default values matching the aging-report business rules.
const (
	DefaultExactEpsilon = 1e-6
	DefaultTolerance    = 2.0
)

func (c Config) withDefaults() Config {
	if c.ExactEpsilon == 0 {
		c.ExactEpsilon = DefaultExactEpsilon
	}
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.TransferType == "" {
		c.TransferType = ledger.TransferTransactionType
	}
	return c
}

// Engine runs the four classification passes in fixed order. A run is
// a single-threaded computation over an in-memory row list; the engine
// holds no state between runs, so one Engine may serve many runs.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// pass is one step of the classification pipeline. Passes mutate the
// shared state in order; each pass only considers rows still
// unclassified after its predecessors.
type pass interface {
	apply(s *runState)
}

// runState is the shared state across all passes of one run.
type runState struct {
	cfg    Config
	rows   []ledger.Row
	result *Result
}

// Classify tags a copy of the ingested rows and returns the result.
// Rows must arrive in sequence order; the engine never re-derives row
// order. Because every pass scans forward through not-yet-used
// candidates in that fixed order, re-running over an unmutated input
// yields an identical result.
func (e *Engine) Classify(rows []ledger.Row) *Result {
	tagged := make([]ledger.Row, len(rows))
	copy(tagged, rows)
	for i := range tagged {
		tagged[i].Category = ledger.CategoryUnclassified
	}

	state := &runState{
		cfg:  e.cfg,
		rows: tagged,
		result: &Result{
			RunID:          uuid.NewString(),
			ExactCounts:    make(map[string]int),
			TolerantCounts: make(map[string]int),
			GlobalCounts:   make(map[string]int),
		},
	}

	passes := []pass{
		&exactPass{},
		&tolerantPass{},
		&globalPass{},
		&transferPass{},
		&residualPass{},
	}
	for _, p := range passes {
		p.apply(state)
	}

	state.result.Rows = state.rows
	return state.result
}

// exactPass pairs rows inside each account whose amounts cancel within
// ExactEpsilon.
type exactPass struct{}

func (p *exactPass) apply(s *runState) {
	pairWithinAccounts(s, func(sum float64) bool {
		return math.Abs(sum) < s.cfg.ExactEpsilon
	}, ledger.CategoryExactMatch, s.result.ExactCounts)
}

// tolerantPass pairs surviving rows inside each account within
// Tolerance.
type tolerantPass struct{}

func (p *tolerantPass) apply(s *runState) {
	pairWithinAccounts(s, func(sum float64) bool {
		return math.Abs(sum) <= s.cfg.Tolerance
	}, ledger.CategoryTolerantMatch, s.result.TolerantCounts)
}

// pairWithinAccounts runs one intra-account first-fit pairing pass.
// For each positive row in sequence order it takes the first unused
// negative satisfying the predicate and stops scanning for that
// positive — first-fit, not best-fit, even if a closer candidate
// exists later. Each pair credits the account with +2.
func pairWithinAccounts(s *runState, ok func(sum float64) bool, tag ledger.Category, counts map[string]int) {
	// Partition unclassified row indices by account, preserving
	// sequence order within each partition.
	var accountOrder []string
	partitions := make(map[string][]int)
	for i, row := range s.rows {
		if row.Category != ledger.CategoryUnclassified || row.Amount == nil {
			continue
		}
		if _, seen := partitions[row.AccountID]; !seen {
			accountOrder = append(accountOrder, row.AccountID)
		}
		partitions[row.AccountID] = append(partitions[row.AccountID], i)
	}

	for _, account := range accountOrder {
		var positives, negatives []int
		for _, i := range partitions[account] {
			v := *s.rows[i].Amount
			switch {
			case v > 0:
				positives = append(positives, i)
			case v < 0:
				negatives = append(negatives, i)
			}
		}

		used := make(map[int]bool)
		for _, pi := range positives {
			for ni, idx := range negatives {
				if used[ni] {
					continue
				}
				if ok(*s.rows[pi].Amount + *s.rows[idx].Amount) {
					s.rows[pi].Category = tag
					s.rows[idx].Category = tag
					counts[account] += 2
					used[ni] = true
					break
				}
			}
		}
	}
}

// globalPass relaxes the same-account constraint: all surviving
// nonzero rows collapse into one positives list and one negatives list
// spanning every account, and the tolerant first-fit pairing runs over
// them. Both sides of a pair are credited +1 on their own account —
// this pass exists to catch inter-account settlement the intra-account
// passes cannot see by construction.
type globalPass struct{}

func (p *globalPass) apply(s *runState) {
	var positives, negatives []int
	for i, row := range s.rows {
		if row.Category != ledger.CategoryUnclassified || row.Amount == nil {
			continue
		}
		v := *row.Amount
		switch {
		case v > 0:
			positives = append(positives, i)
		case v < 0:
			negatives = append(negatives, i)
		}
	}

	used := make(map[int]bool)
	for _, pi := range positives {
		for ni, idx := range negatives {
			if used[ni] {
				continue
			}
			if math.Abs(*s.rows[pi].Amount+*s.rows[idx].Amount) <= s.cfg.Tolerance {
				s.rows[pi].Category = ledger.CategoryGlobalMatch
				s.rows[idx].Category = ledger.CategoryGlobalMatch
				s.result.GlobalCounts[s.rows[pi].AccountID]++
				s.result.GlobalCounts[s.rows[idx].AccountID]++
				used[ni] = true
				break
			}
		}
	}
}

// transferPass tags surviving rows whose transaction type equals the
// transfer sentinel. No amount predicate: administrative transfer
// entries are captured regardless of matching status.
type transferPass struct{}

func (p *transferPass) apply(s *runState) {
	for i, row := range s.rows {
		if row.Category != ledger.CategoryUnclassified {
			continue
		}
		if strings.TrimSpace(row.TransactionType) == s.cfg.TransferType {
			s.rows[i].Category = ledger.CategoryTransferTag
		}
	}
}

// residualPass tags the remaining rows with parseable nonzero amounts
// as special. Rows with nil or zero amounts stay unclassified: present
// in the row set, absent from every count.
type residualPass struct{}

func (p *residualPass) apply(s *runState) {
	for i, row := range s.rows {
		if row.Category != ledger.CategoryUnclassified {
			continue
		}
		if row.Amount != nil && *row.Amount != 0 {
			s.rows[i].Category = ledger.CategorySpecial
		}
	}
}
