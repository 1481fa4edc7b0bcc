// Package report computes the dashboard and report figures from a snapshot
// of the transaction cache. Everything here is pure: functions take a slice,
// never mutate it, and return fresh values on every call.
package report

import (
	"sort"
	"strings"

	"caixamei/internal/core"
)

type (
	// Totals are the headline KPIs shown on the dashboard.
	Totals struct {
		Income       float64
		Expense      float64
		IncomeCount  int
		ExpenseCount int
		Balance      float64
	}

	// DatePoint is one bucket of the income/expense time series. There is
	// one point per distinct date present in the input; dates with no
	// transactions are omitted, not zero-filled.
	DatePoint struct {
		Date    string
		Income  float64
		Expense float64
	}

	// CategoryGroup is the per-(category, kind) report row. Total is signed:
	// income adds, expense subtracts. The same category name used for both
	// kinds yields two independent rows.
	CategoryGroup struct {
		Category string
		Kind     core.Kind
		Total    float64
		Count    int
	}

	// Filter selects a subset of transactions. Zero-value fields match
	// everything; set fields are combined with AND semantics.
	Filter struct {
		DateStart string // inclusive, yyyy-MM-dd
		DateEnd   string // inclusive, yyyy-MM-dd
		Kind      core.Kind
		Category  string
		Text      string // case-insensitive substring of the description
	}
)

// Tier buckets the limit progress for presentation only; nothing is blocked
// at any tier.
type Tier string

const (
	TierLow    Tier = "low"    // < 50%
	TierMedium Tier = "medium" // 50% .. 79.99%
	TierHigh   Tier = "high"   // >= 80%
)

// ComputeTotals sums each transaction into exactly one side by kind.
func ComputeTotals(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		if tx.Kind == core.Income {
			t.Income += tx.Amount
			t.IncomeCount++
		} else {
			t.Expense += tx.Amount
			t.ExpenseCount++
		}
	}
	t.Balance = t.Income - t.Expense
	return t
}

// LimitProgress returns how far income has climbed toward the annual ceiling,
// as a percentage clamped to [0, 100]. A non-positive limit yields 0.
func LimitProgress(income, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	p := income / limit * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ProgressTier classifies a progress percentage into its display tier.
func ProgressTier(progress float64) Tier {
	switch {
	case progress < 50:
		return TierLow
	case progress < 80:
		return TierMedium
	default:
		return TierHigh
	}
}

// DateSeries buckets transactions per date, summing income and expense
// independently, ordered by ascending date string.
func DateSeries(txs []core.Transaction) []DatePoint {
	buckets := make(map[string]*DatePoint)
	for _, tx := range txs {
		p, ok := buckets[tx.Date]
		if !ok {
			p = &DatePoint{Date: tx.Date}
			buckets[tx.Date] = p
		}
		if tx.Kind == core.Income {
			p.Income += tx.Amount
		} else {
			p.Expense += tx.Amount
		}
	}
	out := make([]DatePoint, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// GroupByCategory partitions transactions by (category, kind). Every
// transaction lands in exactly one group. Rows are ordered by category name,
// income before expense within the same name, so output is deterministic.
func GroupByCategory(txs []core.Transaction) []CategoryGroup {
	type key struct {
		category string
		kind     core.Kind
	}
	groups := make(map[key]*CategoryGroup)
	for _, tx := range txs {
		k := key{tx.Category, tx.Kind}
		g, ok := groups[k]
		if !ok {
			g = &CategoryGroup{Category: tx.Category, Kind: tx.Kind}
			groups[k] = g
		}
		if tx.Kind == core.Income {
			g.Total += tx.Amount
		} else {
			g.Total -= tx.Amount
		}
		g.Count++
	}
	out := make([]CategoryGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Kind == core.Income && out[j].Kind != core.Income
	})
	return out
}

// Apply returns the transactions matching every set predicate. The result is
// always a fresh slice, even when nothing is filtered out.
func (f Filter) Apply(txs []core.Transaction) []core.Transaction {
	text := strings.ToLower(f.Text)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.DateStart != "" && tx.Date < f.DateStart {
			continue
		}
		if f.DateEnd != "" && tx.Date > f.DateEnd {
			continue
		}
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(tx.Description), text) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
