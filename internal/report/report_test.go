package report

import (
	"testing"

	"caixamei/internal/core"
)

func tx(date string, kind core.Kind, category, desc string, amount float64) core.Transaction {
	return core.Transaction{Date: date, Kind: kind, Category: category, Description: desc, Amount: amount}
}

func TestComputeTotals(t *testing.T) {
	txs := []core.Transaction{
		tx("2025-01-05", core.Income, "Vendas", "venda a", 1000),
		tx("2025-01-06", core.Income, "Serviços", "consultoria", 500),
		tx("2025-01-07", core.Expense, "Aluguel", "aluguel jan", 300),
	}
	got := ComputeTotals(txs)
	if got.Income != 1500 || got.Expense != 300 || got.Balance != 1200 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.IncomeCount != 2 || got.ExpenseCount != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}

	zero := ComputeTotals(nil)
	if zero.Income != 0 || zero.Expense != 0 || zero.Balance != 0 {
		t.Fatalf("expected zero totals for empty input, got %+v", zero)
	}
}

func TestLimitProgress(t *testing.T) {
	cases := []struct {
		name   string
		income float64
		limit  float64
		want   float64
	}{
		{"zero income", 0, core.MEILimit, 0},
		{"half", core.MEILimit / 2, core.MEILimit, 50},
		{"at limit", core.MEILimit, core.MEILimit, 100},
		{"over limit clamps", core.MEILimit * 2, core.MEILimit, 100},
		{"zero limit", 1000, 0, 0},
		{"negative limit", 1000, -1, 0},
	}
	for _, tc := range cases {
		if got := LimitProgress(tc.income, tc.limit); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestProgressTier(t *testing.T) {
	cases := []struct {
		progress float64
		want     Tier
	}{
		{0, TierLow},
		{49.99, TierLow},
		{50, TierMedium},
		{79.99, TierMedium},
		{80, TierHigh},
		{100, TierHigh},
	}
	for _, tc := range cases {
		if got := ProgressTier(tc.progress); got != tc.want {
			t.Fatalf("progress %v: expected %s, got %s", tc.progress, tc.want, got)
		}
	}
}

func TestDateSeries(t *testing.T) {
	txs := []core.Transaction{
		tx("2025-02-10", core.Expense, "Aluguel", "b", 50),
		tx("2025-02-01", core.Income, "Vendas", "a", 100),
		tx("2025-02-10", core.Income, "Vendas", "c", 200),
	}
	got := DateSeries(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if got[0].Date != "2025-02-01" || got[1].Date != "2025-02-10" {
		t.Fatalf("points not ordered by date: %+v", got)
	}
	if got[0].Income != 100 || got[0].Expense != 0 {
		t.Fatalf("unexpected first point: %+v", got[0])
	}
	if got[1].Income != 200 || got[1].Expense != 50 {
		t.Fatalf("unexpected second point: %+v", got[1])
	}
	if len(DateSeries(nil)) != 0 {
		t.Fatalf("expected empty series for empty input")
	}
}

func TestGroupByCategory(t *testing.T) {
	txs := []core.Transaction{
		tx("2025-03-01", core.Expense, "Vendas", "estorno", 30),
		tx("2025-03-02", core.Income, "Vendas", "venda a", 100),
		tx("2025-03-03", core.Income, "Vendas", "venda b", 50),
		tx("2025-03-04", core.Expense, "Aluguel", "aluguel", 200),
	}
	got := GroupByCategory(txs)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}

	// Category name asc, income before expense for the same name.
	if got[0].Category != "Aluguel" || got[0].Kind != core.Expense {
		t.Fatalf("unexpected first group: %+v", got[0])
	}
	if got[1].Category != "Vendas" || got[1].Kind != core.Income {
		t.Fatalf("unexpected second group: %+v", got[1])
	}
	if got[2].Category != "Vendas" || got[2].Kind != core.Expense {
		t.Fatalf("unexpected third group: %+v", got[2])
	}

	// Totals are signed by kind.
	if got[0].Total != -200 || got[0].Count != 1 {
		t.Fatalf("unexpected Aluguel totals: %+v", got[0])
	}
	if got[1].Total != 150 || got[1].Count != 2 {
		t.Fatalf("unexpected Vendas income totals: %+v", got[1])
	}
	if got[2].Total != -30 || got[2].Count != 1 {
		t.Fatalf("unexpected Vendas expense totals: %+v", got[2])
	}
}

func TestFilterApply(t *testing.T) {
	txs := []core.Transaction{
		tx("2025-01-01", core.Income, "Vendas", "Venda de produto", 100),
		tx("2025-01-15", core.Expense, "Aluguel", "Aluguel do escritório", 200),
		tx("2025-02-01", core.Income, "Serviços", "Consultoria mensal", 300),
	}

	cases := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"empty filter matches all", Filter{}, 3},
		{"date range inclusive", Filter{DateStart: "2025-01-01", DateEnd: "2025-01-15"}, 2},
		{"start bound only", Filter{DateStart: "2025-01-16"}, 1},
		{"kind", Filter{Kind: core.Income}, 2},
		{"category exact", Filter{Category: "Aluguel"}, 1},
		{"text case-insensitive", Filter{Text: "ALUGUEL"}, 1},
		{"and semantics", Filter{Kind: core.Income, Text: "consultoria"}, 1},
		{"no match", Filter{Category: "Impostos"}, 0},
	}
	for _, tc := range cases {
		got := tc.filter.Apply(txs)
		if len(got) != tc.want {
			t.Fatalf("%s: expected %d results, got %d", tc.name, tc.want, len(got))
		}
	}

	// Filtering an already-filtered result with the same predicates is a
	// fixed point.
	f := Filter{Kind: core.Income, DateStart: "2025-01-01"}
	once := f.Apply(txs)
	twice := f.Apply(once)
	if len(once) != len(twice) {
		t.Fatalf("filter not idempotent: %d vs %d", len(once), len(twice))
	}

	// Result is always a fresh slice.
	all := Filter{}.Apply(txs)
	all[0].Description = "mutated"
	if txs[0].Description == "mutated" {
		t.Fatalf("filter result aliases the input slice")
	}
}
