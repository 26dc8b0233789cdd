package core

// FlowTotal tracks income and expense separately for one aggregation bucket.
type FlowTotal struct {
	Income  Money
	Expense Money
}

// Net returns income minus expense for the bucket.
func (f FlowTotal) Net() Money {
	return f.Income.Sub(f.Expense)
}

// add accumulates an amount on the side selected by kind.
func (f FlowTotal) add(kind Kind, amount Money) FlowTotal {
	switch kind {
	case Income:
		f.Income = f.Income.Add(amount)
	case Expense:
		f.Expense = f.Expense.Add(amount)
	}
	return f
}

// LedgerResult is the aggregated projection handed to presentation layers.
// Occurrences are sorted ascending by date with stable input-order
// tie-breaks, so repeated queries over the same inputs are byte-identical.
type LedgerResult struct {
	TotalIncome  Money
	TotalExpense Money
	NetBalance   Money

	ByDay      map[string]FlowTotal // YYYY-MM-DD
	ByMonth    map[string]FlowTotal // YYYY-MM
	ByCategory map[string]FlowTotal

	Occurrences []Occurrence

	// RuleErrors records rules whose expansion failed, keyed by rule ID. A
	// corrupt rule degrades that one series instead of the whole result.
	RuleErrors map[string]error
}

// Accumulate folds one occurrence into the totals and group-by buckets.
func (r *LedgerResult) Accumulate(o Occurrence) {
	switch o.Kind {
	case Income:
		r.TotalIncome = r.TotalIncome.Add(o.Amount)
	case Expense:
		r.TotalExpense = r.TotalExpense.Add(o.Amount)
	}
	r.NetBalance = r.TotalIncome.Sub(r.TotalExpense)

	day := o.Date.ISO()
	r.ByDay[day] = r.ByDay[day].add(o.Kind, o.Amount)
	month := o.Date.MonthKey()
	r.ByMonth[month] = r.ByMonth[month].add(o.Kind, o.Amount)
	r.ByCategory[o.Category] = r.ByCategory[o.Category].add(o.Kind, o.Amount)
}

// NewLedgerResult returns an empty result with initialized buckets.
func NewLedgerResult() LedgerResult {
	return LedgerResult{
		ByDay:      make(map[string]FlowTotal),
		ByMonth:    make(map[string]FlowTotal),
		ByCategory: make(map[string]FlowTotal),
		RuleErrors: make(map[string]error),
	}
}
