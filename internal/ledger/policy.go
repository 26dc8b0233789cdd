// Package ledger implements the recurrence expansion and aggregation engine:
// it turns recurring rules into dated occurrences inside a query interval,
// merges them with punctual entries and computes the sums and groupings that
// balances, dashboards and reports are built from.
//
// The engine is pure: no I/O, no wall-clock reads, no shared mutable state.
// "Today" is always injected by the caller.
package ledger

const (
	// UnboundedReject fails expansion of a rule that has neither a series
	// end nor a query upper bound. Strict default.
	UnboundedReject UnboundedRuleBehavior = "reject"

	// UnboundedEmitSingle emits exactly one synthetic occurrence at the
	// window's lower bound for such rules. This reproduces the historical
	// behavior of the dashboard and exists only for compatibility; new call
	// sites should reject instead.
	UnboundedEmitSingle UnboundedRuleBehavior = "emit_single"
)

// DefaultMaxMonthsPerRule bounds the expansion loop when a policy does not
// set its own limit.
const DefaultMaxMonthsPerRule = 24

type (
	// UnboundedRuleBehavior selects what to do with a rule that is unbounded
	// on both sides (no series end, no query upper bound).
	UnboundedRuleBehavior string

	// QueryPolicy captures the per-call-site expansion knobs. Historically
	// each call site hand-rolled its own expansion loop with slightly
	// different answers to these questions; now a call site is just a policy
	// value.
	QueryPolicy struct {
		// TruncateCurrentMonthAtToday drops the occurrence of the month
		// containing "today" while its scheduled day is still in the future.
		TruncateCurrentMonthAtToday bool

		UnboundedRuleBehavior UnboundedRuleBehavior

		// MaxMonthsPerRule bounds the candidate-month loop; values <= 0 fall
		// back to DefaultMaxMonthsPerRule.
		MaxMonthsPerRule int

		// HonorExclusions is always true in normal operation. The knob only
		// exists so legacy behavior (exclusions ignored) can be reproduced
		// in comparison tests.
		HonorExclusions bool
	}
)

// DefaultPolicy is the strict baseline every preset starts from.
func DefaultPolicy() QueryPolicy {
	return QueryPolicy{
		TruncateCurrentMonthAtToday: false,
		UnboundedRuleBehavior:       UnboundedReject,
		MaxMonthsPerRule:            DefaultMaxMonthsPerRule,
		HonorExclusions:             true,
	}
}

// DashboardPolicy serves the live dashboard: the running month only counts
// recurring amounts whose day has already arrived, and fully unbounded rules
// keep their legacy single-occurrence rendering.
func DashboardPolicy() QueryPolicy {
	p := DefaultPolicy()
	p.TruncateCurrentMonthAtToday = true
	p.UnboundedRuleBehavior = UnboundedEmitSingle
	return p
}

// MonthlyReportPolicy serves closed-month reports: complete months, no
// truncation, strict about unbounded rules.
func MonthlyReportPolicy() QueryPolicy {
	return DefaultPolicy()
}

// AccumulatedBalancePolicy serves "balance through date D" queries, which
// cover the whole account history: the month bound is widened accordingly.
func AccumulatedBalancePolicy() QueryPolicy {
	p := DefaultPolicy()
	p.TruncateCurrentMonthAtToday = true
	p.MaxMonthsPerRule = 120
	return p
}

// ForecastPolicy serves forward-looking projections: future months count in
// full, including the remainder of the current one.
func ForecastPolicy() QueryPolicy {
	p := DefaultPolicy()
	p.MaxMonthsPerRule = 36
	return p
}

// maxMonths returns the effective loop bound.
func (p QueryPolicy) maxMonths() int {
	if p.MaxMonthsPerRule <= 0 {
		return DefaultMaxMonthsPerRule
	}
	return p.MaxMonthsPerRule
}
