package ledger

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
)

// Aggregate merges expanded recurring occurrences with punctual entries over
// the interval [from, to] (zero dates are open bounds) and computes the
// totals and group-bys of a LedgerResult.
//
// Rules are expanded concurrently; determinism is established afterwards by
// collecting into input-ordered slots and stable-sorting the union by date,
// so the output is independent of goroutine scheduling. A rule whose
// expansion fails lands in LedgerResult.RuleErrors instead of failing the
// whole aggregation.
func Aggregate(ctx context.Context, rules []core.RecurrenceRule, punctual []core.PunctualEntry, from, to, today core.Date, policy QueryPolicy, filter EntryFilter) (core.LedgerResult, error) {
	result := core.NewLedgerResult()

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return result, core.ErrInvalidInterval
	}
	// A missing clock is a defect of the whole query, not of any one rule:
	// fail up front instead of collecting the same error per rule.
	if policy.TruncateCurrentMonthAtToday && today.IsZero() {
		return result, core.ErrClockNotProvided
	}

	// Filter both record kinds before any expansion so exclusion semantics
	// cannot drift between the punctual and recurring paths.
	keptRules := make([]core.RecurrenceRule, 0, len(rules))
	for _, r := range rules {
		if filter.MatchRule(r) {
			keptRules = append(keptRules, r)
		}
	}
	keptEntries := make([]core.PunctualEntry, 0, len(punctual))
	for _, e := range punctual {
		if filter.MatchEntry(e) && inInterval(e.Date, from, to) {
			keptEntries = append(keptEntries, e)
		}
	}

	type slot struct {
		occs []core.Occurrence
		err  error
	}
	slots := make([]slot, len(keptRules))

	g, ctx := errgroup.WithContext(ctx)
	for i, rule := range keptRules {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			occs, err := Expand(rule, from, to, today, policy)
			slots[i] = slot{occs: occs, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	// Union in stable input order: punctual entries first, then each rule's
	// occurrences. The stable sort below therefore breaks date ties by
	// source-record insertion order, never by map iteration order.
	merged := make([]core.Occurrence, 0, len(keptEntries))
	for _, e := range keptEntries {
		merged = append(merged, core.Occurrence{
			SourceID: e.ID,
			Date:     e.Date,
			Amount:   e.Amount,
			Kind:     e.Kind,
			Category: e.Category,
			Key:      core.OccurrenceKey(e.ID, e.Date),
		})
	}
	for i, rule := range keptRules {
		if slots[i].err != nil {
			result.RuleErrors[rule.ID] = slots[i].err
			continue
		}
		merged = append(merged, slots[i].occs...)
	}

	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Date.Before(merged[b].Date)
	})

	for _, o := range merged {
		result.Accumulate(o)
	}
	result.Occurrences = merged
	return result, nil
}

// AccumulatedBalance computes the net balance of everything through the given
// date: the same aggregation with an open lower bound, not a separate code
// path.
func AccumulatedBalance(ctx context.Context, rules []core.RecurrenceRule, punctual []core.PunctualEntry, through, today core.Date, policy QueryPolicy, filter EntryFilter) (core.Money, error) {
	result, err := Aggregate(ctx, rules, punctual, core.Date{}, through, today, policy, filter)
	if err != nil {
		return core.Money{}, err
	}
	return result.NetBalance, nil
}

// inInterval reports whether d falls inside the closed interval [from, to],
// where zero bounds are open.
func inInterval(d, from, to core.Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}
