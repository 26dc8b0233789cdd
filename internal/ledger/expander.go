package ledger

import (
	"bilancio/internal/core"
)

// Expand materializes the occurrences of one recurrence rule inside the
// query interval [from, to]. Zero dates mean an open bound on that side.
// The result is finite, sorted ascending by date and a pure function of its
// arguments: the same rule, interval, today and policy always produce the
// same occurrences in the same order.
//
// today is the caller's notion of the current calendar date, used only by the
// truncation policy. The expander never reads a wall clock.
func Expand(rule core.RecurrenceRule, from, to, today core.Date, policy QueryPolicy) ([]core.Occurrence, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, core.ErrInvalidInterval
	}
	if policy.TruncateCurrentMonthAtToday && today.IsZero() {
		return nil, core.ErrClockNotProvided
	}

	effectiveFrom := rule.EffectiveStart()
	if !from.IsZero() && from.After(effectiveFrom) {
		effectiveFrom = from
	}

	var effectiveTo core.Date
	switch {
	case !rule.SeriesEnd.IsZero() && !to.IsZero():
		effectiveTo = rule.SeriesEnd
		if to.Before(effectiveTo) {
			effectiveTo = to
		}
	case !rule.SeriesEnd.IsZero():
		effectiveTo = rule.SeriesEnd
	case !to.IsZero():
		effectiveTo = to
	default:
		// Unbounded on both sides: there is no honest finite expansion.
		switch policy.UnboundedRuleBehavior {
		case UnboundedEmitSingle:
			return expandUnboundedSingle(rule, effectiveFrom, policy), nil
		default:
			return nil, core.ErrUnboundedQuery
		}
	}

	if effectiveFrom.After(effectiveTo) {
		return nil, nil
	}

	targetDay := rule.EffectiveDay()
	occs := make([]core.Occurrence, 0, 4)
	month := core.MonthStart(effectiveFrom)
	lastMonth := core.MonthStart(effectiveTo)

	for i := 0; i < policy.maxMonths() && !month.After(lastMonth); i++ {
		day := core.ClampDay(month.Year, month.Month, targetDay)
		candidate := core.NewDate(month.Year, month.Month, day)

		if keep := candidateSurvives(rule, candidate, effectiveFrom, effectiveTo, today, policy); keep {
			occs = append(occs, occurrenceOf(rule, candidate))
		}
		month = core.AddMonths(month, 1)
	}
	return occs, nil
}

// candidateSurvives applies the rejection rules of a single candidate date.
func candidateSurvives(rule core.RecurrenceRule, candidate, effectiveFrom, effectiveTo, today core.Date, policy QueryPolicy) bool {
	if candidate.Before(effectiveFrom) || candidate.After(effectiveTo) {
		return false
	}
	if policy.HonorExclusions && rule.Excludes(candidate) {
		return false
	}
	if policy.TruncateCurrentMonthAtToday &&
		candidate.SameMonth(today) && candidate.Day > today.Day {
		return false
	}
	return true
}

// expandUnboundedSingle reproduces the legacy rendering of a rule without a
// series end queried without an upper bound: one synthetic occurrence pinned
// at the window's lower bound.
func expandUnboundedSingle(rule core.RecurrenceRule, effectiveFrom core.Date, policy QueryPolicy) []core.Occurrence {
	if policy.HonorExclusions && rule.Excludes(effectiveFrom) {
		return nil
	}
	return []core.Occurrence{occurrenceOf(rule, effectiveFrom)}
}

func occurrenceOf(rule core.RecurrenceRule, date core.Date) core.Occurrence {
	return core.Occurrence{
		SourceID: rule.ID,
		Date:     date,
		Amount:   rule.Amount,
		Kind:     rule.Kind,
		Category: rule.Category,
		Key:      core.OccurrenceKey(rule.ID, date),
	}
}
