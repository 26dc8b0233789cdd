package core

import (
	"fmt"
	"strings"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind is the direction of a ledger amount.
	Kind string

	// RecurrenceRule is a stored recurring ledger entry: one record standing
	// for "happens every month". The engine only ever reads rules; creating,
	// editing and deleting them belongs to the ledger store.
	RecurrenceRule struct {
		ID     string
		Kind   Kind
		Amount Money // positive magnitude; sign implied by Kind

		// AnchorDate is the date the record was created on. It supplies the
		// default target day when DayOfMonth is zero and the default series
		// start when SeriesStart is zero.
		AnchorDate Date

		// DayOfMonth is the explicit 1-31 target day, or 0 to derive it from
		// AnchorDate. The effective day of any month is clamped to that
		// month's length.
		DayOfMonth int

		SeriesStart Date // zero means AnchorDate
		SeriesEnd   Date // zero means open-ended

		// ExcludedDates are single calendar days the user removed from the
		// series without ending it.
		ExcludedDates []Date

		Category string
		Wallet   string
		Tags     []string
	}

	// PunctualEntry is a one-off, non-repeating ledger record.
	PunctualEntry struct {
		ID       string
		Kind     Kind
		Amount   Money
		Date     Date
		Category string
		Wallet   string
		Tags     []string
	}

	// Occurrence is one concrete dated instance materialized from a rule (or
	// a punctual entry folded into the same stream). Occurrences are
	// recomputed on every query and never persisted.
	Occurrence struct {
		// SourceID is the originating rule or entry ID.
		SourceID string
		Date     Date
		Amount   Money
		Kind     Kind
		Category string

		// Key is the stable identity of this logical event across repeated
		// expansions; see OccurrenceKey.
		Key string
	}
)

// ValidKind reports whether k is a known entry kind.
func ValidKind(k Kind) bool {
	return k == Income || k == Expense
}

// OccurrenceKey builds the deterministic "sourceID::YYYY-MM-DD" key. UI
// layers use it as a list key and idempotency token across re-fetches, so the
// format is a stable contract.
func OccurrenceKey(sourceID string, d Date) string {
	return sourceID + "::" + d.ISO()
}

// EffectiveDay returns the rule's target day of month, deriving it from the
// anchor date when no explicit day is set.
func (r RecurrenceRule) EffectiveDay() int {
	if r.DayOfMonth >= 1 && r.DayOfMonth <= 31 {
		return r.DayOfMonth
	}
	return r.AnchorDate.Day
}

// EffectiveStart returns the date before which no occurrence exists.
func (r RecurrenceRule) EffectiveStart() Date {
	if r.SeriesStart.IsZero() {
		return r.AnchorDate
	}
	return r.SeriesStart
}

// Excludes reports whether d is one of the rule's excluded calendar dates.
// Comparison is by calendar date, never by timestamp.
func (r RecurrenceRule) Excludes(d Date) bool {
	for _, x := range r.ExcludedDates {
		if x.Equal(d) {
			return true
		}
	}
	return false
}

// Validate checks the rule's invariants. Any failure wraps ErrRuleInvariant
// so callers can classify it without inspecting the message.
func (r RecurrenceRule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty rule id", ErrRuleInvariant)
	}
	if !ValidKind(r.Kind) {
		return fmt.Errorf("%w: kind %q", ErrRuleInvariant, r.Kind)
	}
	if err := r.Amount.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrRuleInvariant, err)
	}
	if err := r.AnchorDate.Validate(); err != nil {
		return fmt.Errorf("%w: anchor date: %v", ErrRuleInvariant, err)
	}
	if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
		return fmt.Errorf("%w: day of month %d", ErrRuleInvariant, r.DayOfMonth)
	}
	if !r.SeriesStart.IsZero() {
		if err := r.SeriesStart.Validate(); err != nil {
			return fmt.Errorf("%w: series start: %v", ErrRuleInvariant, err)
		}
	}
	if !r.SeriesEnd.IsZero() {
		if err := r.SeriesEnd.Validate(); err != nil {
			return fmt.Errorf("%w: series end: %v", ErrRuleInvariant, err)
		}
		if r.EffectiveStart().After(r.SeriesEnd) {
			return fmt.Errorf("%w: series start %s after series end %s",
				ErrRuleInvariant, r.EffectiveStart().ISO(), r.SeriesEnd.ISO())
		}
	}
	for _, x := range r.ExcludedDates {
		if err := x.Validate(); err != nil {
			return fmt.Errorf("%w: excluded date: %v", ErrRuleInvariant, err)
		}
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: %v", ErrRuleInvariant, ErrEmptyCategory)
	}
	return nil
}

// Validate checks a punctual entry before it enters the ledger.
func (e PunctualEntry) Validate() error {
	if !ValidKind(e.Kind) {
		return ErrInvalidKind
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
