package ledger

import (
	"errors"
	"reflect"
	"testing"

	"bilancio/internal/core"
)

func monthlyRule(id string, day int) core.RecurrenceRule {
	return core.RecurrenceRule{
		ID:          id,
		Kind:        core.Expense,
		Amount:      core.Money{Cents: 1500},
		AnchorDate:  core.NewDate(2024, 1, 1),
		DayOfMonth:  day,
		SeriesStart: core.NewDate(2024, 1, 1),
		Category:    "rent",
	}
}

func TestExpandDayClamping(t *testing.T) {
	rule := monthlyRule("r1", 31)

	occs, err := Expand(rule, core.NewDate(2024, 1, 1), core.NewDate(2024, 4, 30), core.Date{}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	want := []core.Date{
		core.NewDate(2024, 1, 31),
		core.NewDate(2024, 2, 29), // leap February, clamped, never skipped
		core.NewDate(2024, 3, 31),
		core.NewDate(2024, 4, 30),
	}
	if len(occs) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(occs), len(want))
	}
	for i, w := range want {
		if !occs[i].Date.Equal(w) {
			t.Errorf("occurrence %d on %s, want %s", i, occs[i].Date.ISO(), w.ISO())
		}
		if occs[i].Key != "r1::"+w.ISO() {
			t.Errorf("occurrence %d key %q, want %q", i, occs[i].Key, "r1::"+w.ISO())
		}
	}
}

func TestExpandNonLeapFebruary(t *testing.T) {
	rule := monthlyRule("r1", 31)
	rule.AnchorDate = core.NewDate(2023, 1, 1)
	rule.SeriesStart = core.NewDate(2023, 1, 1)

	occs, err := Expand(rule, core.NewDate(2023, 2, 1), core.NewDate(2023, 2, 28), core.Date{}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 1 || !occs[0].Date.Equal(core.NewDate(2023, 2, 28)) {
		t.Fatalf("got %v, want single occurrence on 2023-02-28", occs)
	}
}

func TestExpandAnchorDerivedDay(t *testing.T) {
	rule := monthlyRule("r1", 0)
	rule.AnchorDate = core.NewDate(2024, 1, 15)
	rule.SeriesStart = core.NewDate(2024, 1, 15)

	occs, err := Expand(rule, core.NewDate(2024, 1, 1), core.NewDate(2024, 3, 31), core.Date{}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occs))
	}
	for _, o := range occs {
		if o.Date.Day != 15 {
			t.Errorf("occurrence on %s, want day 15", o.Date.ISO())
		}
	}
}

func TestExpandExclusionRoundTrip(t *testing.T) {
	rule := monthlyRule("r1", 31)
	from, to := core.NewDate(2024, 1, 1), core.NewDate(2024, 4, 30)

	before, err := Expand(rule, from, to, core.Date{}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	excluded := before[1].Date // 2024-02-29
	rule.ExcludedDates = []core.Date{excluded}

	after, err := Expand(rule, from, to, core.Date{}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	if len(after) != len(before)-1 {
		t.Fatalf("got %d occurrences after exclusion, want %d", len(after), len(before)-1)
	}
	// Every other occurrence is unchanged.
	rest := append([]core.Occurrence{before[0]}, before[2:]...)
	if !reflect.DeepEqual(after, rest) {
		t.Errorf("non-excluded occurrences changed: got %v, want %v", after, rest)
	}
}

func TestExpandIgnoredExclusions(t *testing.T) {
	rule := monthlyRule("r1", 31)
	rule.ExcludedDates = []core.Date{core.NewDate(2024, 2, 29)}

	policy := DefaultPolicy()
	policy.HonorExclusions = false

	occs, err := Expand(rule, core.NewDate(2024, 1, 1), core.NewDate(2024, 4, 30), core.Date{}, policy)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 4 {
		t.Fatalf("got %d occurrences with exclusions ignored, want 4", len(occs))
	}
}

func TestExpandIntervalIntersection(t *testing.T) {
	rule := monthlyRule("r1", 10)
	rule.SeriesStart = core.NewDate(2024, 1, 10)
	rule.SeriesEnd = core.NewDate(2024, 3, 5)

	occs, err := Expand(rule, core.NewDate(2024, 2, 1), core.NewDate(2024, 12, 31), core.Date{}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	// January is before the query, March's day 10 is past the series end:
	// only February survives.
	if len(occs) != 1 || !occs[0].Date.Equal(core.NewDate(2024, 2, 10)) {
		t.Fatalf("got %v, want single occurrence on 2024-02-10", occs)
	}
}

func TestExpandSeriesEndBeforeQuery(t *testing.T) {
	rule := monthlyRule("r1", 10)
	rule.SeriesEnd = core.NewDate(2024, 1, 31)

	occs, err := Expand(rule, core.NewDate(2024, 3, 1), core.NewDate(2024, 12, 31), core.Date{}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 0 {
		t.Fatalf("got %d occurrences for an ended series, want 0", len(occs))
	}
}

func TestExpandTruncation(t *testing.T) {
	rule := monthlyRule("r1", 20)
	from, to := core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 30)

	policy := DefaultPolicy()
	policy.TruncateCurrentMonthAtToday = true

	tests := []struct {
		name  string
		today core.Date
		want  int
	}{
		{"before scheduled day", core.NewDate(2024, 6, 15), 0},
		{"after scheduled day", core.NewDate(2024, 6, 25), 1},
		{"on scheduled day", core.NewDate(2024, 6, 20), 1},
		{"today in later month", core.NewDate(2024, 7, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occs, err := Expand(rule, from, to, tt.today, policy)
			if err != nil {
				t.Fatalf("Expand error: %v", err)
			}
			if len(occs) != tt.want {
				t.Errorf("got %d occurrences, want %d", len(occs), tt.want)
			}
		})
	}
}

func TestExpandTruncationRequiresToday(t *testing.T) {
	policy := DefaultPolicy()
	policy.TruncateCurrentMonthAtToday = true

	_, err := Expand(monthlyRule("r1", 20), core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 30), core.Date{}, policy)
	if !errors.Is(err, core.ErrClockNotProvided) {
		t.Fatalf("got %v, want ErrClockNotProvided", err)
	}
}

func TestExpandUnbounded(t *testing.T) {
	rule := monthlyRule("r1", 31) // no series end
	from := core.NewDate(2024, 2, 1)

	t.Run("reject", func(t *testing.T) {
		_, err := Expand(rule, from, core.Date{}, core.Date{}, DefaultPolicy())
		if !errors.Is(err, core.ErrUnboundedQuery) {
			t.Fatalf("got %v, want ErrUnboundedQuery", err)
		}
	})

	t.Run("emit single", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.UnboundedRuleBehavior = UnboundedEmitSingle

		occs, err := Expand(rule, from, core.Date{}, core.Date{}, policy)
		if err != nil {
			t.Fatalf("Expand error: %v", err)
		}
		if len(occs) != 1 || !occs[0].Date.Equal(from) {
			t.Fatalf("got %v, want single occurrence at %s", occs, from.ISO())
		}
	})
}

func TestExpandMaxMonthsBound(t *testing.T) {
	rule := monthlyRule("r1", 1)
	rule.AnchorDate = core.NewDate(2020, 1, 1)
	rule.SeriesStart = core.NewDate(2020, 1, 1)

	occs, err := Expand(rule, core.NewDate(2020, 1, 1), core.NewDate(2024, 12, 31), core.Date{}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != DefaultMaxMonthsPerRule {
		t.Fatalf("got %d occurrences over a 60-month window, want the %d-month bound", len(occs), DefaultMaxMonthsPerRule)
	}
}

func TestExpandInvalidRule(t *testing.T) {
	rule := monthlyRule("r1", 10)
	rule.SeriesStart = core.NewDate(2024, 6, 1)
	rule.SeriesEnd = core.NewDate(2024, 1, 1)

	_, err := Expand(rule, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31), core.Date{}, DefaultPolicy())
	if !errors.Is(err, core.ErrRuleInvariant) {
		t.Fatalf("got %v, want ErrRuleInvariant", err)
	}
}

func TestExpandInvalidInterval(t *testing.T) {
	_, err := Expand(monthlyRule("r1", 10), core.NewDate(2024, 6, 1), core.NewDate(2024, 1, 1), core.Date{}, DefaultPolicy())
	if !errors.Is(err, core.ErrInvalidInterval) {
		t.Fatalf("got %v, want ErrInvalidInterval", err)
	}
}

// Calling Expand twice with identical arguments must yield identical output.
func TestExpandDeterminism(t *testing.T) {
	rule := monthlyRule("r1", 31)
	rule.ExcludedDates = []core.Date{core.NewDate(2024, 3, 31)}
	from, to := core.NewDate(2024, 1, 1), core.NewDate(2024, 6, 30)
	today := core.NewDate(2024, 6, 10)

	policy := DashboardPolicy()

	first, err := Expand(rule, from, to, today, policy)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	second, err := Expand(rule, from, to, today, policy)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated expansion differs:\n%v\n%v", first, second)
	}
}

// The full scenario from the engine's acceptance checklist: monthly expense
// on day 31, February window, today already in March.
func TestExpandFebruaryScenario(t *testing.T) {
	rule := monthlyRule("r1", 31)

	policy := DefaultPolicy()
	policy.TruncateCurrentMonthAtToday = true

	occs, err := Expand(rule,
		core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29),
		core.NewDate(2024, 3, 1), policy)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occs))
	}
	o := occs[0]
	if !o.Date.Equal(core.NewDate(2024, 2, 29)) || o.Amount.Cents != 1500 || o.Kind != core.Expense {
		t.Errorf("got %+v, want expense of 1500 cents on 2024-02-29", o)
	}
}
