package memory

import (
	"context"
	"testing"

	"bilancio/internal/core"
)

func testRule(id string) core.RecurrenceRule {
	return core.RecurrenceRule{
		ID:          id,
		Kind:        core.Expense,
		Amount:      core.Money{Cents: 900},
		AnchorDate:  core.NewDate(2024, 1, 10),
		DayOfMonth:  10,
		SeriesStart: core.NewDate(2024, 1, 10),
		Category:    "subscriptions",
	}
}

func TestStoreEntries(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	id, err := s.AppendEntry(ctx, core.PunctualEntry{
		Kind:     core.Expense,
		Amount:   core.Money{Cents: 1200},
		Date:     core.NewDate(2024, 2, 3),
		Category: "food",
	})
	if err != nil {
		t.Fatalf("AppendEntry error: %v", err)
	}

	entries, err := s.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatalf("got %v, want single entry with id %s", entries, id)
	}

	if err := s.DeleteEntry(ctx, id); err != nil {
		t.Fatalf("DeleteEntry error: %v", err)
	}
	entries, _ = s.ListEntries(ctx)
	if len(entries) != 0 {
		t.Fatalf("got %d entries after delete, want 0", len(entries))
	}

	if err := s.DeleteEntry(ctx, "missing"); err == nil {
		t.Error("deleting a missing entry should fail")
	}
}

func TestStoreRulesAndExclusions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.CreateRule(ctx, testRule("r1")); err != nil {
		t.Fatalf("CreateRule error: %v", err)
	}
	if err := s.CreateRule(ctx, testRule("r1")); err == nil {
		t.Error("duplicate rule id should fail")
	}

	d := core.NewDate(2024, 3, 10)
	if err := s.AddExclusion(ctx, "r1", d); err != nil {
		t.Fatalf("AddExclusion error: %v", err)
	}
	// Idempotent per (rule, date).
	if err := s.AddExclusion(ctx, "r1", d); err != nil {
		t.Fatalf("repeated AddExclusion error: %v", err)
	}

	rules, err := s.ListRules(ctx)
	if err != nil {
		t.Fatalf("ListRules error: %v", err)
	}
	if len(rules) != 1 || len(rules[0].ExcludedDates) != 1 || !rules[0].Excludes(d) {
		t.Fatalf("got %+v, want one rule with one exclusion on %s", rules, d.ISO())
	}

	if err := s.AddExclusion(ctx, "missing", d); err == nil {
		t.Error("exclusion on a missing rule should fail")
	}
}

// Listings hand back copies; mutating a result must not leak into the store.
func TestStoreListIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if err := s.CreateRule(ctx, testRule("r1")); err != nil {
		t.Fatalf("CreateRule error: %v", err)
	}

	rules, _ := s.ListRules(ctx)
	rules[0].ID = "tampered"

	again, _ := s.ListRules(ctx)
	if again[0].ID != "r1" {
		t.Error("list result mutation leaked into the store")
	}
}
