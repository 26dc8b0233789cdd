package services

import (
	"context"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/storage/memory"
)

func fixedClock(d core.Date) Clock {
	return func() core.Date { return d }
}

func seededService(t *testing.T, policy ledger.QueryPolicy, today core.Date) (*LedgerService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.Seed([]core.RecurrenceRule{
		{
			ID:          "salary",
			Kind:        core.Income,
			Amount:      core.Money{Cents: 300000},
			AnchorDate:  core.NewDate(2024, 1, 1),
			DayOfMonth:  1,
			SeriesStart: core.NewDate(2024, 1, 1),
			Category:    "work",
		},
		{
			ID:          "rent",
			Kind:        core.Expense,
			Amount:      core.Money{Cents: 150000},
			AnchorDate:  core.NewDate(2024, 1, 5),
			DayOfMonth:  5,
			SeriesStart: core.NewDate(2024, 1, 5),
			Category:    "home",
		},
	}, []core.PunctualEntry{
		{
			ID:       "e1",
			Kind:     core.Expense,
			Amount:   core.Money{Cents: 2500},
			Date:     core.NewDate(2024, 2, 10),
			Category: "food",
		},
	})
	// nil AMQP client: publishing is optional and skipped.
	return NewLedgerService(store, nil, policy, fixedClock(today)), store
}

func TestServiceSummary(t *testing.T) {
	svc, _ := seededService(t, ledger.DefaultPolicy(), core.NewDate(2024, 3, 15))

	result, err := svc.Summary(context.Background(),
		core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29), ledger.EntryFilter{})
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}

	if result.TotalIncome.Cents != 300000 || result.TotalExpense.Cents != 152500 {
		t.Errorf("totals = %d/%d, want 300000/152500",
			result.TotalIncome.Cents, result.TotalExpense.Cents)
	}
	if len(result.Occurrences) != 3 {
		t.Errorf("got %d occurrences, want 3", len(result.Occurrences))
	}
}

// Summary injects the service clock: with truncation on and today before the
// rent day, February's rent does not count yet.
func TestServiceSummaryTruncation(t *testing.T) {
	svc, _ := seededService(t, ledger.DashboardPolicy(), core.NewDate(2024, 2, 3))

	result, err := svc.Summary(context.Background(),
		core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29), ledger.EntryFilter{})
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}

	if result.TotalExpense.Cents != 2500 {
		t.Errorf("TotalExpense = %d, want only the punctual 2500", result.TotalExpense.Cents)
	}
	if result.TotalIncome.Cents != 300000 {
		t.Errorf("TotalIncome = %d, want 300000 (day 1 already passed)", result.TotalIncome.Cents)
	}
}

func TestServiceAccumulatedBalance(t *testing.T) {
	svc, _ := seededService(t, ledger.DefaultPolicy(), core.NewDate(2024, 4, 15))

	balance, err := svc.AccumulatedBalance(context.Background(),
		core.NewDate(2024, 3, 31), ledger.EntryFilter{})
	if err != nil {
		t.Fatalf("AccumulatedBalance error: %v", err)
	}

	want := int64(3*300000 - 3*150000 - 2500)
	if balance.Cents != want {
		t.Errorf("balance = %d, want %d", balance.Cents, want)
	}
}

func TestServiceCreateAndDeleteEntry(t *testing.T) {
	ctx := context.Background()
	svc, store := seededService(t, ledger.DefaultPolicy(), core.NewDate(2024, 3, 15))

	id, err := svc.CreateEntry(ctx, core.PunctualEntry{
		Kind:     core.Income,
		Amount:   core.Money{Cents: 5000},
		Date:     core.NewDate(2024, 3, 1),
		Category: "gift",
	})
	if err != nil {
		t.Fatalf("CreateEntry error: %v", err)
	}

	entries, _ := store.ListEntries(ctx)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if err := svc.DeleteEntry(ctx, id); err != nil {
		t.Fatalf("DeleteEntry error: %v", err)
	}
	entries, _ = store.ListEntries(ctx)
	if len(entries) != 1 {
		t.Fatalf("got %d entries after delete, want 1", len(entries))
	}
}

func TestServiceCreateEntryValidation(t *testing.T) {
	svc, _ := seededService(t, ledger.DefaultPolicy(), core.NewDate(2024, 3, 15))

	_, err := svc.CreateEntry(context.Background(), core.PunctualEntry{
		Kind:     "refund", // not a kind
		Amount:   core.Money{Cents: 100},
		Date:     core.NewDate(2024, 3, 1),
		Category: "misc",
	})
	if err == nil {
		t.Fatal("CreateEntry should reject an invalid kind")
	}
}

func TestServiceExcludeOccurrence(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t, ledger.DefaultPolicy(), core.NewDate(2024, 4, 15))

	window := func() int {
		result, err := svc.Summary(ctx, core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29), ledger.EntryFilter{})
		if err != nil {
			t.Fatalf("Summary error: %v", err)
		}
		return len(result.Occurrences)
	}

	before := window()
	if err := svc.ExcludeOccurrence(ctx, "rent", core.NewDate(2024, 2, 5)); err != nil {
		t.Fatalf("ExcludeOccurrence error: %v", err)
	}
	after := window()

	if after != before-1 {
		t.Errorf("occurrences went %d -> %d, want exactly one fewer", before, after)
	}
}
