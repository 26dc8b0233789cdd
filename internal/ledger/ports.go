package ledger

import (
	"context"

	"bilancio/internal/core"
)

// Ports for the ledger store the engine reads from and the write operations
// the service layer forwards to it. Implementations live under
// internal/storage.
type (
	RuleReader interface {
		// ListRules returns all recurrence rules of the ledger, in stable
		// insertion order.
		ListRules(ctx context.Context) ([]core.RecurrenceRule, error)
	}

	EntryReader interface {
		// ListEntries returns all punctual entries, in stable insertion
		// order. Implementations may pre-filter by date range as an
		// optimization; the engine re-applies exact bounds regardless.
		ListEntries(ctx context.Context) ([]core.PunctualEntry, error)
	}

	EntryWriter interface {
		// AppendEntry stores a punctual entry and returns its assigned ID.
		AppendEntry(ctx context.Context, e core.PunctualEntry) (string, error)

		// DeleteEntry removes (soft-deletes) a punctual entry.
		DeleteEntry(ctx context.Context, id string) error
	}

	// ExclusionWriter records single-date deletions on a recurring series.
	ExclusionWriter interface {
		AddExclusion(ctx context.Context, ruleID string, date core.Date) error
	}
)

// Store combines the full read/write surface of a ledger store backend.
type Store interface {
	RuleReader
	EntryReader
	EntryWriter
	ExclusionWriter
}
