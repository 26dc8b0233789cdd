// Package memory provides an in-memory ledger store. It backs local
// development and tests; the durable backend is internal/storage's SQLite
// repository.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"bilancio/internal/core"
)

// Store keeps rules and entries in insertion order behind one mutex. It
// implements the ledger.Store ports.
type Store struct {
	mu      sync.Mutex
	rules   []core.RecurrenceRule
	entries []core.PunctualEntry
	nextID  int64
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

// Seed replaces the store contents, for tests and fixtures.
func (s *Store) Seed(rules []core.RecurrenceRule, entries []core.PunctualEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append([]core.RecurrenceRule(nil), rules...)
	s.entries = append([]core.PunctualEntry(nil), entries...)
	s.nextID = int64(len(entries)) + 1
}

// ListRules implements ledger.RuleReader.
func (s *Store) ListRules(ctx context.Context) ([]core.RecurrenceRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurrenceRule(nil), s.rules...), nil
}

// ListEntries implements ledger.EntryReader.
func (s *Store) ListEntries(ctx context.Context) ([]core.PunctualEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PunctualEntry(nil), s.entries...), nil
}

// AppendEntry implements ledger.EntryWriter.
func (s *Store) AppendEntry(ctx context.Context, e core.PunctualEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = "m" + strconv.FormatInt(s.nextID, 10)
	s.nextID++
	s.entries = append(s.entries, e)
	return e.ID, nil
}

// DeleteEntry implements ledger.EntryWriter.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
}

// AddExclusion implements ledger.ExclusionWriter.
func (s *Store) AddExclusion(ctx context.Context, ruleID string, date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID != ruleID {
			continue
		}
		if !s.rules[i].Excludes(date) {
			s.rules[i].ExcludedDates = append(s.rules[i].ExcludedDates, date)
		}
		return nil
	}
	return fmt.Errorf("rule %s: %w", ruleID, core.ErrNotFound)
}

// CreateRule adds a recurrence rule.
func (s *Store) CreateRule(ctx context.Context, rule core.RecurrenceRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if r.ID == rule.ID {
			return fmt.Errorf("rule %s already exists", rule.ID)
		}
	}
	s.rules = append(s.rules, rule)
	return nil
}
