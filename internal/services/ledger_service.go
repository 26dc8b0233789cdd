// Package services orchestrates ledger operations: it reads rules and
// entries from the store, runs the recurrence engine over them and forwards
// writes, announcing every change over AMQP.
package services

import (
	"context"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
)

// Clock supplies "today" as a calendar date. The engine itself never reads a
// wall clock; the service injects this value into every aggregation so tests
// can pin it.
type Clock func() core.Date

// LedgerService wires the store, the engine and the event stream together.
type LedgerService struct {
	store      ledger.Store
	amqpClient *amqp.Client
	policy     ledger.QueryPolicy
	clock      Clock
	logger     *log.Logger
}

func NewLedgerService(store ledger.Store, amqpClient *amqp.Client, policy ledger.QueryPolicy, clock Clock) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
		policy:     policy,
		clock:      clock,
		logger:     log.Default(log.ComponentLedger),
	}
}

// Summary aggregates the ledger over [from, to] (zero dates are open bounds)
// with the service's configured policy.
func (s *LedgerService) Summary(ctx context.Context, from, to core.Date, filter ledger.EntryFilter) (core.LedgerResult, error) {
	return s.summarize(ctx, from, to, s.policy, filter)
}

// Forecast aggregates with the forecast policy: future months count in full.
func (s *LedgerService) Forecast(ctx context.Context, from, to core.Date, filter ledger.EntryFilter) (core.LedgerResult, error) {
	return s.summarize(ctx, from, to, ledger.ForecastPolicy(), filter)
}

func (s *LedgerService) summarize(ctx context.Context, from, to core.Date, policy ledger.QueryPolicy, filter ledger.EntryFilter) (core.LedgerResult, error) {
	rules, entries, err := s.load(ctx)
	if err != nil {
		return core.LedgerResult{}, err
	}

	result, err := ledger.Aggregate(ctx, rules, entries, from, to, s.clock(), policy, filter)
	if err != nil {
		return core.LedgerResult{}, err
	}

	for ruleID, ruleErr := range result.RuleErrors {
		s.logger.WarnContext(ctx, "Rule skipped during aggregation",
			log.FieldRuleID, ruleID,
			log.FieldError, ruleErr)
	}
	return result, nil
}

// AccumulatedBalance computes the net balance of all ledger history through
// the given date.
func (s *LedgerService) AccumulatedBalance(ctx context.Context, through core.Date, filter ledger.EntryFilter) (core.Money, error) {
	rules, entries, err := s.load(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return ledger.AccumulatedBalance(ctx, rules, entries, through, s.clock(),
		ledger.AccumulatedBalancePolicy(), filter)
}

// CreateEntry validates and stores a punctual entry, then announces it.
// Publishing is non-fatal: the entry is already durable when it fails.
func (s *LedgerService) CreateEntry(ctx context.Context, e core.PunctualEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate entry: %w", err)
	}

	id, err := s.store.AppendEntry(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}

	s.publishChange(ctx, amqp.EntityEntry, id, amqp.ChangeCreated)
	return id, nil
}

// DeleteEntry removes a punctual entry and announces the deletion.
func (s *LedgerService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	s.publishChange(ctx, amqp.EntityEntry, id, amqp.ChangeDeleted)
	return nil
}

// ExcludeOccurrence deletes one dated occurrence of a recurring series
// without ending the series.
func (s *LedgerService) ExcludeOccurrence(ctx context.Context, ruleID string, date core.Date) error {
	if err := date.Validate(); err != nil {
		return err
	}
	if err := s.store.AddExclusion(ctx, ruleID, date); err != nil {
		return fmt.Errorf("add exclusion: %w", err)
	}

	s.publishChange(ctx, amqp.EntityRule, ruleID, amqp.ChangeExcluded)
	return nil
}

func (s *LedgerService) load(ctx context.Context) ([]core.RecurrenceRule, []core.PunctualEntry, error) {
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list rules: %w", err)
	}
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list entries: %w", err)
	}
	return rules, entries, nil
}

func (s *LedgerService) publishChange(ctx context.Context, entity, id, change string) {
	if s.amqpClient == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping change message",
			"entity", entity, "id", id)
		return
	}
	msg := amqp.NewLedgerChangeMessage(entity, id, change)
	if err := s.amqpClient.PublishLedgerChange(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			"entity", entity,
			"id", id,
			"change", change,
			log.FieldError, err)
	}
}
