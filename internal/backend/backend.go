// Package backend assembles the ledger store and messaging client selected
// by configuration, so entrypoints do not repeat the wiring.
package backend

import (
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/ledger"
	"bilancio/internal/storage"
	"bilancio/internal/storage/memory"
)

// Type identifies a ledger store implementation.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

// IsValid reports whether t names a known backend.
func (t Type) IsValid() bool {
	return t == MemoryBackend || t == SQLiteBackend
}

// Result is a fully wired backend. Cleanup is nil when nothing needs
// closing.
type Result struct {
	Store ledger.Store

	// AMQP is nil when no broker is configured or the broker is down;
	// callers degrade to local-only cache invalidation.
	AMQP *amqp.Client

	Cleanup func() error
}

// Close runs the cleanup hook, if any.
func (r *Result) Close() error {
	if r.Cleanup != nil {
		return r.Cleanup()
	}
	return nil
}

// Build creates the store and optional AMQP client named by cfg.
func Build(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	result := &Result{}

	switch t {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		result.Store = repo
		result.Cleanup = repo.Close
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
	case MemoryBackend:
		result.Store = memory.NewStore()
		logger.Info("Initialized memory backend")
	}

	// The broker is optional for every backend: a missed connection costs
	// cross-process cache invalidation, not correctness.
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change messages", "error", err)
		} else {
			result.AMQP = client
			prev := result.Cleanup
			result.Cleanup = func() error {
				cerr := client.Close()
				if prev != nil {
					if perr := prev(); cerr == nil {
						cerr = perr
					}
				}
				return cerr
			}
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	return result, nil
}
