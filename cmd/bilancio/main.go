package main

import (
	"context"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/amqp"
	"bilancio/internal/backend"
	"bilancio/internal/config"
	"bilancio/internal/core"
	apphttp "bilancio/internal/http"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	be, err := backend.Build(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer be.Close()

	policy := queryPolicy(cfg)
	svc := services.NewLedgerService(be.Store, be.AMQP, policy, func() core.Date {
		return core.DateOf(time.Now())
	})

	srv := apphttp.NewServer(":"+cfg.Port, svc, &apphttp.Options{
		CacheMaxEntries: cfg.CacheMaxEntries,
		CacheTTL:        cfg.CacheTTL,
		CacheSweepEvery: cfg.CacheSweepEvery,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Consume ledger change messages to purge the result cache when another
	// process writes to the shared ledger.
	if be.AMQP != nil {
		go func() {
			err := be.AMQP.ConsumeLedgerChanges(ctx, func(msg *amqp.LedgerChangeMessage) error {
				logger.Info("Ledger change received",
					"entity", msg.Entity, "id", msg.ID, "change", msg.Change)
				srv.InvalidateCaches()
				return nil
			})
			if err != nil && err != context.Canceled {
				logger.Error("Change consumption stopped", "error", err)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting bilancio server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// queryPolicy maps configuration knobs onto the engine's expansion policy.
func queryPolicy(cfg *config.Config) ledger.QueryPolicy {
	p := ledger.DefaultPolicy()
	p.MaxMonthsPerRule = cfg.MaxMonthsPerRule
	p.TruncateCurrentMonthAtToday = cfg.TruncateCurrentMonth
	if !cfg.StrictUnboundedRules {
		p.UnboundedRuleBehavior = ledger.UnboundedEmitSingle
	}
	return p
}
