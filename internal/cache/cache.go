// Package cache provides the in-process query result cache. Aggregation
// results are cheap to recompute but requested far more often than the
// ledger changes, so the HTTP layer memoizes them here and purges everything
// whenever a ledger change message arrives.
package cache

import (
	"context"
	"time"

	"bilancio/internal/log"
)

// Sweeper is implemented by caches whose expired entries need periodic
// collection.
type Sweeper interface {
	SweepExpired() int
}

// Janitor periodically sweeps expired entries out of registered caches.
type Janitor struct {
	caches []Sweeper
	logger *log.Logger
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor() *Janitor {
	return &Janitor{
		logger: log.Default(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds a cache to the sweep rotation. Not safe to call after Start.
func (j *Janitor) Register(c Sweeper) {
	j.caches = append(j.caches, c)
}

// Start launches the sweep loop in its own goroutine.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			swept := 0
			for _, c := range j.caches {
				swept += c.SweepExpired()
			}
			if swept > 0 {
				j.logger.DebugContext(context.Background(), "Swept expired cache entries",
					"count", swept)
			}
		case <-j.stop:
			return
		}
	}
}

// Stop halts the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
