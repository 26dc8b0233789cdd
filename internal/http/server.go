// Package http exposes the ledger over a JSON API. Read endpoints are
// served through an in-process result cache that is purged whenever the
// ledger changes, locally or via an AMQP change message.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
)

// LedgerService is the slice of the service layer the API needs.
type LedgerService interface {
	Summary(ctx context.Context, from, to core.Date, filter ledger.EntryFilter) (core.LedgerResult, error)
	Forecast(ctx context.Context, from, to core.Date, filter ledger.EntryFilter) (core.LedgerResult, error)
	AccumulatedBalance(ctx context.Context, through core.Date, filter ledger.EntryFilter) (core.Money, error)
	CreateEntry(ctx context.Context, e core.PunctualEntry) (string, error)
	DeleteEntry(ctx context.Context, id string) error
	ExcludeOccurrence(ctx context.Context, ruleID string, date core.Date) error
}

// Options tunes the server's result cache.
type Options struct {
	CacheMaxEntries int
	CacheTTL        time.Duration
	CacheSweepEvery time.Duration
}

func defaultOptions() Options {
	return Options{
		CacheMaxEntries: 256,
		CacheTTL:        5 * time.Minute,
		CacheSweepEvery: time.Minute,
	}
}

type Server struct {
	http.Server
	svc         LedgerService
	logger      *log.Logger
	rateLimiter *rateLimiter

	summaryCache *cache.LRUCache[core.LedgerResult]
	balanceCache *cache.LRUCache[core.Money]
	janitor      *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, svc LedgerService, opts *Options) *Server {
	o := defaultOptions()
	if opts != nil {
		o = *opts
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:          svc,
		logger:       log.Default(log.ComponentHTTP),
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[core.LedgerResult](o.CacheMaxEntries, o.CacheTTL),
		balanceCache: cache.NewLRUCache[core.Money](o.CacheMaxEntries, o.CacheTTL),
		janitor:      cache.NewJanitor(),
	}
	s.janitor.Register(s.summaryCache)
	s.janitor.Register(s.balanceCache)
	s.janitor.Start(o.CacheSweepEvery)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/v1/summary", s.withRequestContext(s.handleSummary))
	mux.HandleFunc("/api/v1/forecast", s.withRequestContext(s.handleForecast))
	mux.HandleFunc("/api/v1/balance", s.withRequestContext(s.handleBalance))
	mux.HandleFunc("/api/v1/entries", s.withRequestContext(s.handleEntries))
	mux.HandleFunc("/api/v1/entries/", s.withRequestContext(s.handleEntryByID))
	mux.HandleFunc("/api/v1/rules/", s.withRequestContext(s.handleRuleSubresource))

	return s
}

// InvalidateCaches drops every cached query result. Called on local writes
// and on ledger change messages from other processes.
func (s *Server) InvalidateCaches() {
	s.summaryCache.Purge()
	s.balanceCache.Purge()
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestContext adds request IDs, logging and mutation rate limiting.
func (s *Server) withRequestContext(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
