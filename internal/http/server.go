// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"siuang/internal/aggregate"
	"siuang/internal/core"
	applog "siuang/internal/log"
	"siuang/internal/services"
)

// Ledger is what the handlers need from the service layer.
type Ledger interface {
	Add(ctx context.Context, in services.NewTransaction) (core.Transaction, error)
	Edit(ctx context.Context, id string, in services.NewTransaction) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	Transactions(ctx context.Context, o aggregate.SortOrder, f aggregate.Focus) ([]core.Transaction, error)
	Summaries(ctx context.Context, g aggregate.Granularity, o aggregate.SortOrder, f aggregate.Focus) ([]aggregate.Summary, error)
	Totals(ctx context.Context, g aggregate.Granularity, f aggregate.Focus) (aggregate.Totals, error)
	Export(ctx context.Context, start, end, category string) (services.ExportResult, error)
	Categories(ctx context.Context) ([]string, error)
	Ready(ctx context.Context) error
}

type Options struct {
	Currency string
	Logger   *applog.Logger
	// WriteLimit caps mutating requests per client IP per minute; 0 uses 60.
	WriteLimit int
}

type Server struct {
	http.Server
	ledger      Ledger
	currency    string
	validate    *validator.Validate
	logger      *applog.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}
	currency := opts.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:      ledger,
		currency:    currency,
		validate:    newValidator(),
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(opts.WriteLimit),
		metrics:     &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /transactions", s.withSecurityHeaders(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.withSecurityHeaders(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withSecurityHeaders(s.handleDeleteTransaction))
	mux.HandleFunc("GET /summaries", s.withSecurityHeaders(s.handleSummaries))
	mux.HandleFunc("GET /totals", s.withSecurityHeaders(s.handleTotals))
	mux.HandleFunc("POST /export", s.withSecurityHeaders(s.handleExport))
	mux.HandleFunc("GET /categories", s.withSecurityHeaders(s.handleCategories))

	s.Handler = applog.Middleware(s.logger)(mux)
	return s
}

// withSecurityHeaders sets the response security headers and rate limits
// mutating requests per client IP.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, s.metrics) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
		}

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later", nil)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")
		next(w, r)
	}
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Ready(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
