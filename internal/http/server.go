// Package http exposes goals, recurring transactions, projections and the
// payroll calculator as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/log"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/middleware/ratelimit"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/middleware/security"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/middleware/trace"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Goals     *services.GoalService
	Recurring *services.RecurringService
	Tax       *services.TaxService
	// Ready is checked by /readyz; nil means always ready.
	Ready Pinger
}

// Options tune the middleware chain.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	deps Deps

	logger           *log.Logger
	structured       *log.StructuredLogger
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	started          time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		deps:             deps,
		logger:           logger,
		structured:       log.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		started:          time.Now(),
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, s.structured)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /goals", s.handleListGoals)
	mux.HandleFunc("POST /goals", s.handleCreateGoal)
	mux.HandleFunc("GET /goals/{id}", s.handleGetGoal)
	mux.HandleFunc("DELETE /goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("GET /goals/{id}/snapshot", s.handleGoalSnapshot)
	mux.HandleFunc("POST /goals/{id}/refresh", s.handleRefreshGoal)

	mux.HandleFunc("GET /analyze", s.handleAnalyzeAll)
	mux.HandleFunc("GET /analyze/{id}", s.handleAnalyzeGoal)

	mux.HandleFunc("GET /regular", s.handleListRecurring)
	mux.HandleFunc("POST /regular", s.handleCreateRecurring)
	mux.HandleFunc("GET /regular/summary", s.handleRecurringSummary)
	mux.HandleFunc("GET /regular/{id}", s.handleGetRecurring)
	mux.HandleFunc("PUT /regular/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("DELETE /regular/{id}", s.handleDeleteRecurring)
	mux.HandleFunc("GET /regular/{id}/schedule", s.handleRecurringSchedule)

	mux.HandleFunc("POST /tax/calculate", s.handleCalculateTax)

	// Wrapped innermost first; trace ends up outermost so it sees every request,
	// including rejected ones.
	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, ratelimit.MutatingOnly, s.handleRateLimited)(h)
	h = log.RequestIDMiddleware(trace.RequestID)(h)
	h = log.Middleware(logger)(h)
	h = s.securityDetector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.traceMiddleware.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}
