package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	applog "capex/internal/log"
	"capex/internal/metrics"
	"capex/internal/middleware/ratelimit"
	"capex/internal/middleware/security"
	"capex/internal/middleware/trace"
	"capex/internal/session"
)

// Options configures NewServer.
type Options struct {
	Addr               string
	Store              *session.Store
	Logger             *applog.Logger
	RateLimitPerMinute int
	// Metrics may be nil, which disables /metrics and request metrics.
	Metrics *metrics.Metrics
}

// Server is the proposal form API.
type Server struct {
	http.Server
	store     *session.Store
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	startedAt time.Time
	draining  atomic.Bool
}

// NewServer builds the router and its middleware chain.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}

	s := &Server{
		store:     opts.Store,
		detector:  security.NewDetector(),
		startedAt: time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}

	var observer trace.Observer
	if opts.Metrics != nil {
		observer = opts.Metrics
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger, observer)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(applog.Middleware(logger))
	r.Use(s.tracer.Middleware)
	r.Use(applog.RequestIDMiddleware(trace.RequestIDFromRequest))
	r.Use(s.detector.Middleware)
	r.Use(headers.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
			WarnContext(r.Context(), "Rate limit exceeded", applog.FieldClientIP, s.detector.ExtractClientIP(r))
		TooManyRequestsError().Write(w)
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Post("/amount/normalize", s.handleNormalize)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/fields/{field}", s.handleFieldChange)
				r.Post("/undo", s.handleUndo)
			})
		})
	})

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown marks the server not ready, stops the rate limiter, and drains
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.draining.Store(true)
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
