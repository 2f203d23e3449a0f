// Package web provides the HTTP server and handlers for the satisfaction dashboard.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/airsat/internal/config"
	"github.com/JonMunkholm/airsat/internal/core"
	"github.com/JonMunkholm/airsat/internal/export"
	mw "github.com/JonMunkholm/airsat/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// LoadInfo describes the dataset the server was started with.
type LoadInfo struct {
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time
	Report   core.CleanReport
}

// Server is the HTTP server for the dashboard.
// The dataset is read-only after construction and shared by every request.
type Server struct {
	cfg      *config.Config
	data     *core.Dataset
	info     LoadInfo
	bounds   core.Bounds
	defaults core.FilterSpec

	sessions *sessionStore
	exports  *export.Limiter
	limiters []*rateLimiter

	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server over a cleaned dataset.
func NewServer(cfg *config.Config, data *core.Dataset, info LoadInfo) *Server {
	if info.ID == uuid.Nil {
		info.ID = uuid.New()
	}
	if info.LoadedAt.IsZero() {
		info.LoadedAt = time.Now()
	}

	s := &Server{
		cfg:      cfg,
		data:     data,
		info:     info,
		bounds:   core.ObservedBounds(data),
		defaults: core.DefaultSpec(data, cfg.Filters.Defaults()),
		sessions: newSessionStore(cfg.Session.TTL),
		exports:  export.NewLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.limiters = append(s.limiters, limiter)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("static assets: %v", err))
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/healthz", s.handleHealth)

	// Charts
	s.router.Get("/chart/satisfaction.png", s.handleSatisfactionChart)
	s.router.Get("/chart/ratings.png", s.handleRatingsChart)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/records", s.handleRecords)
		r.Get("/bounds", s.handleBounds)
		r.Get("/clean-report", s.handleCleanReport)

		// Exports are expensive, so they get a tighter per-IP budget on top
		// of the concurrency limiter.
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				limiter := newRateLimiter(s.cfg.Rate.ExportLimit, time.Minute)
				s.limiters = append(s.limiters, limiter)
				r.Use(limiter.middleware)
			}
			r.Get("/export.csv", s.handleExport(export.FormatCSV))
			r.Get("/export.xlsx", s.handleExport(export.FormatXLSX))
		})
	})

	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr, "rows", s.data.Len(), "load_id", s.info.ID)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, letting in-flight exports finish
// before background goroutines are stopped.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	if drainErr := s.exports.WaitForDrain(ctx); drainErr != nil {
		slog.Warn("exports still running at shutdown", "active", s.exports.Active())
	}
	s.Close()
	return err
}

// Close stops the session janitor and rate limiter cleanup goroutines.
func (s *Server) Close() {
	s.sessions.Close()
	for _, l := range s.limiters {
		l.Close()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				// Stylesheet and chart images are served from this origin.
				w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; img-src 'self' data:; form-action 'self'")
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window

	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until Close is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (rl *rateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by client IP.
// TrustedRealIP has already rewritten RemoteAddr for proxied requests.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "path", r.URL.Path, "error", err)
	}
}
