package http

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendboard/internal/cache"
	"spendboard/internal/core"
	applog "spendboard/internal/log"
	"spendboard/internal/observability"
	"spendboard/internal/store"
	appweb "spendboard/web"
)

// Options tunes server behavior; zero values fall back to the defaults
// below.
type Options struct {
	RateLimitPerMinute int
	CacheTTL           time.Duration
	CacheMaxEntries    int
	// SnapshotPath is re-read on reload requests.
	SnapshotPath string
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CacheMaxEntries <= 0 {
		o.CacheMaxEntries = 200
	}
	return o
}

type Server struct {
	http.Server

	store        *store.Store
	opts         Options
	logger       *applog.Logger
	rateLimiter  *rateLimiter
	cacheManager *cache.Manager

	// Derived-result caches, keyed by snapshot generation + filter so a
	// reload can never serve stale data.
	spendCache   *cache.LRUCache[[]core.SpendRecord]
	summaryCache *cache.LRUCache[core.Summary]
	rollupCache  *cache.LRUCache[[]core.DimensionTotal]
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and caches, returning a
// ready-to-run server over the given snapshot store.
func NewServer(addr string, st *store.Store, logger *applog.Logger, opts Options) *Server {
	opts = opts.withDefaults()
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:        st,
		opts:         opts,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:  newRateLimiter(opts.RateLimitPerMinute),
		cacheManager: cache.NewManager(),
		spendCache:   cache.NewLRUCache[[]core.SpendRecord](opts.CacheMaxEntries, opts.CacheTTL),
		summaryCache: cache.NewLRUCache[core.Summary](opts.CacheMaxEntries, opts.CacheTTL),
		rollupCache:  cache.NewLRUCache[[]core.DimensionTotal](opts.CacheMaxEntries, opts.CacheTTL),
	}

	s.cacheManager.Register(s.spendCache)
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.rollupCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/api/spend", s.withMiddleware(s.handleSpend))
	mux.HandleFunc("/api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/api/breakdown", s.withMiddleware(s.handleBreakdown))
	mux.HandleFunc("/api/reload", s.withMiddleware(s.handleReload))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", observability.Handler())

	// Static dashboard shell with SPA fallback: unknown paths get index.html
	// so client-side routing keeps working.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		s.mountStatic(mux, sub)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	return s
}

func (s *Server) mountStatic(mux *http.ServeMux, static fs.FS) {
	fileServer := http.FileServer(http.FS(static))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			if f, err := fs.Stat(static, trimLeadingSlash(r.URL.Path)); err == nil && !f.IsDir() {
				w.Header().Set("Cache-Control", "public, max-age=3600")
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		// SPA fallback
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/"
		fileServer.ServeHTTP(w, r2)
	})
}

func trimLeadingSlash(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}

// withMiddleware adds security headers, rate limiting, request logging and
// metrics to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := "req_" + uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		s.logger.DebugContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldQuery, r.URL.RawQuery,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		// Mutating requests (reload) are rate limited per client.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldRequestID, requestID,
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			observability.HTTPRequests.WithLabelValues(r.URL.Path, strconv.Itoa(http.StatusTooManyRequests)).Inc()
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		observability.HTTPRequests.WithLabelValues(r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
		s.logger.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) cacheKey(gen uint64, suffix string) string {
	return fmt.Sprintf("%d|%s", gen, suffix)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
