package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"wastelog/internal/attachments"
	applog "wastelog/internal/log"
	"wastelog/internal/middleware/ratelimit"
	"wastelog/internal/middleware/security"
	"wastelog/internal/middleware/trace"
	"wastelog/internal/render"
	"wastelog/internal/services"
	appweb "wastelog/web"
)

// maxMultipartMemory is how much of an upload is held in memory before
// spilling to temp files.
const maxMultipartMemory = 32 << 20

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	RateLimit      ratelimit.Config
	Headers        *security.HeadersConfig
	StaticMaxAge   int
	MaxUploadFiles int
}

// Server hosts the dashboard page, its HTMX partials and the JSON API.
type Server struct {
	http.Server
	svc       *services.WasteService
	templates *template.Template
	logger    *applog.Logger
	events    *applog.StructuredLogger

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	maxUploadFiles int
	startedAt      time.Time
	shutdownOnce   sync.Once
}

// NewServer configures routes, middleware and templates.
func NewServer(addr string, svc *services.WasteService, logger *applog.Logger, opts Options) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	if opts.StaticMaxAge <= 0 {
		opts.StaticMaxAge = 3600
	}
	if opts.MaxUploadFiles <= 0 {
		opts.MaxUploadFiles = 20
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	httpLog := logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		svc:            svc,
		logger:         httpLog,
		events:         applog.NewStructuredLogger(httpLog),
		detector:       security.NewDetector(logger),
		rateLimiter:    ratelimit.NewLimiter(opts.RateLimit),
		maxUploadFiles: opts.MaxUploadFiles,
		startedAt:      time.Now(),
	}
	s.tracer = trace.NewMiddleware(httpLog, s.detector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		httpLog.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(opts.StaticMaxAge)(static))
	} else {
		httpLog.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboardPartial)
	mux.HandleFunc("POST /entries", s.handleCreateEntry)

	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntryJSON)
	mux.HandleFunc("DELETE /api/entries", s.handleClear)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/files/meta", s.handleFileRules)

	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, isMutating, s.onRateLimited)

	var handler http.Handler = mux
	handler = limited(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(httpLog)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func isMutating(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"kg":   render.Kg,
		"pct":  render.Percent,
		"icon": attachments.IconFor,
		"size": attachments.FormatFileSize,
	}
}
