package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

const (
	defaultRateLimitPerMinute = 100
	defaultBodyLimit          = 1 << 20 // 1 MB; item payloads are a few hundred bytes
	defaultRequestTimeout     = 30 * time.Second

	strictCSP = "default-src 'self'"
	// The Swagger UI page bootstraps itself with inline script and style.
	docsCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
)

// ServerConfig holds the options for NewRouter. Zero values select defaults.
type ServerConfig struct {
	ServiceName   string
	IsDevelopment bool
	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Pass "*" (dev only) to allow all origins.
	CORSAllowedOrigins string
	// RateLimitPerMinute caps requests per client IP; zero falls back to 100.
	RateLimitPerMinute int
	// BodyLimitBytes caps request bodies; zero falls back to 1 MB.
	BodyLimitBytes int64
	// RequestTimeout bounds each handler; zero falls back to 30 s.
	RequestTimeout time.Duration
	// DocsPathPrefix is served with a CSP that lets the Swagger UI run.
	// Empty means every path gets the strict policy.
	DocsPathPrefix string
}

// Middlewares are the app-specific middlewares NewRouter installs ahead of
// the chi built-ins. Nil entries are skipped.
type Middlewares struct {
	Recovery func(http.Handler) http.Handler
	Sentry   func(http.Handler) http.Handler
	Otel     func(http.Handler) http.Handler
	Logger   func(http.Handler) http.Handler
}

// NewRouter returns a chi.Mux pre-wired with the project's standard middleware stack.
//
// Middleware order (outermost → innermost):
//  1. Recovery: catches panics that re-panic from sentry
//  2. Sentry: captures panics, re-panics (Repanic: true)
//  3. RequestID: unique X-Request-Id per request
//  4. Otel: starts trace span per request
//  5. Logger: logs request + trace_id/span_id
//  6. RealIP: sets RemoteAddr from X-Forwarded-For
//  7. RateLimit: RateLimitPerMinute req/min per IP
//  8. CORS: cross-origin preflight and headers
//  9. BodyLimit: BodyLimitBytes request body cap
//  10. Timeout: RequestTimeout handler deadline
//  11. Security headers: CSP, HSTS, X-Frame-Options, Permissions-Policy, etc.
func NewRouter(cfg ServerConfig, mw Middlewares) *chi.Mux {
	limit := cfg.RateLimitPerMinute
	if limit <= 0 {
		limit = defaultRateLimitPerMinute
	}
	bodyLimit := cfg.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	stack := make([]func(http.Handler) http.Handler, 0, 11)
	for _, m := range []func(http.Handler) http.Handler{mw.Recovery, mw.Sentry} {
		if m != nil {
			stack = append(stack, m)
		}
	}
	stack = append(stack, middleware.RequestID)
	for _, m := range []func(http.Handler) http.Handler{mw.Otel, mw.Logger} {
		if m != nil {
			stack = append(stack, m)
		}
	}
	stack = append(stack,
		middleware.RealIP,
		httprate.LimitByIP(limit, time.Minute),
		CORSMiddleware(cfg.CORSAllowedOrigins),
		RequestBodyLimit(bodyLimit),
		middleware.Timeout(timeout),
		SecurityHeaders(cfg.IsDevelopment, cfg.DocsPathPrefix),
	)

	r := chi.NewRouter()
	r.Use(stack...)
	return r
}

// SecurityHeaders sets the unrolled/secure header set. Paths under
// docsPrefix get a CSP relaxed just enough for the Swagger UI.
func SecurityHeaders(isDevelopment bool, docsPrefix string) func(http.Handler) http.Handler {
	strict := newSecure(isDevelopment, strictCSP)
	docs := newSecure(isDevelopment, docsCSP)

	return func(next http.Handler) http.Handler {
		strictNext := strict.Handler(next)
		docsNext := docs.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if docsPrefix != "" && strings.HasPrefix(r.URL.Path, docsPrefix) {
				docsNext.ServeHTTP(w, r)
				return
			}
			strictNext.ServeHTTP(w, r)
		})
	}
}

func newSecure(isDevelopment bool, csp string) *secure.Secure {
	return secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: csp,
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), usb=(), magnetometer=(), gyroscope=()",
		IsDevelopment:         isDevelopment,
	})
}

// CORSMiddleware returns a CORS handler restricted to the given allowed origins.
// allowedOrigins is a comma-separated list (e.g. "https://shop.example.com,http://localhost:3000").
// Pass "*" to allow all origins (development only).
func CORSMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   parseOrigins(allowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// parseOrigins splits a comma-separated origins string into a slice, trimming spaces.
func parseOrigins(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// RequestBodyLimit returns middleware that caps the request body at maxBytes.
// Reads past the cap fail with *http.MaxBytesError, which
// validator.ValidateRequest turns into a 413.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer returns an *http.Server whose write timeout outlasts the handler
// timeout so middleware.Timeout answers first.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      defaultRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}
