package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"natours/config"
	"natours/infras/metrics"
	"natours/infras/otel"
	"natours/shared/constant"
	"natours/shared/failure"
	"natours/transport/http/response"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

const (
	otelHTTPScopeName = "http"
	unmatchedRoute    = "unmatched"
)

type AppMiddleware interface {
	Tracing(next http.Handler) http.Handler
	SecurityHeaders(next http.Handler) http.Handler
	CORS() func(http.Handler) http.Handler
	RequestLog() []func(http.Handler) http.Handler
	Metrics(next http.Handler) http.Handler
	DevMode(next http.Handler) http.Handler
	RateLimit() func(http.Handler) http.Handler
	BodyLimit(next http.Handler) http.Handler
	Sanitize(next http.Handler) http.Handler
	NotFound(w http.ResponseWriter, r *http.Request)
	MethodNotAllowed(w http.ResponseWriter, r *http.Request)
}

type appMiddleware struct {
	otel    otel.Otel
	config  *config.Config
	proxies []netip.Prefix
}

func NewAppMiddleware(otel otel.Otel, config *config.Config) AppMiddleware {
	return &appMiddleware{
		otel:    otel,
		config:  config,
		proxies: trustedProxies(config.App.RateLimiter.TrustedProxies),
	}
}

func (a *appMiddleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := a.otel.NewScope(r.Context(), otelHTTPScopeName, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		defer scope.End()

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		scope.SetAttributes(map[string]any{
			"app.name":        a.config.App.Name,
			"http.path":       r.URL.Path,
			"http.method":     r.Method,
			"http.user_agent": r.Header.Get(constant.RequestHeaderUserAgent),
			"http.host":       r.Host,
			"http.source":     clientIP(r, a.proxies),
		})

		next.ServeHTTP(ww, r.WithContext(ctx))

		scope.SetAttributes(map[string]any{
			"http.route":       routePattern(r),
			"http.status_code": ww.Status(),
		})
	})
}

// SecurityHeaders sets the usual hardening headers on every response.
func (a *appMiddleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; "+
			"script-src 'self' https://js.stripe.com; "+
			"frame-src https://js.stripe.com; "+
			"img-src 'self' data: https:; "+
			"frame-ancestors 'none'; base-uri 'self'; form-action 'self'")

		if isSecure(r) {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (a *appMiddleware) CORS() func(http.Handler) http.Handler {
	if !a.config.App.CORS.Enable {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   a.config.App.CORS.AllowedOrigins,
		AllowedMethods:   a.config.App.CORS.AllowedMethods,
		AllowedHeaders:   a.config.App.CORS.AllowedHeaders,
		AllowCredentials: a.config.App.CORS.AllowCredentials,
		MaxAge:           a.config.App.CORS.MaxAgeSeconds,
	})
}

// RequestLog attaches the global logger and a request id to the request and writes one
// access line per response.
func (a *appMiddleware) RequestLog() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(log.Logger),
		hlog.RequestIDHandler("request_id", constant.RequestHeaderRequestID),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
	}
}

func (a *appMiddleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// DevMode marks the request so the error responder may include error details and stacks.
func (a *appMiddleware) DevMode(next http.Handler) http.Handler {
	devMode := a.config.Server.Env == constant.ServerEnvDevelopment

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), constant.ContextKeyDevMode, devMode)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BodyLimit caps JSON bodies. Multipart uploads are bounded by their own validation.
func (a *appMiddleware) BodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && strings.HasPrefix(r.Header.Get(constant.RequestHeaderContentType), constant.ContentTypeJSON) {
			r.Body = http.MaxBytesReader(w, r.Body, a.config.App.BodyLimitByte)
		}

		next.ServeHTTP(w, r)
	})
}

func (a *appMiddleware) NotFound(w http.ResponseWriter, r *http.Request) {
	response.WithError(w, r, failure.NotFound(fmt.Sprintf("Can't find %s on this server!", r.URL.Path)))
}

func (a *appMiddleware) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.WithError(w, r, failure.NotFound(fmt.Sprintf("Can't find %s %s on this server!", r.Method, r.URL.Path)))
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}

	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}

	return unmatchedRoute
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get(constant.RequestHeaderForwardedProto) == "https"
}
