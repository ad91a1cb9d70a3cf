package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"natours/config"
	otelMocks "natours/infras/otel/mocks"
	"natours/shared/constant"
	"natours/transport/http/middleware"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(mutate func(cfg *config.Config)) middleware.AppMiddleware {
	cfg := &config.Config{}
	cfg.App.BodyLimitByte = 10240
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 100
	cfg.App.RateLimiter.WindowSeconds = 3600

	if mutate != nil {
		mutate(cfg)
	}

	return middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg)
}

// echo writes back the body and the query the handler received.
func echo() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		w.Header().Set("X-Query", r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	})
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	return req
}

func TestAppMiddleware_Sanitize(t *testing.T) {
	app := newApp(nil)

	t.Run("strips markup but not secrets", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"name":"<script>alert(1)</script>Jonas","password":"<b>pass</b>1234","tags":["<i>x</i>"],"price":497.5}`

		app.Sanitize(echo()).ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/users/signup", body))

		require.Equal(t, http.StatusOK, rec.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Jonas", got["name"])
		assert.Equal(t, "<b>pass</b>1234", got["password"])
		assert.Equal(t, []any{"x"}, got["tags"])
		assert.InDelta(t, 497.5, got["price"], 0)
	})

	t.Run("plain text keeps its punctuation", func(t *testing.T) {
		tests := []struct {
			in   string
			want string
		}{
			{in: "Tom's sea & sky", want: "Tom's sea & sky"},
			{in: `O'Neil "the guide"`, want: `O'Neil "the guide"`},
			{in: "Tom's tour: sea & sky <b>x</b>", want: "Tom's tour: sea & sky x"},
			{in: "&lt;script&gt; <i>quoted</i>", want: "&lt;script&gt; quoted"},
		}

		for _, tt := range tests {
			body, err := json.Marshal(map[string]string{"review": tt.in})
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			app.Sanitize(echo()).ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/reviews", string(body)))

			var got map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got["review"], tt.in)
		}
	})

	t.Run("webhook body is untouched", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"data":"<b>signed</b>"}`

		app.Sanitize(echo()).ServeHTTP(rec, jsonRequest(http.MethodPost, constant.PathWebhookCheckout, body))

		assert.Equal(t, body, rec.Body.String())
	})

	t.Run("malformed json is passed on", func(t *testing.T) {
		rec := httptest.NewRecorder()

		app.Sanitize(echo()).ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/tours", `{"name":`))

		assert.Equal(t, `{"name":`, rec.Body.String())
	})

	t.Run("parameter pollution keeps whitelisted keys", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tours?sort=price&sort=duration&duration=5&duration=9", nil)

		app.Sanitize(echo()).ServeHTTP(rec, req)

		assert.Equal(t, "duration=5&duration=9&sort=duration", rec.Header().Get("X-Query"))
	})
}

func TestAppMiddleware_BodyLimit(t *testing.T) {
	app := newApp(func(cfg *config.Config) { cfg.App.BodyLimitByte = 16 })

	handler := app.BodyLimit(app.Sanitize(echo()))

	t.Run("oversized json", func(t *testing.T) {
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/tours", `{"name":"The Forest Hiker"}`))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("small json", func(t *testing.T) {
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/tours", `{"a":1}`))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAppMiddleware_RateLimit(t *testing.T) {
	// httptest requests come from 192.0.2.1
	app := newApp(func(cfg *config.Config) {
		cfg.App.RateLimiter.MaxRequests = 2
		cfg.App.RateLimiter.TrustedProxies = []string{"192.0.2.0/24"}
	})
	handler := app.RateLimit()(echo())

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
		req.Header.Set(constant.RequestHeaderForwardedFor, forwardedFor)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7"))
	assert.Equal(t, http.StatusOK, send("203.0.113.7, 10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
}

func TestAppMiddleware_RateLimitIgnoresForwardingFromUntrustedPeers(t *testing.T) {
	app := newApp(func(cfg *config.Config) {
		cfg.App.RateLimiter.MaxRequests = 2
		cfg.App.RateLimiter.TrustedProxies = []string{"10.0.0.1"}
	})
	handler := app.RateLimit()(echo())

	codes := []int{}

	for _, forwardedFor := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
		req.Header.Set(constant.RequestHeaderForwardedFor, forwardedFor)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAppMiddleware_RateLimitDisabled(t *testing.T) {
	app := newApp(func(cfg *config.Config) {
		cfg.App.RateLimiter.Enable = false
		cfg.App.RateLimiter.MaxRequests = 1
	})
	handler := app.RateLimit()(echo())

	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAppMiddleware_SecurityHeaders(t *testing.T) {
	app := newApp(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	app.SecurityHeaders(echo()).ServeHTTP(rec, req)

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://js.stripe.com")
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestAppMiddleware_NotFound(t *testing.T) {
	app := newApp(nil)

	t.Run("api path gets json", func(t *testing.T) {
		rec := httptest.NewRecorder()

		app.NotFound(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "fail", got["status"])
		assert.Equal(t, "Can't find /api/v1/nowhere on this server!", got["message"])
	})

	t.Run("page path gets html", func(t *testing.T) {
		rec := httptest.NewRecorder()

		app.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Can&#39;t find /nowhere on this server!")
	})
}
