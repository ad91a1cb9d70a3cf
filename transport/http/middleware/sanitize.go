package middleware

import (
	"bytes"
	"errors"
	"html"
	"io"
	"net/http"
	"slices"
	"strings"

	"natours/shared/constant"
	"natours/shared/failure"
	"natours/transport/http/response"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
)

var (
	policy = bluemonday.StrictPolicy()

	// Query keys that may legitimately repeat, e.g. ?duration=5&duration=9.
	pollutionWhitelist = []string{
		"duration",
		"ratings_average",
		"ratings_quantity",
		"max_group_size",
		"difficulty",
		"price",
	}

	// Secrets are compared byte for byte and must reach the handler untouched.
	unsanitized = []string{"password", "password_confirm", "password_current"}
)

// Sanitize strips markup from every JSON string value and collapses repeated query
// parameters to their last value unless whitelisted. Signed webhook bodies pass untouched.
func (a *appMiddleware) Sanitize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.RawQuery = dedupeQuery(r)

		if r.URL.Path == constant.PathWebhookCheckout || r.Body == nil ||
			!strings.HasPrefix(r.Header.Get(constant.RequestHeaderContentType), constant.ContentTypeJSON) {
			next.ServeHTTP(w, r)

			return
		}

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.WithError(w, r, &failure.Failure{Code: http.StatusRequestEntityTooLarge, Message: "request body too large"})

				return
			}

			response.WithError(w, r, failure.BadRequestFromString("failed to read request body"))

			return
		}

		clean, err := sanitizeJSON(raw)
		if err != nil {
			// Leave malformed bodies for the decoder to reject with a proper message.
			clean = raw
		}

		r.Body = io.NopCloser(bytes.NewReader(clean))
		r.ContentLength = int64(len(clean))

		next.ServeHTTP(w, r)
	})
}

func dedupeQuery(r *http.Request) string {
	values := r.URL.Query()

	for key, vals := range values {
		field, _, _ := strings.Cut(key, "[")
		if len(vals) > 1 && !slices.Contains(pollutionWhitelist, field) {
			values[key] = vals[len(vals)-1:]
		}
	}

	return values.Encode()
}

func sanitizeJSON(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return raw, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var body any
	if err := decoder.Decode(&body); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return json.Marshal(sanitizeValue("", body)) //nolint:wrapcheck
}

func sanitizeValue(key string, value any) any {
	switch val := value.(type) {
	case string:
		if slices.Contains(unsanitized, key) {
			return val
		}

		return stripMarkup(val)
	case map[string]any:
		for k, v := range val {
			val[k] = sanitizeValue(k, v)
		}

		return val
	case []any:
		for i, v := range val {
			val[i] = sanitizeValue(key, v)
		}

		return val
	default:
		return val
	}
}

// stripMarkup removes tags and leaves plain text as typed. The policy escapes what it
// keeps, so its output is unescaped unless that would bring markup back.
func stripMarkup(val string) string {
	if !strings.ContainsAny(val, "<>") {
		return val
	}

	stripped := policy.Sanitize(val)

	plain := html.UnescapeString(stripped)
	if strings.ContainsAny(plain, "<>") {
		return stripped
	}

	return plain
}
