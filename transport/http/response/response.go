package response

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"natours/shared/constant"
	"natours/shared/failure"
	"natours/shared/logger"

	"github.com/goccy/go-json"
	pkgErrors "github.com/pkg/errors"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Natours | {{.Title}}</title></head>
<body>
<main>
<h2>{{.Title}}</h2>
<p>{{.Message}}</p>
</main>
</body>
</html>
`))

func status(code int) string {
	switch {
	case code >= http.StatusInternalServerError:
		return constant.ResponseStatusError
	case code >= http.StatusBadRequest:
		return constant.ResponseStatusFail
	default:
		return constant.ResponseStatusSuccess
	}
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Envelope{Status: status(code), Message: message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	response(writer, code, Envelope{Status: status(code), Data: jsonPayload})
}

// WithList sends a page of results with the page size and the total match count.
func WithList(writer http.ResponseWriter, results, total int, jsonPayload any) {
	response(writer, http.StatusOK, Envelope{
		Status:  constant.ResponseStatusSuccess,
		Results: &results,
		Total:   &total,
		Data:    jsonPayload,
	})
}

// WithToken sends a session token next to the payload.
func WithToken(writer http.ResponseWriter, code int, token string, jsonPayload any) {
	response(writer, code, Envelope{Status: status(code), Token: token, Data: jsonPayload})
}

// WithRaw writes payload without the envelope.
func WithRaw(writer http.ResponseWriter, code int, payload any) {
	response(writer, code, payload)
}

func WithNoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// WithError answers API paths with a JSON envelope and every other path with an HTML page.
// Failures are operational and keep their message; anything else is logged and, outside
// development mode, reduced to a generic message.
func WithError(writer http.ResponseWriter, request *http.Request, err error) {
	var fail *failure.Failure

	operational := errors.As(err, &fail)
	devMode, _ := request.Context().Value(constant.ContextKeyDevMode).(bool)

	code := http.StatusInternalServerError
	message := constant.ResponseErrorGeneric

	if operational {
		code = fail.Code
		message = fail.Message
	} else {
		logger.ErrorWithStack(err)

		if devMode {
			message = err.Error()
		}
	}

	if !strings.HasPrefix(request.URL.Path, constant.APIPrefix) {
		withErrorPage(writer, code, message)

		return
	}

	body := Envelope{Status: status(code), Message: message}

	if devMode {
		body.Error = err.Error()
		body.Stack = fmt.Sprintf("%+v", pkgErrors.WithStack(err))
	}

	response(writer, code, body)
}

func withErrorPage(writer http.ResponseWriter, code int, message string) {
	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeHTML)
	writer.WriteHeader(code)

	err := errorPage.Execute(writer, map[string]string{
		"Title":   "Something went wrong!",
		"Message": message,
	})
	if err != nil {
		logger.ErrorWithStack(err)
	}
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
