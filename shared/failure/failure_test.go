package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"natours/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	assert.Equal(t, "test error message", f.Error())
}

func TestPredefinedFailures(t *testing.T) {
	tests := []struct {
		name    string
		failure *failure.Failure
		code    int
	}{
		{name: "ForbiddenError", failure: failure.ForbiddenError, code: http.StatusForbidden},
		{name: "NotLoggedIn", failure: failure.NotLoggedIn, code: http.StatusUnauthorized},
		{name: "UserNoLongerExists", failure: failure.UserNoLongerExists, code: http.StatusUnauthorized},
		{name: "PasswordChanged", failure: failure.PasswordChanged, code: http.StatusUnauthorized},
		{name: "InvalidCredentials", failure: failure.InvalidCredentials, code: http.StatusUnauthorized},
		{name: "InvalidResetToken", failure: failure.InvalidResetToken, code: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.failure.Code)
			assert.NotEmpty(t, tt.failure.Message)
		})
	}

	assert.Equal(t, "invalid credentials", failure.InvalidCredentials.Message)
	assert.Equal(t, "token invalid or expired", failure.InvalidResetToken.Message)
}

func TestBadRequest(t *testing.T) {
	assert.Nil(t, failure.BadRequest(nil))

	err := failure.BadRequest(errors.New("validation failed"))
	assert.Equal(t, &failure.Failure{Code: http.StatusBadRequest, Message: "validation failed"}, err)
}

func TestInternalError(t *testing.T) {
	assert.Nil(t, failure.InternalError(nil))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(failure.InternalError(errors.New("boom"))))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "bad request from string", err: failure.BadRequestFromString("bad"), code: http.StatusBadRequest},
		{name: "malformed query", err: failure.MalformedQuery("price[foo]"), code: http.StatusBadRequest},
		{name: "payment verification", err: failure.PaymentVerification(errors.New("bad signature")), code: http.StatusBadRequest},
		{name: "unauthorized", err: failure.Unauthorized("nope"), code: http.StatusUnauthorized},
		{name: "forbidden", err: failure.Forbidden("nope"), code: http.StatusForbidden},
		{name: "not found", err: failure.NotFound("No tour found with that ID"), code: http.StatusNotFound},
		{name: "conflict", err: failure.Conflict("Duplicate field value"), code: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.True(t, failure.IsOperational(tt.err))
		})
	}

	assert.Contains(t, failure.MalformedQuery("price[foo]").Error(), "price[foo]")
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", failure.NotFound("missing"))
	assert.Equal(t, http.StatusNotFound, failure.GetCode(wrapped))
}

func TestIsOperational(t *testing.T) {
	assert.False(t, failure.IsOperational(errors.New("plain")))
	assert.True(t, failure.IsOperational(fmt.Errorf("wrapped: %w", failure.ForbiddenError)))
}
