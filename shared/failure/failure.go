package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
// Every Failure is operational: its message is safe to show to the caller.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You do not have permission to perform this action"}
var NotLoggedIn = &Failure{Code: http.StatusUnauthorized, Message: "You are not logged in! Please log in to get access."}
var UserNoLongerExists = &Failure{Code: http.StatusUnauthorized, Message: "The user belonging to this token no longer exists."}
var PasswordChanged = &Failure{Code: http.StatusUnauthorized, Message: "User recently changed password! Please log in again."}
var InvalidCredentials = &Failure{Code: http.StatusUnauthorized, Message: "invalid credentials"}
var InvalidResetToken = &Failure{Code: http.StatusUnauthorized, Message: "token invalid or expired"}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// MalformedQuery reports a query string that cannot be translated into a filter.
func MalformedQuery(key string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("malformed query parameter: %s", key),
	}
}

// PaymentVerification reports a webhook whose signature could not be verified.
func PaymentVerification(err error) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("Webhook error: %s", err.Error()),
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// IsOperational reports whether err carries a message meant for the client.
func IsOperational(err error) bool {
	var fail *Failure

	return errors.As(err, &fail)
}
