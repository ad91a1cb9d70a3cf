package validator

import (
	"errors"
	"fmt"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required":    "{field} is required",
		"gte":         "{field} must be greater than or equal to {param}",
		"lte":         "{field} must be less than or equal to {param}",
		"gt":          "{field} must be greater than {param}",
		"oneof":       "{field} must be one of {param}",
		"max":         "{field} must be less than or equal to {param}",
		"min":         "{field} must be greater than or equal to {param}",
		"email":       "{field} must be a valid email address",
		"eqfield":     "{field} must be the same as {param}",
		"ltfield":     "{field} ({value}) should be below {param}",
		"uuid":        "{field} must be a valid id",
		"url":         "{field} must be a valid url",
		"latitude":    "{field} must be a valid latitude",
		"longitude":   "{field} must be a valid longitude",
		"mimetypes":   "{field} must be one of {param}",
		"maxfilesize": "{field} must not be larger than {param}MB",
	}
)

func message(err error) string {
	var valErrors val.ValidationErrors

	if errors.As(err, &valErrors) {
		for _, valErr := range valErrors {
			errStr := messages[valErr.Tag()]
			if errStr == "" {
				continue
			}

			errStr = strings.ReplaceAll(errStr, "{field}", valErr.Field())
			errStr = strings.ReplaceAll(errStr, "{param}", paramName(valErr))
			errStr = strings.ReplaceAll(errStr, "{value}", fmt.Sprint(valErr.Value()))

			return errStr
		}

		return valErrors.Error()
	}

	return err.Error()
}

// paramName reports the sibling field by its JSON name for cross-field tags.
func paramName(valErr val.FieldError) string {
	param := valErr.Param()

	switch valErr.Tag() {
	case "eqfield", "ltfield", "gtfield":
		if name, ok := jsonNames[param]; ok {
			return name
		}
	}

	return param
}
