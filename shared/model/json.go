package model

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var errUnsupportedJSONSource = errors.New("unsupported JSON column source")

// JSON stores any value in a jsonb column.
type JSON[T any] struct {
	Val T
}

func NewJSON[T any](val T) JSON[T] {
	return JSON[T]{Val: val}
}

// Value implements driver.Valuer.
func (j JSON[T]) Value() (driver.Value, error) {
	raw, err := json.Marshal(j.Val)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}

	return raw, nil
}

// Scan implements sql.Scanner.
func (j *JSON[T]) Scan(src any) error {
	var raw []byte

	switch v := src.(type) {
	case nil:
		var zero T
		j.Val = zero

		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: %T", errUnsupportedJSONSource, src)
	}

	if err := json.Unmarshal(raw, &j.Val); err != nil {
		return fmt.Errorf("failed to unmarshal json column: %w", err)
	}

	return nil
}

func (j JSON[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Val)
}

func (j *JSON[T]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &j.Val)
}
