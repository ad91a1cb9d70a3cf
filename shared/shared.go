package shared

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"

	"natours/shared/cache"
	"natours/shared/constant"
	"natours/shared/dto"
	"natours/shared/timezone"

	"github.com/rs/zerolog/log"
)

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the set fields of a patch struct into a column map.
// Nil pointers and zero values are treated as absent.
func TransformFields(data any, modifiedBy string) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(data))
	typ := val.Type()

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		if field.Kind() == reflect.Pointer {
			field = field.Elem()
		}

		updatedFields[fieldName] = field.Interface()
	}

	if len(updatedFields) == 0 {
		return updatedFields
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	if modifiedBy != "" {
		updatedFields[constant.FieldModifiedBy] = modifiedBy
	}

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins the parts with ":" under the entity prefix, e.g. "tour:<id>".
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// BuildCacheKeyWithQuery keys a list result by its query and filter.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	return BuildCacheKey(prefix, "list", params.String(), fmt.Sprintf("%s%v", where, args))
}

// InvalidateCaches clears every key under the given prefixes. Callers run it on a
// context detached from the request.
func InvalidateCaches(ctx context.Context, c cache.RedisCache, prefixes ...string) {
	for _, prefix := range prefixes {
		if err := c.Clear(ctx, prefix+"*"); err != nil {
			log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate cache")
		}
	}
}

// ApplyFields writes a column map produced by TransformFields back onto a model,
// matching struct fields by their db tag. Embedded structs are walked.
func ApplyFields(target any, fields map[string]any) {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Pointer || val.IsNil() {
		return
	}

	applyFields(val.Elem(), fields)
}

func applyFields(val reflect.Value, fields map[string]any) {
	typ := val.Type()

	for index := range val.NumField() {
		field := val.Field(index)
		structField := typ.Field(index)

		if structField.Anonymous && field.Kind() == reflect.Struct {
			applyFields(field, fields)

			continue
		}

		value, ok := fields[structField.Tag.Get("db")]
		if !ok || !field.CanSet() {
			continue
		}

		setValue(field, reflect.ValueOf(value))
	}
}

func setValue(field, value reflect.Value) {
	if !value.IsValid() {
		field.Set(reflect.Zero(field.Type()))

		return
	}

	switch {
	case value.Type().AssignableTo(field.Type()):
		field.Set(value)
	case field.Kind() == reflect.Pointer && value.Type().AssignableTo(field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(value)
		field.Set(ptr)
	case value.Type().ConvertibleTo(field.Type()):
		field.Set(value.Convert(field.Type()))
	default:
		log.Warn().Str("field", field.Type().String()).Str("value", value.Type().String()).Msg("cannot apply field value")
	}
}
