// Package query translates URL query parameters into a storage filter, sort order,
// field projection and page window.
//
// Stages always compose as filter, sort, projection, pagination:
//
//	params, filter, err := query.New(r.URL.Query()).Filter().Sort().LimitFields().Paginate().Build()
package query

import (
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"natours/shared/constant"
	"natours/shared/dto"
	"natours/shared/failure"
)

const argPrefix = "q_"

var (
	reserved = []string{
		constant.RequestParamPage,
		constant.RequestParamSort,
		constant.RequestParamLimit,
		constant.RequestParamFields,
	}

	keyPattern   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\[([A-Za-z]+)\])?$`)
	fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	operators = map[string]string{
		"gte": dto.FilterOperatorGreaterEq,
		"gt":  dto.FilterOperatorGreater,
		"lte": dto.FilterOperatorLessEq,
		"lt":  dto.FilterOperatorLess,
	}
)

type Features struct {
	values url.Values
	params dto.QueryParams
	filter dto.FilterGroup
	err    error
}

func New(values url.Values) *Features {
	return &Features{
		values: values,
		filter: dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd},
	}
}

// Apply runs every stage in order.
func Apply(values url.Values) (dto.QueryParams, dto.FilterGroup, error) {
	return New(values).Filter().Sort().LimitFields().Paginate().Build()
}

// Filter turns every non-reserved key into an equality or comparison constraint.
// "price[gte]=500" becomes price >= 500; repeated plain keys become an IN list.
func (f *Features) Filter() *Features {
	if f.err != nil {
		return f
	}

	keys := make([]string, 0, len(f.values))
	for key := range f.values {
		if slices.Contains(reserved, key) {
			continue
		}

		keys = append(keys, key)
	}

	// map iteration order must not leak into the generated SQL
	sort.Strings(keys)

	for _, key := range keys {
		filter, err := parseFilter(key, f.values[key])
		if err != nil {
			f.err = err

			return f
		}

		f.filter.Filters = append(f.filter.Filters, filter)
	}

	return f
}

func (f *Features) Sort() *Features {
	if f.err != nil {
		return f
	}

	raw := f.values.Get(constant.RequestParamSort)
	if raw == "" {
		f.params.Sort = []dto.SortField{{Field: constant.DefaultValueSortBy, Dir: dto.SortDirDesc}}

		return f
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		dir := dto.SortDirAsc
		if strings.HasPrefix(part, "-") {
			dir = dto.SortDirDesc
			part = part[1:]
		}

		if !fieldPattern.MatchString(part) {
			f.err = failure.MalformedQuery(constant.RequestParamSort)

			return f
		}

		f.params.Sort = append(f.params.Sort, dto.SortField{Field: part, Dir: dir})
	}

	return f
}

// LimitFields reads the projection allow-list. An empty list means every visible field.
func (f *Features) LimitFields() *Features {
	if f.err != nil {
		return f
	}

	raw := f.values.Get(constant.RequestParamFields)
	if raw == "" {
		return f
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !fieldPattern.MatchString(part) {
			f.err = failure.MalformedQuery(constant.RequestParamFields)

			return f
		}

		if !slices.Contains(f.params.Fields, part) {
			f.params.Fields = append(f.params.Fields, part)
		}
	}

	return f
}

func (f *Features) Paginate() *Features {
	if f.err != nil {
		return f
	}

	f.params.Page = positiveOr(f.values.Get(constant.RequestParamPage), constant.DefaultValuePage)
	f.params.Limit = positiveOr(f.values.Get(constant.RequestParamLimit), constant.DefaultValueLimit)

	return f
}

func (f *Features) Build() (dto.QueryParams, dto.FilterGroup, error) {
	if f.err != nil {
		return dto.QueryParams{}, dto.FilterGroup{}, f.err
	}

	return f.params, f.filter, nil
}

func parseFilter(key string, values []string) (dto.Filter, error) {
	match := keyPattern.FindStringSubmatch(key)
	if match == nil {
		return dto.Filter{}, failure.MalformedQuery(key) // nolint:wrapcheck
	}

	field, op := match[1], match[2]

	if op == "" {
		if len(values) > 1 {
			return dto.Filter{
				ArgName:  argPrefix + field,
				Field:    field,
				Value:    values,
				Operator: dto.FilterOperatorIn,
			}, nil
		}

		return dto.Filter{
			ArgName:  argPrefix + field,
			Field:    field,
			Value:    firstOrEmpty(values),
			Operator: dto.FilterOperatorEq,
		}, nil
	}

	operator, ok := operators[op]
	if !ok || len(values) != 1 {
		return dto.Filter{}, failure.MalformedQuery(key) // nolint:wrapcheck
	}

	return dto.Filter{
		ArgName:  argPrefix + field + "_" + op,
		Field:    field,
		Value:    values[0],
		Operator: operator,
	}, nil
}

func positiveOr(raw string, fallback int) int {
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return fallback
	}

	return val
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
