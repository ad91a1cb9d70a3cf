package dto_test

import (
	"testing"
	"time"

	"natours/shared/constant"
	"natours/shared/dto"
	"natours/shared/model"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{CreatedAt: createdAt, ModifiedAt: modifiedAt})

	assert.Equal(t, createdAt.Format(constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, modifiedAt.Format(constant.DateFormat), metadata.ModifiedAt)
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "eq with table",
			filter:    dto.Filter{Field: "price", Value: 500, Operator: dto.FilterOperatorEq, Table: "tours"},
			wantWhere: "tours.price = :price",
			wantArgs:  map[string]any{"price": 500},
		},
		{
			name:      "greater with arg name",
			filter:    dto.Filter{ArgName: "price_gt", Field: "price", Value: "500", Operator: dto.FilterOperatorGreater},
			wantWhere: "price > :price_gt",
			wantArgs:  map[string]any{"price_gt": "500"},
		},
		{
			name:      "greater or equal",
			filter:    dto.Filter{Field: "duration", Value: 5, Operator: dto.FilterOperatorGreaterEq},
			wantWhere: "duration >= :duration",
			wantArgs:  map[string]any{"duration": 5},
		},
		{
			name:      "less",
			filter:    dto.Filter{Field: "duration", Value: 5, Operator: dto.FilterOperatorLess},
			wantWhere: "duration < :duration",
			wantArgs:  map[string]any{"duration": 5},
		},
		{
			name:      "less or equal",
			filter:    dto.Filter{Field: "duration", Value: 5, Operator: dto.FilterOperatorLessEq},
			wantWhere: "duration <= :duration",
			wantArgs:  map[string]any{"duration": 5},
		},
		{
			name:      "in slice",
			filter:    dto.Filter{Field: "difficulty", Value: []string{"easy", "medium"}, Operator: dto.FilterOperatorIn},
			wantWhere: "difficulty IN (:difficulty_0, :difficulty_1) ",
			wantArgs:  map[string]any{"difficulty_0": "easy", "difficulty_1": "medium"},
		},
		{
			name:      "is distinct from",
			filter:    dto.Filter{Field: "secret_tour", Value: true, Operator: dto.FilterIsDistinctFrom},
			wantWhere: "secret_tour IS DISTINCT FROM :secret_tour",
			wantArgs:  map[string]any{"secret_tour": true},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "x", Operator: "regex"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.And(
		dto.Where(dto.Filter{Field: "active", Value: true, Operator: dto.FilterOperatorEq}),
		dto.FilterGroup{},
		dto.Where(dto.Filter{Field: "role", Value: "admin", Operator: dto.FilterOperatorEq}),
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "((active = :active) AND (role = :role))", where)
	assert.Equal(t, map[string]any{"active": true, "role": "admin"}, args)

	empty := dto.And(dto.FilterGroup{})
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)
}

func TestQueryParams(t *testing.T) {
	params := dto.QueryParams{
		Page:  3,
		Limit: 10,
		Sort: []dto.SortField{
			{Field: "price", Dir: dto.SortDirDesc},
			{Field: "name", Dir: dto.SortDirAsc},
		},
		Fields: []string{"name", "price"},
	}

	assert.Equal(t, 20, params.Offset())
	assert.Equal(t, "-price,name", params.SortKey())
	assert.Equal(t, "page=3&limit=10&sort=-price,name&fields=name,price", params.String())
	assert.Equal(t, 0, dto.QueryParams{Page: 1, Limit: 10}.Offset())
}
