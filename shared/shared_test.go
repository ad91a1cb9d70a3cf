package shared_test

import (
	"testing"
	"time"

	"natours/shared"
	"natours/shared/constant"
	"natours/shared/dto"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{name: "no rows", total: 0, limit: 10, want: 1},
		{name: "exact pages", total: 20, limit: 10, want: 2},
		{name: "partial page", total: 21, limit: 10, want: 3},
		{name: "invalid limit", total: 5, limit: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

type patch struct {
	Name     *string  `db:"name"`
	Price    *float64 `db:"price"`
	Summary  string   `db:"summary"`
	Internal string
}

func TestTransformFields(t *testing.T) {
	name := "The Forest Hiker"

	t.Run("only set fields are kept", func(t *testing.T) {
		res := shared.TransformFields(patch{Name: &name, Internal: "x"}, "user-1")

		assert.Equal(t, name, res["name"])
		assert.NotContains(t, res, "price")
		assert.NotContains(t, res, "summary")
		assert.Equal(t, "user-1", res[constant.FieldModifiedBy])
		assert.IsType(t, time.Time{}, res[constant.FieldModifiedAt])
	})

	t.Run("pointer argument", func(t *testing.T) {
		res := shared.TransformFields(&patch{Summary: "short"}, "")

		assert.Equal(t, "short", res["summary"])
		assert.NotContains(t, res, constant.FieldModifiedBy)
	})

	t.Run("empty patch stays empty", func(t *testing.T) {
		assert.Empty(t, shared.TransformFields(patch{}, "user-1"))
	})
}

func TestFilterByID(t *testing.T) {
	group := shared.FilterByID("abc", "id", "tours")
	where, args := group.GetWhereClause()

	assert.Equal(t, "(tours.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "abc"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "tour", shared.BuildCacheKey("tour"))
	assert.Equal(t, "tour:abc", shared.BuildCacheKey("tour", "abc"))

	params := dto.QueryParams{Page: 1, Limit: 10}
	a := shared.BuildCacheKeyWithQuery("tour", params, dto.FilterGroup{})
	b := shared.BuildCacheKeyWithQuery("tour", dto.QueryParams{Page: 2, Limit: 10}, dto.FilterGroup{})

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "tour:list:")
}

type target struct {
	Name          string   `db:"name"`
	PriceDiscount *float64 `db:"price_discount"`
	Quantity      int64    `db:"quantity"`
	Untouched     string   `db:"untouched"`
	Embedded
}

type Embedded struct {
	ModifiedBy string `db:"modified_by"`
}

func TestApplyFields(t *testing.T) {
	tgt := target{Name: "old", Untouched: "keep"}

	shared.ApplyFields(&tgt, map[string]any{
		"name":           "new",
		"price_discount": 99.5,
		"quantity":       3,
		"modified_by":    "user-1",
		"unknown":        true,
	})

	assert.Equal(t, "new", tgt.Name)
	if assert.NotNil(t, tgt.PriceDiscount) {
		assert.InDelta(t, 99.5, *tgt.PriceDiscount, 0.0001)
	}
	assert.Equal(t, int64(3), tgt.Quantity)
	assert.Equal(t, "keep", tgt.Untouched)
	assert.Equal(t, "user-1", tgt.ModifiedBy)
}
