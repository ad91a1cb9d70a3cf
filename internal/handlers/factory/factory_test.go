package factory_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"natours/infras/otel/mocks"
	"natours/internal/handlers/factory"
	"natours/shared/constant"
	"natours/shared/crud"
	crudMocks "natours/shared/crud/mocks"
	gDto "natours/shared/dto"
	"natours/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const basePath = "/api/v1/items"

type item struct {
	ID    string
	Name  string
	Owner string
}

type itemResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type createItemRequest struct {
	Name  string `json:"name" validate:"required,min=3"`
	Owner string `json:"-"`
}

func (r createItemRequest) ToModel(_ context.Context) (item, error) {
	return item{ID: "new", Name: r.Name, Owner: r.Owner}, nil
}

type updateItemRequest struct {
	Name *string `db:"name" json:"name" validate:"omitempty,min=3"`
}

func newRouter(t *testing.T) (*crudMocks.MockService[item, itemResponse], chi.Router) {
	ctrl := gomock.NewController(t)
	svc := crudMocks.NewMockService[item, itemResponse](ctrl)

	resource := factory.New[item, itemResponse]("item", svc, mocks.NewOtel())
	fill := func(r *http.Request, req *createItemRequest) {
		req.Owner = r.Header.Get("X-Owner")
	}

	router := chi.NewRouter()
	router.Route(basePath, func(r chi.Router) {
		r.Get("/", resource.GetAll(func(*http.Request) gDto.FilterGroup {
			return gDto.FilterGroup{Filters: []any{gDto.Filter{Field: "owner", Value: "me"}}}
		}))
		r.Post("/", factory.Create[item, itemResponse, createItemRequest](resource, fill))
		r.Get("/{id}", resource.GetOne)
		r.Patch("/{id}", factory.Update[item, itemResponse, updateItemRequest](resource))
		r.Delete("/{id}", resource.Delete)
	})

	return svc, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("X-Owner", "owner-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestResource_GetOne(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "found", wantCode: http.StatusOK},
		{name: "missing", err: failure.NotFound("No item found with that ID"), wantCode: http.StatusNotFound},
		{name: "storage error", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)

			svc.EXPECT().Get(gomock.Any(), "abc").Return(itemResponse{ID: "abc", Name: "Kayak"}, tt.err)

			rec := serve(router, http.MethodGet, basePath+"/abc", "")

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.err == nil {
				body := decode(t, rec)
				assert.Equal(t, "success", body["status"])
				assert.Equal(t, "Kayak", body["data"].(map[string]any)["name"])
			}
		})
	}
}

func TestResource_GetAll(t *testing.T) {
	t.Run("scoped, projected and counted", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (crud.List[itemResponse], error) {
				assert.Equal(t, 2, params.Page)
				assert.Equal(t, 1, params.Limit)
				assert.Equal(t, []string{"name"}, params.Fields)
				require.Len(t, filter.Filters, 2)

				return crud.List[itemResponse]{
					Items: []itemResponse{{ID: "a", Name: "Kayak", Price: 10}},
					Total: 7,
				}, nil
			})

		rec := serve(router, http.MethodGet, basePath+"?page=2&limit=1&fields=name&price[gte]=5", "")

		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.InDelta(t, 1, body["results"], 0)
		assert.InDelta(t, 7, body["total"], 0)
		assert.Equal(t, []any{map[string]any{"id": "a", "name": "Kayak"}}, body["data"])
	})

	t.Run("malformed sort", func(t *testing.T) {
		_, router := newRouter(t)

		// "name drop": a space is never part of a column name
		rec := serve(router, http.MethodGet, basePath+"?sort=name%20drop", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		mock     func(svc *crudMocks.MockService[item, itemResponse])
		wantCode int
	}{
		{
			name: "created with the filled owner",
			body: `{"name":"Kayak"}`,
			mock: func(svc *crudMocks.MockService[item, itemResponse]) {
				svc.EXPECT().Create(gomock.Any(), item{ID: "new", Name: "Kayak", Owner: "owner-1"}).
					Return(itemResponse{ID: "new", Name: "Kayak"}, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "empty body",
			body:     "",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid payload",
			body:     `{"name":"K"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate",
			body: `{"name":"Kayak"}`,
			mock: func(svc *crudMocks.MockService[item, itemResponse]) {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(itemResponse{}, failure.Conflict("Duplicate field value"))
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)

			if tt.mock != nil {
				tt.mock(svc)
			}

			rec := serve(router, http.MethodPost, basePath, tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestUpdate(t *testing.T) {
	t.Run("writes only the sent fields", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Update(gomock.Any(), "abc", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, fields map[string]any) (itemResponse, error) {
				assert.Equal(t, "Canoe", fields["name"])
				assert.Contains(t, fields, constant.FieldModifiedAt)

				return itemResponse{ID: "abc", Name: "Canoe"}, nil
			})

		rec := serve(router, http.MethodPatch, basePath+"/abc", `{"name":"Canoe"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid patch", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodPatch, basePath+"/abc", `{"name":"C"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResource_Delete(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Delete(gomock.Any(), "abc").Return(nil)

		rec := serve(router, http.MethodDelete, basePath+"/abc", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("missing", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Delete(gomock.Any(), "abc").Return(failure.NotFound("No item found with that ID"))

		rec := serve(router, http.MethodDelete, basePath+"/abc", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProject(t *testing.T) {
	items := []itemResponse{{ID: "a", Name: "Kayak", Price: 10}}

	all, err := factory.Project(items, nil)
	require.NoError(t, err)
	assert.Equal(t, items, all)

	some, err := factory.Project(items, []string{"price", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"id": "a", "price": float64(10)}}, some)
}
