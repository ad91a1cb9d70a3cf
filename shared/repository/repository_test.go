package repository_test

import (
	"context"
	"net/http"
	"regexp"
	"testing"

	"natours/infras/otel/mocks"
	"natours/infras/postgres"
	"natours/shared/dto"
	"natours/shared/failure"
	"natours/shared/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trip struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Price     float64 `db:"price"`
	Secret    bool    `db:"secret"     select:"false"`
	GuideName string  `db:"guide_name" table:"users" column:"name"`
}

func (trip) GetJoinQuery() string {
	return "LEFT JOIN users ON users.id = trips.guide_id"
}

const selectTrips = "SELECT trips.id, trips.name, trips.price, users.name AS guide_name FROM trips LEFT JOIN users ON users.id = trips.guide_id"

func newRepo(t *testing.T) (repository.Repository[trip], sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn := sqlx.NewDb(db, "postgres")

	repo := repository.NewRepository[trip]("trip", "trips", "id", &postgres.Connection{Read: conn, Write: conn}, mocks.NewOtel(),
		repository.WithScope(dto.Filter{Field: "secret", Value: false, Operator: dto.FilterOperatorEq}),
	)

	return repo, mock
}

func invalidText() error {
	return &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "not-a-uuid"`}
}

func TestRepository_BuildWhereClause(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	t.Run("scope is always applied", func(t *testing.T) {
		where, args := repo.BuildWhereClause(ctx, dto.FilterGroup{})

		assert.Equal(t, " WHERE ((trips.secret = :scope_secret)) ", where)
		assert.Equal(t, map[string]any{"scope_secret": false}, args)
	})

	t.Run("scope and filter are joined with AND", func(t *testing.T) {
		filter, err := repo.Qualify(dto.Where(dto.Filter{Field: "price", Value: 400.0, Operator: dto.FilterOperatorGreaterEq}))
		require.NoError(t, err)

		where, args := repo.BuildWhereClause(ctx, filter)

		assert.Equal(t, " WHERE ((trips.secret = :scope_secret) AND (trips.price >= :price)) ", where)
		assert.Equal(t, map[string]any{"scope_secret": false, "price": 400.0}, args)
	})

	t.Run("unscoped reads everything", func(t *testing.T) {
		unscoped := repo.Unscoped()

		where, args := unscoped.BuildWhereClause(ctx, dto.FilterGroup{})

		assert.Empty(t, where)
		assert.Empty(t, args)
	})
}

func TestRepository_Qualify(t *testing.T) {
	repo, _ := newRepo(t)

	tests := []struct {
		name     string
		field    string
		want     dto.Filter
		wantCode int
	}{
		{
			name:  "own column",
			field: "price",
			want:  dto.Filter{ArgName: "price", Field: "price", Table: "trips", Value: 1, Operator: dto.FilterOperatorEq},
		},
		{
			name:  "joined column by its alias",
			field: "guide_name",
			want:  dto.Filter{ArgName: "guide_name", Field: "name", Table: "users", Value: 1, Operator: dto.FilterOperatorEq},
		},
		{name: "hidden column", field: "secret", wantCode: http.StatusBadRequest},
		{name: "unknown column", field: "nope", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Qualify(dto.Where(dto.Filter{Field: tt.field, Value: 1, Operator: dto.FilterOperatorEq}))

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			require.Len(t, got.Filters, 1)
			assert.Equal(t, tt.want, got.Filters[0])
		})
	}
}

func TestRepository_GetAll(t *testing.T) {
	priceFrom := dto.Where(dto.Filter{Field: "price", Value: 400.0, Operator: dto.FilterOperatorGreaterEq})

	t.Run("scoped, ordered with a tie-breaker and paginated", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectPrepare(regexp.QuoteMeta(selectTrips+" WHERE ((trips.secret = $1) AND (trips.price >= $2)) ORDER BY trips.price DESC, trips.id ASC LIMIT $3 OFFSET $4")).
			ExpectQuery().
			WithArgs(false, 400.0, int64(10), int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "guide_name"}).AddRow("t-1", "The Forest Hiker", 497.0, "Lourdes"))

		got, err := repo.GetAll(context.Background(), dto.QueryParams{
			Page:  2,
			Limit: 10,
			Sort:  []dto.SortField{{Field: "price", Dir: dto.SortDirDesc}},
		}, priceFrom)
		require.NoError(t, err)

		assert.Equal(t, []trip{{ID: "t-1", Name: "The Forest Hiker", Price: 497, GuideName: "Lourdes"}}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("projection keeps the id and sorting by id adds no tie-breaker", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectPrepare(regexp.QuoteMeta("SELECT trips.id, trips.name FROM trips LEFT JOIN users ON users.id = trips.guide_id WHERE ((trips.secret = $1)) ORDER BY trips.id DESC")).
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		_, err := repo.GetAll(context.Background(), dto.QueryParams{
			Fields: []string{"name"},
			Sort:   []dto.SortField{{Field: "id", Dir: dto.SortDirDesc}},
		}, dto.FilterGroup{})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	rejected := []struct {
		name   string
		params dto.QueryParams
		filter dto.FilterGroup
	}{
		{name: "sort by hidden column", params: dto.QueryParams{Sort: []dto.SortField{{Field: "secret"}}}},
		{name: "project hidden column", params: dto.QueryParams{Fields: []string{"secret"}}},
		{name: "filter on hidden column", filter: dto.Where(dto.Filter{Field: "secret", Value: true, Operator: dto.FilterOperatorEq})},
		{name: "unknown sort field", params: dto.QueryParams{Sort: []dto.SortField{{Field: "rating"}}}},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)

			_, err := repo.GetAll(context.Background(), tt.params, tt.filter)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepo(t)

		mock.ExpectPrepare(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM trips WHERE ((trips.secret = $1) AND (trips.id = $2)) )")).
			ExpectQuery().
			WithArgs(false, "t-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectPrepare(regexp.QuoteMeta(selectTrips + " WHERE ((trips.secret = $1) AND (trips.id = $2)) LIMIT 1")).
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "guide_name"}).AddRow("t-1", "The Sea Explorer", 497.0, "Miyah"))

		got, err := repo.FindByID(context.Background(), "t-1")
		require.NoError(t, err)
		assert.Equal(t, "The Sea Explorer", got.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	tests := []struct {
		name     string
		result   func(q *sqlmock.ExpectedQuery)
		wantCode int
	}{
		{
			name:     "hidden by scope or missing",
			result:   func(q *sqlmock.ExpectedQuery) { q.WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false)) },
			wantCode: http.StatusNotFound,
		},
		{
			name:     "malformed id",
			result:   func(q *sqlmock.ExpectedQuery) { q.WillReturnError(invalidText()) },
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)

			tt.result(mock.ExpectPrepare(regexp.QuoteMeta("SELECT EXISTS")).ExpectQuery())

			_, err := repo.FindByID(context.Background(), "not-a-uuid")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestRepository_DeleteByID(t *testing.T) {
	tests := []struct {
		name     string
		result   func(e *sqlmock.ExpectedExec)
		wantCode int
	}{
		{
			name:   "deleted",
			result: func(e *sqlmock.ExpectedExec) { e.WillReturnResult(sqlmock.NewResult(0, 1)) },
		},
		{
			name:     "nothing matched",
			result:   func(e *sqlmock.ExpectedExec) { e.WillReturnResult(sqlmock.NewResult(0, 0)) },
			wantCode: http.StatusNotFound,
		},
		{
			name:     "malformed id",
			result:   func(e *sqlmock.ExpectedExec) { e.WillReturnError(invalidText()) },
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)

			tt.result(mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trips WHERE ((trips.secret = $1) AND (trips.id = $2))")))

			err := repo.DeleteByID(context.Background(), "t-1")

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_InsertDuplicate(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trips (id, name, price, secret)")).
		WillReturnError(&pq.Error{Code: "23505", Detail: "Key (name)=(The Forest Hiker) already exists."})

	err := repo.Insert(context.Background(), trip{ID: "t-1", Name: "The Forest Hiker"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Contains(t, err.Error(), "(name)=(The Forest Hiker)")
}
