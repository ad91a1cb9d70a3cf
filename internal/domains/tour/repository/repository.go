package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"natours/infras/otel"
	"natours/infras/postgres"
	"natours/internal/domains/tour/model"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	"natours/shared/logger"
	gRepo "natours/shared/repository"
)

const (
	statsMinRating = 4.5
	maxPlanMonths  = 12

	visibleClause = "secret_tour IS DISTINCT FROM true"

	hasLocationClause = "start_location->'coordinates' IS NOT NULL"
)

// angle is the great-circle angle in radians between start_location and the point (lat, lng).
// lat and lng are SQL operands: named parameters or numeric literals.
func angle(lat, lng string) string {
	return fmt.Sprintf(`2 * ASIN(SQRT(
		POWER(SIN(RADIANS(CAST(start_location->'coordinates'->>1 AS float8) - %[1]s) / 2), 2) +
		COS(RADIANS(%[1]s)) * COS(RADIANS(CAST(start_location->'coordinates'->>1 AS float8))) *
		POWER(SIN(RADIANS(CAST(start_location->'coordinates'->>0 AS float8) - %[2]s) / 2), 2)))`, lat, lng)
}

type Tour interface {
	Insert(ctx context.Context, model model.Tour) error
	InsertBulk(ctx context.Context, models []model.Tour) error
	FindByID(ctx context.Context, id string) (model.Tour, error)
	// FindAnyByID also sees secret tours.
	FindAnyByID(ctx context.Context, id string) (model.Tour, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Tour, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateByID(ctx context.Context, id string, fields map[string]any) error
	DeleteByID(ctx context.Context, id string) error
	Purge(ctx context.Context) error
	Stats(ctx context.Context) ([]model.Stat, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error)
	Within(ctx context.Context, lat, lng, radius, earthRadius float64) ([]model.Tour, error)
	Distances(ctx context.Context, lat, lng, earthRadius float64) ([]model.Distance, error)
	RecalculateRatings(ctx context.Context, tourID string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Tour]
	unscoped gRepo.Repository[model.Tour]
	db       *postgres.Connection
	otel     otel.Otel
}

// New returns a repository whose reads skip secret tours.
func New(db *postgres.Connection, otel otel.Otel) Tour {
	repo := gRepo.NewRepository[model.Tour](model.EntityName, model.TableName, model.FieldID, db, otel,
		gRepo.WithScope(gDto.Filter{
			Field:    model.FieldSecretTour,
			Value:    true,
			Operator: gDto.FilterIsDistinctFrom,
		}),
	)

	return &repositoryImpl{
		Repository: repo,
		unscoped:   repo.Unscoped(),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) FindAnyByID(ctx context.Context, id string) (model.Tour, error) {
	return r.unscoped.FindByID(ctx, id) //nolint:wrapcheck
}

// UpdateByID and DeleteByID reach secret tours too; only reads are scoped.
func (r *repositoryImpl) UpdateByID(ctx context.Context, id string, fields map[string]any) error {
	return r.unscoped.UpdateByID(ctx, id, fields) //nolint:wrapcheck
}

func (r *repositoryImpl) DeleteByID(ctx context.Context, id string) error {
	return r.unscoped.DeleteByID(ctx, id) //nolint:wrapcheck
}

func (r *repositoryImpl) Purge(ctx context.Context) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tour.Purge")
	defer scope.End()

	if _, err := r.db.Write.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", model.TableName)); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to purge tours: %w", err)
	}

	return nil
}

func (r *repositoryImpl) Stats(ctx context.Context) ([]model.Stat, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tour.Stats")
	defer scope.End()

	query := fmt.Sprintf(`SELECT UPPER(difficulty) AS difficulty,
		COUNT(*) AS num_tours,
		COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
		AVG(ratings_average) AS avg_rating,
		AVG(price) AS avg_price,
		MIN(price) AS min_price,
		MAX(price) AS max_price
		FROM %s
		WHERE ratings_average >= :min_rating AND %s
		GROUP BY UPPER(difficulty)
		ORDER BY avg_price DESC`, model.TableName, visibleClause)

	stats := []model.Stat{}

	err := r.selectNamed(ctx, query, map[string]any{"min_rating": statsMinRating}, &stats)
	if err != nil {
		scope.TraceError(err)

		return stats, fmt.Errorf("failed to get tour stats: %w", err)
	}

	return stats, nil
}

// MonthlyPlan unnests start_dates, so a tour starting twice in a month counts twice.
func (r *repositoryImpl) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tour.MonthlyPlan")
	defer scope.End()

	query := fmt.Sprintf(`SELECT CAST(EXTRACT(MONTH FROM starts.start_date) AS int) AS month,
		COUNT(*) AS num_tour_starts,
		ARRAY_AGG(t.name ORDER BY t.name) AS tours
		FROM %s t
		CROSS JOIN LATERAL (
			SELECT CAST(value AS timestamptz) AS start_date
			FROM jsonb_array_elements_text(COALESCE(t.start_dates, '[]')) AS value
		) starts
		WHERE starts.start_date >= :from AND starts.start_date < :until AND t.%s
		GROUP BY month
		ORDER BY num_tour_starts DESC, month ASC
		LIMIT :limit`, model.TableName, visibleClause)

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	args := map[string]any{
		"from":  from,
		"until": from.AddDate(1, 0, 0),
		"limit": maxPlanMonths,
	}

	plans := []model.MonthlyPlan{}

	if err := r.selectNamed(ctx, query, args, &plans); err != nil {
		scope.TraceError(err)

		return plans, fmt.Errorf("failed to get monthly plan: %w", err)
	}

	return plans, nil
}

// Within returns visible tours starting no further than radius from the point.
// radius and earthRadius share a unit.
func (r *repositoryImpl) Within(ctx context.Context, lat, lng, radius, earthRadius float64) ([]model.Tour, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tour.Within")
	defer scope.End()

	literal := func(val float64) string {
		return strconv.FormatFloat(val, 'f', -1, 64)
	}

	filter := gDto.Where(
		gDto.Filter{Operator: gDto.FilterPlainQuery, Value: hasLocationClause},
		gDto.Filter{
			Operator: gDto.FilterPlainQuery,
			Value:    fmt.Sprintf("%s <= %s", angle(literal(lat), literal(lng)), literal(radius/earthRadius)),
		},
	)

	tours, err := r.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		scope.TraceError(err)

		return tours, fmt.Errorf("failed to get tours within radius: %w", err)
	}

	return tours, nil
}

// Distances lists every visible tour with a start location, nearest first.
func (r *repositoryImpl) Distances(ctx context.Context, lat, lng, earthRadius float64) ([]model.Distance, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tour.Distances")
	defer scope.End()

	query := fmt.Sprintf(`SELECT id, name, :earth_radius * %s AS distance
		FROM %s
		WHERE %s AND %s
		ORDER BY distance ASC, id ASC`, angle(":lat", ":lng"), model.TableName, hasLocationClause, visibleClause)

	args := map[string]any{
		"lat":          lat,
		"lng":          lng,
		"earth_radius": earthRadius,
	}

	distances := []model.Distance{}

	if err := r.selectNamed(ctx, query, args, &distances); err != nil {
		scope.TraceError(err)

		return distances, fmt.Errorf("failed to get tour distances: %w", err)
	}

	return distances, nil
}

// RecalculateRatings recomputes the review aggregate of one tour; no reviews resets it to the defaults.
func (r *repositoryImpl) RecalculateRatings(ctx context.Context, tourID string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tour.RecalculateRatings")
	defer scope.End()

	query := fmt.Sprintf(`UPDATE %s SET
		ratings_quantity = agg.quantity,
		ratings_average = COALESCE(ROUND(CAST(agg.average AS numeric), 1), :default_average)
		FROM (SELECT COUNT(*) AS quantity, AVG(rating) AS average FROM reviews WHERE tour_id = :tour_id) agg
		WHERE %s.id = :tour_id`, model.TableName, model.TableName)

	args := map[string]any{
		"tour_id":         tourID,
		"default_average": model.DefaultRatingsAverage,
	}

	if _, err := r.db.Write.NamedExecContext(ctx, query, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to recalculate ratings: %w", err)
	}

	return nil
}

func (r *repositoryImpl) selectNamed(ctx context.Context, query string, args map[string]any, dest any) error {
	prepare, err := r.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer prepare.Close()

	if err = prepare.SelectContext(ctx, dest, args); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}
