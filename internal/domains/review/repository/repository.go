package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"natours/infras/otel"
	"natours/infras/postgres"
	"natours/internal/domains/review/model"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	gRepo "natours/shared/repository"
)

type Review interface {
	Insert(ctx context.Context, model model.Review) error
	InsertBulk(ctx context.Context, models []model.Review) error
	FindByID(ctx context.Context, id string) (model.Review, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Review, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateByID(ctx context.Context, id string, fields map[string]any) error
	DeleteByID(ctx context.Context, id string) error
	Purge(ctx context.Context) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Review]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Review {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Review](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Purge(ctx context.Context) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".review.Purge")
	defer scope.End()

	if _, err := r.db.Write.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", model.TableName)); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to purge reviews: %w", err)
	}

	return nil
}
