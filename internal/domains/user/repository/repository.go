package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"natours/infras/otel"
	"natours/infras/postgres"
	"natours/internal/domains/user/model"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	gRepo "natours/shared/repository"
	"natours/shared/timezone"
)

type User interface {
	Insert(ctx context.Context, model model.User) error
	InsertBulk(ctx context.Context, models []model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	GetWithHidden(ctx context.Context, filter gDto.FilterGroup) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.User, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateByID(ctx context.Context, id string, fields map[string]any) error
	DeleteByID(ctx context.Context, id string) error
	Purge(ctx context.Context) error
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
	db   *postgres.Connection
	otel otel.Otel
}

// New returns a repository that never sees deactivated users.
func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel,
			gRepo.WithScope(gDto.Filter{
				Field:    model.FieldActive,
				Value:    true,
				Operator: gDto.FilterOperatorEq,
			}),
		),
		db:   db,
		otel: otel,
	}
}

// DeleteByID deactivates the user instead of removing the row.
func (r *repositoryImpl) DeleteByID(ctx context.Context, id string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".user.DeleteByID")
	defer scope.End()

	return r.Repository.UpdateByID(ctx, id, map[string]any{ //nolint:wrapcheck
		model.FieldActive:        false,
		constant.FieldModifiedAt: timezone.Now(),
	})
}

// Purge hard-deletes every user, active or not. Only the seed command uses it.
func (r *repositoryImpl) Purge(ctx context.Context) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".user.Purge")
	defer scope.End()

	if _, err := r.db.Write.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", model.TableName)); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to purge users: %w", err)
	}

	return nil
}
