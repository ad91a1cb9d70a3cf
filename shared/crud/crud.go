//go:generate go run go.uber.org/mock/mockgen -source=./crud.go -destination=./mocks/crud_mock.go -package=mocks

// Package crud implements the five standard resource operations once, against any
// collection that can find, insert, update and delete by id.
package crud

import (
	"context"
	"fmt"

	"natours/config"
	"natours/infras/otel"
	"natours/shared"
	"natours/shared/cache"
	"natours/shared/constant"
	"natours/shared/dto"
	"natours/shared/failure"
	"natours/shared/validator"

	"github.com/rs/zerolog/log"
)

// Collection is the storage capability the operations need.
type Collection[M any] interface {
	FindByID(ctx context.Context, id string) (M, error)
	GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup) ([]M, error)
	Count(ctx context.Context, filter dto.FilterGroup) (int, error)
	Insert(ctx context.Context, model M) error
	UpdateByID(ctx context.Context, id string, fields map[string]any) error
	DeleteByID(ctx context.Context, id string) error
}

type List[Res any] struct {
	Items []Res `json:"items"`
	Total int   `json:"total"`
}

// Hooks customise a resource. Only Render is required.
type Hooks[M, Res any] struct {
	Render func(M) Res
	// Expand resolves references on read-one, e.g. a tour's guides and reviews.
	Expand func(ctx context.Context, mod M, res *Res) error
	// BeforeSave runs on create (fields is nil) and on update after the patch is merged.
	// It may adjust the model and, on update, add derived columns to fields.
	BeforeSave func(ctx context.Context, mod *M, fields map[string]any) error
	// AfterWrite runs after a successful create, update or delete.
	AfterWrite func(ctx context.Context, mod M)
	// Locate finds the record an update or delete acts on. Defaults to the collection's FindByID.
	Locate func(ctx context.Context, id string) (M, error)
	// Invalidates lists the cache prefixes of other resources derived from this one.
	Invalidates []string
}

type Service[M, Res any] interface {
	Create(ctx context.Context, mod M) (Res, error)
	Get(ctx context.Context, id string) (Res, error)
	GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup) (List[Res], error)
	Update(ctx context.Context, id string, fields map[string]any) (Res, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl[M, Res any] struct {
	repo   Collection[M]
	entity string
	hooks  Hooks[M, Res]
	cfg    *config.Config
	cache  cache.RedisCache
	otel   otel.Otel
}

func New[M, Res any](entity string, repo Collection[M], hooks Hooks[M, Res], cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Service[M, Res] {
	return &serviceImpl[M, Res]{
		repo:   repo,
		entity: entity,
		hooks:  hooks,
		cfg:    cfg,
		cache:  cache,
		otel:   otel,
	}
}

// CachePrefix is the key prefix under which a resource's reads are cached.
func CachePrefix(entity string) string {
	return entity + ":"
}

func (s *serviceImpl[M, Res]) scopeName(op string) string {
	return fmt.Sprintf("%s.%s.%s", constant.OtelServiceScopeName, s.entity, op)
}

func (s *serviceImpl[M, Res]) Create(ctx context.Context, mod M) (res Res, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, s.scopeName("Create"))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if s.hooks.BeforeSave != nil {
		if err = s.hooks.BeforeSave(ctx, &mod, nil); err != nil {
			return res, err
		}
	}

	if err = validator.ValidateStruct(&mod); err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, mod); err != nil {
		log.Error().Err(err).Str("entity", s.entity).Msg("failed to create")

		return res, fmt.Errorf("failed to create %s: %w", s.entity, err)
	}

	s.afterWrite(ctx, mod)

	return s.hooks.Render(mod), nil
}

func (s *serviceImpl[M, Res]) Get(ctx context.Context, id string) (res Res, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, s.scopeName("Get"))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(CachePrefix(s.entity)+"get", id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit")

		return res, nil
	}

	mod, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to get %s: %w", s.entity, err)
	}

	res = s.hooks.Render(mod)

	if s.hooks.Expand != nil {
		if err = s.hooks.Expand(ctx, mod, &res); err != nil {
			log.Error().Err(err).Str("entity", s.entity).Msg("failed to expand references")

			return res, fmt.Errorf("failed to expand %s: %w", s.entity, err)
		}
	}

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl[M, Res]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup) (res List[Res], err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, s.scopeName("GetAll"))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(CachePrefix(s.entity)+"gets", params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit")

		return res, nil
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		return res, fmt.Errorf("failed to get %s list: %w", s.entity, err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to count %s: %w", s.entity, err)
	}

	res.Total = total
	res.Items = make([]Res, len(models))

	for idx, mod := range models {
		res.Items[idx] = s.hooks.Render(mod)
	}

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl[M, Res]) Update(ctx context.Context, id string, fields map[string]any) (res Res, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, s.scopeName("Update"))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(fields) == 0 {
		return res, failure.BadRequestFromString("no updatable fields in request") //nolint:wrapcheck
	}

	mod, err := s.locate(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to get %s: %w", s.entity, err)
	}

	shared.ApplyFields(&mod, fields)

	if s.hooks.BeforeSave != nil {
		if err = s.hooks.BeforeSave(ctx, &mod, fields); err != nil {
			return res, err
		}
	}

	if err = validator.ValidateStruct(&mod); err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = s.repo.UpdateByID(ctx, id, fields); err != nil {
		log.Error().Err(err).Str("entity", s.entity).Msg("failed to update")

		return res, fmt.Errorf("failed to update %s: %w", s.entity, err)
	}

	s.afterWrite(ctx, mod)

	return s.hooks.Render(mod), nil
}

func (s *serviceImpl[M, Res]) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, s.scopeName("Delete"))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	mod, err := s.locate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", s.entity, err)
	}

	if err = s.repo.DeleteByID(ctx, id); err != nil {
		log.Error().Err(err).Str("entity", s.entity).Msg("failed to delete")

		return fmt.Errorf("failed to delete %s: %w", s.entity, err)
	}

	s.afterWrite(ctx, mod)

	return nil
}

func (s *serviceImpl[M, Res]) locate(ctx context.Context, id string) (M, error) {
	if s.hooks.Locate != nil {
		return s.hooks.Locate(ctx, id)
	}

	return s.repo.FindByID(ctx, id) //nolint:wrapcheck
}

func (s *serviceImpl[M, Res]) afterWrite(ctx context.Context, mod M) {
	if s.hooks.AfterWrite != nil {
		s.hooks.AfterWrite(ctx, mod)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, append([]string{CachePrefix(s.entity)}, s.hooks.Invalidates...)...)
	}()
}

func (s *serviceImpl[M, Res]) save(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save to cache")
		}
	}()
}
