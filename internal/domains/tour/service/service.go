package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Tour=MockService

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"natours/config"
	"natours/infras/otel"
	"natours/infras/s3"
	reviewModel "natours/internal/domains/review/model"
	reviewRepo "natours/internal/domains/review/repository"
	"natours/internal/domains/tour/model"
	"natours/internal/domains/tour/model/dto"
	"natours/internal/domains/tour/repository"
	userModel "natours/internal/domains/user/model"
	userDto "natours/internal/domains/user/model/dto"
	userRepo "natours/internal/domains/user/repository"
	"natours/shared"
	"natours/shared/cache"
	"natours/shared/constant"
	"natours/shared/crud"
	gDto "natours/shared/dto"
	"natours/shared/failure"
	"natours/shared/timezone"

	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const imageDirectory = "tours"

type Tour interface {
	crud.Service[model.Tour, dto.TourResponse]
	// GetAny also returns secret tours. Only admins reach it.
	GetAny(ctx context.Context, id string) (dto.TourResponse, error)
	UpdateImages(ctx context.Context, id, by string, req dto.TourImagesRequest) (dto.TourResponse, error)
	Stats(ctx context.Context) ([]model.Stat, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error)
	Within(ctx context.Context, distance float64, geo dto.GeoQuery) ([]dto.TourResponse, error)
	Distances(ctx context.Context, geo dto.GeoQuery) ([]model.Distance, error)
}

type serviceImpl struct {
	crud.Service[model.Tour, dto.TourResponse]
	repo       repository.Tour
	reviewRepo reviewRepo.Review
	userRepo   userRepo.User
	s3         s3.S3
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(repo repository.Tour, reviewRepo reviewRepo.Review, userRepo userRepo.User, s3 s3.S3, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Tour {
	s := &serviceImpl{
		repo:       repo,
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		s3:         s3,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}

	s.Service = crud.New(model.EntityName, repo, crud.Hooks[model.Tour, dto.TourResponse]{
		Render:      dto.Render,
		Expand:      s.expand,
		BeforeSave:  beforeSave,
		Locate:      repo.FindAnyByID,
		Invalidates: []string{crud.CachePrefix(reviewModel.EntityName), crud.CachePrefix("booking")},
	}, cfg, cache, otel)

	return s
}

// beforeSave derives the slug and rounds the rating; on update the slug follows a renamed tour.
func beforeSave(_ context.Context, mod *model.Tour, fields map[string]any) error {
	mod.Slug = slug.Make(mod.Name)
	mod.RatingsAverage = model.RoundRating(mod.RatingsAverage)

	if fields == nil {
		return nil
	}

	if _, ok := fields[model.FieldName]; ok {
		fields[model.FieldSlug] = mod.Slug
	}

	return nil
}

func (s *serviceImpl) expand(ctx context.Context, mod model.Tour, res *dto.TourResponse) error {
	if len(mod.Guides) > 0 {
		users, err := s.userRepo.GetAll(ctx, gDto.QueryParams{}, gDto.Where(gDto.Filter{
			Field:    userModel.FieldID,
			Value:    []string(mod.Guides),
			Operator: gDto.FilterOperatorIn,
		}))
		if err != nil {
			return fmt.Errorf("failed to get guides: %w", err)
		}

		guides := make([]userDto.GuideResponse, len(users))
		for idx, user := range users {
			guides[idx].FromModel(user)
		}

		res.WithGuides(guides)
	}

	reviews, err := s.reviewRepo.GetAll(ctx, gDto.QueryParams{
		Sort: []gDto.SortField{{Field: constant.FieldCreatedAt, Dir: gDto.SortDirDesc}},
	}, gDto.Where(gDto.Filter{
		Field:    reviewModel.FieldTourID,
		Value:    mod.ID,
		Operator: gDto.FilterOperatorEq,
	}))
	if err != nil {
		return fmt.Errorf("failed to get reviews: %w", err)
	}

	res.Reviews = make([]dto.ReviewResponse, len(reviews))
	for idx, review := range reviews {
		res.Reviews[idx] = dto.ReviewResponse{
			ID:        review.ID,
			Review:    review.Review,
			Rating:    review.Rating,
			UserID:    review.UserID,
			UserName:  review.UserName,
			UserPhoto: review.UserPhoto,
			CreatedAt: timezone.Format(review.CreatedAt, constant.DateFormat),
		}
	}

	return nil
}

func (s *serviceImpl) GetAny(ctx context.Context, id string) (res dto.TourResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tour.GetAny")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	mod, err := s.repo.FindAnyByID(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to get tour: %w", err)
	}

	res = dto.Render(mod)

	if err = s.expand(ctx, mod, &res); err != nil {
		log.Error().Err(err).Msg("failed to expand tour")

		return res, err
	}

	return res, nil
}

func (s *serviceImpl) UpdateImages(ctx context.Context, id, by string, req dto.TourImagesRequest) (res dto.TourResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tour.UpdateImages")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.Empty() {
		return res, failure.BadRequestFromString("no images in request") //nolint:wrapcheck
	}

	stamp := strconv.FormatInt(timezone.Now().UnixMilli(), 10)
	fields := map[string]any{
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: by,
	}

	if req.ImageCover != nil {
		name := fmt.Sprintf("tour-%s-%s-cover%s", id, stamp, ext(req.ImageCover.Filename))

		url, err := s.s3.UploadFile(ctx, imageDirectory, req.ImageCover, name)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload tour cover")

			return res, fmt.Errorf("failed to upload tour cover: %w", err)
		}

		fields[model.FieldImageCover] = url
	}

	if len(req.Images) > 0 {
		urls := make([]string, len(req.Images))

		for idx, file := range req.Images {
			name := fmt.Sprintf("tour-%s-%s-%d%s", id, stamp, idx+1, ext(file.Filename))

			urls[idx], err = s.s3.UploadFile(ctx, imageDirectory, file, name)
			if err != nil {
				log.Error().Err(err).Msg("failed to upload tour image")

				return res, fmt.Errorf("failed to upload tour image: %w", err)
			}
		}

		fields[model.FieldImages] = pq.StringArray(urls)
	}

	return s.Service.Update(ctx, id, fields) //nolint:wrapcheck
}

func (s *serviceImpl) Stats(ctx context.Context) (res []model.Stat, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tour.Stats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(crud.CachePrefix(model.EntityName)+"stats")

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get tour stats")

		return res, fmt.Errorf("failed to get tour stats: %w", err)
	}

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) MonthlyPlan(ctx context.Context, year int) (res []model.MonthlyPlan, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tour.MonthlyPlan")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(crud.CachePrefix(model.EntityName)+"plan", strconv.Itoa(year))

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.MonthlyPlan(ctx, year)
	if err != nil {
		log.Error().Err(err).Int("year", year).Msg("failed to get monthly plan")

		return res, fmt.Errorf("failed to get monthly plan: %w", err)
	}

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) Within(ctx context.Context, distance float64, geo dto.GeoQuery) (res []dto.TourResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tour.Within")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return res, failure.BadRequestFromString("distance must be a finite number greater than 0") //nolint:wrapcheck
	}

	tours, err := s.repo.Within(ctx, geo.Lat, geo.Lng, distance, geo.EarthRadius())
	if err != nil {
		log.Error().Err(err).Msg("failed to get tours within radius")

		return res, fmt.Errorf("failed to get tours within radius: %w", err)
	}

	res = make([]dto.TourResponse, len(tours))
	for idx, tour := range tours {
		res[idx] = dto.Render(tour)
	}

	return res, nil
}

func (s *serviceImpl) Distances(ctx context.Context, geo dto.GeoQuery) (res []model.Distance, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tour.Distances")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.repo.Distances(ctx, geo.Lat, geo.Lng, geo.EarthRadius())
	if err != nil {
		log.Error().Err(err).Msg("failed to get tour distances")

		return res, fmt.Errorf("failed to get tour distances: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) save(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save to cache")
		}
	}()
}

func ext(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}
