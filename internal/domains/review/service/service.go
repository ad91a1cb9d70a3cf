package service

import (
	"context"

	"natours/config"
	"natours/infras/otel"
	"natours/internal/domains/review/model"
	"natours/internal/domains/review/model/dto"
	"natours/internal/domains/review/repository"
	tourModel "natours/internal/domains/tour/model"
	tourRepo "natours/internal/domains/tour/repository"
	"natours/shared/cache"
	"natours/shared/crud"

	"github.com/rs/zerolog/log"
)

type Review interface {
	crud.Service[model.Review, dto.ReviewResponse]
}

// New keeps each tour's ratings_average and ratings_quantity in step with its reviews.
func New(repo repository.Review, tourRepo tourRepo.Tour, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Review {
	return crud.New(model.EntityName, repo, crud.Hooks[model.Review, dto.ReviewResponse]{
		Render: dto.Render,
		AfterWrite: func(ctx context.Context, mod model.Review) {
			if err := tourRepo.RecalculateRatings(ctx, mod.TourID); err != nil {
				log.Error().Err(err).Str("tour_id", mod.TourID).Msg("failed to recalculate tour ratings")
			}
		},
		Invalidates: []string{crud.CachePrefix(tourModel.EntityName)},
	}, cfg, cache, otel)
}
