package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockService

import (
	"context"
	"fmt"

	"natours/config"
	"natours/infras/metrics"
	"natours/infras/otel"
	"natours/internal/domains/booking/model"
	"natours/internal/domains/booking/model/dto"
	"natours/internal/domains/booking/repository"
	"natours/shared/cache"
	"natours/shared/constant"
	"natours/shared/crud"
	gDto "natours/shared/dto"
)

type Booking interface {
	crud.Service[model.Booking, dto.BookingResponse]
	// Book creates a booking and counts it under source (checkout or admin).
	Book(ctx context.Context, mod model.Booking, source string) (dto.BookingResponse, error)
	// Mine lists the bookings of one user.
	Mine(ctx context.Context, userID string, params gDto.QueryParams) (crud.List[dto.BookingResponse], error)
}

type serviceImpl struct {
	crud.Service[model.Booking, dto.BookingResponse]
	otel otel.Otel
}

func New(repo repository.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Booking {
	return &serviceImpl{
		Service: crud.New(model.EntityName, repo, crud.Hooks[model.Booking, dto.BookingResponse]{
			Render: dto.Render,
		}, cfg, cache, otel),
		otel: otel,
	}
}

// Create is the admin path.
func (s *serviceImpl) Create(ctx context.Context, mod model.Booking) (dto.BookingResponse, error) {
	return s.Book(ctx, mod, metrics.SourceAdmin)
}

func (s *serviceImpl) Book(ctx context.Context, mod model.Booking, source string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Book")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("booking.source", source)

	res, err = s.Service.Create(ctx, mod)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	metrics.BookingsCreatedTotal.WithLabelValues(source).Inc()

	return res, nil
}

func (s *serviceImpl) Mine(ctx context.Context, userID string, params gDto.QueryParams) (res crud.List[dto.BookingResponse], err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Mine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.Service.GetAll(ctx, params, gDto.Where(gDto.Filter{
		Field:    model.FieldUserID,
		Value:    userID,
		Operator: gDto.FilterOperatorEq,
	}))
	if err != nil {
		return res, fmt.Errorf("failed to get bookings of user: %w", err)
	}

	return res, nil
}
