//go:build wireinject
// +build wireinject

package di

import (
	"natours/config"
	"natours/infras/jwt"
	"natours/infras/kafka"
	"natours/infras/otel"
	"natours/infras/postgres"
	"natours/infras/redis"
	"natours/infras/s3"
	"natours/infras/stripe"
	"natours/shared/cache"
	"natours/transport/http"
	"natours/transport/http/middleware"
	"natours/transport/http/router"

	authService "natours/internal/domains/auth/service"
	bookingRepository "natours/internal/domains/booking/repository"
	bookingService "natours/internal/domains/booking/service"
	notificationService "natours/internal/domains/notification/service"
	paymentService "natours/internal/domains/payment/service"
	reviewRepository "natours/internal/domains/review/repository"
	reviewService "natours/internal/domains/review/service"
	tourRepository "natours/internal/domains/tour/repository"
	tourService "natours/internal/domains/tour/service"
	userRepository "natours/internal/domains/user/repository"
	userService "natours/internal/domains/user/service"

	authHandler "natours/internal/handlers/auth"
	bookingHandler "natours/internal/handlers/booking"
	reviewHandler "natours/internal/handlers/review"
	tourHandler "natours/internal/handlers/tour"
	userHandler "natours/internal/handlers/user"

	"github.com/google/wire"
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
	stripe.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	notificationService.New,
	authService.New,
)

var tourDomain = wire.NewSet(
	tourRepository.New,
	tourService.New,
)

var reviewDomain = wire.NewSet(
	reviewRepository.New,
	reviewService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	paymentService.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	tourDomain,
	reviewDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	tourHandler.New,
	reviewHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService(cfg *config.Config) *http.HTTP {
	wire.Build(
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
