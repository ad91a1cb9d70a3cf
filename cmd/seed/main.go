package main

import (
	"context"
	"os"

	"natours/config"
	"natours/helper"
	"natours/infras/otel"
	"natours/infras/postgres"
	bookingRepository "natours/internal/domains/booking/repository"
	reviewRepository "natours/internal/domains/review/repository"
	tourRepository "natours/internal/domains/tour/repository"
	userRepository "natours/internal/domains/user/repository"
	"natours/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength      = 2
	dataDirArg     = 2
	defaultDataDir = "dev-data"
)

func main() {
	if len(os.Args) < argLength {
		log.Fatal().Msg("Seed action (import/delete) is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.InitLogger(cfg)

	db := postgres.New(cfg)
	otl := otel.New(cfg)

	seeder := helper.NewSeeder(
		userRepository.New(db, otl),
		tourRepository.New(db, otl),
		reviewRepository.New(db, otl),
		bookingRepository.New(db, otl),
	)

	ctx := context.Background()

	switch os.Args[1] {
	case "import":
		dir := defaultDataDir
		if len(os.Args) > dataDirArg {
			dir = os.Args[dataDirArg]
		}

		err = seeder.Import(ctx, os.DirFS(dir))
	case "delete":
		err = seeder.Delete(ctx)
	default:
		log.Fatal().Msg("Invalid action. Use 'import' or 'delete'")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	if err = otl.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}

	if err = db.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database")
	}
}
