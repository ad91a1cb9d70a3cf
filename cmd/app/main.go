package main

import (
	"natours/config"
	"natours/di"
	"natours/helper"
	"natours/shared/logger"
	"natours/shared/timezone"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.InitLogger(cfg)
	logger.SetLogLevel(cfg)
	timezone.Init(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err = helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	http := di.InitializeService(cfg)
	http.Serve()
}
