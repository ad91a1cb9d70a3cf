package main

import (
	"os"

	"natours/config"
	"natours/helper"
	"natours/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down/drop/step-up) is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.InitLogger(cfg)

	if err = helper.Runner(cfg, helper.Direction(os.Args[1])); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
