package handler

import (
	"net/http"
	"sync"

	"natours/config"
	"natours/di"
	"natours/shared/logger"
	"natours/shared/timezone"
	natoursHTTP "natours/transport/http"

	"github.com/rs/zerolog/log"
)

var (
	app  *natoursHTTP.HTTP
	once sync.Once
)

// Handler is the serverless entry point. The app is built on the first request and reused.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		logger.InitLogger(cfg)
		logger.SetLogLevel(cfg)
		timezone.Init(cfg)

		app = di.InitializeService(cfg)
	})

	app.ServeHTTP(w, r)
}
