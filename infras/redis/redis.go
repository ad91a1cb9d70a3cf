package redis

import (
	"context"
	"net"
	"time"

	"natours/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Options maps the primary cache settings onto the go-redis client.
func Options(cfg *config.Config) *goRedis.Options {
	primary := cfg.Cache.Redis.Primary
	timeout := time.Duration(primary.TimeoutS) * time.Second

	return &goRedis.Options{
		Addr:         net.JoinHostPort(primary.Host, primary.Port),
		Password:     primary.Password,
		DB:           primary.DB,
		PoolSize:     primary.PoolSize,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
}

// New returns a client that answered a ping, or stops the process.
func New(cfg *config.Config) *goRedis.Client {
	opts := Options(cfg)
	client := goRedis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout+time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", opts.Addr).Msg("Failed to connect to Redis")
	}

	log.Info().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Int("poolSize", opts.PoolSize).
		Msg("Connected to Redis")

	return client
}
