package postgres

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"natours/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connection carries the read/write split used by every repository.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Pool is the database/sql pool shape applied to both sides.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// Retry bounds how long startup waits for the database.
type Retry struct {
	Attempts int
	Wait     time.Duration
}

var ErrUnreachable = errors.New("postgres unreachable")

// New opens both sides of the split and stops the process when either stays unreachable.
func New(cfg *config.Config) *Connection {
	pool, retry := PoolOptions(cfg), RetryOptions(cfg)

	write, err := Connect("write", DSN(cfg, cfg.DB.Postgres.Write), pool, retry)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the write database")
	}

	read, err := Connect("read", DSN(cfg, cfg.DB.Postgres.Read), pool, retry)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the read database")
	}

	return &Connection{Read: read, Write: write}
}

// Close releases both pools, once when they share one handle.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}

	var errs []error

	if c.Write != nil {
		errs = append(errs, c.Write.Close())
	}

	if c.Read != nil && c.Read != c.Write {
		errs = append(errs, c.Read.Close())
	}

	return errors.Join(errs...)
}

// DSN builds the lib/pq URL for one endpoint, applying the database name prefix.
func DSN(cfg *config.Config, endpoint config.PostgresEndpoint) string {
	query := url.Values{}
	query.Set("sslmode", endpoint.SSLMode)

	if endpoint.Timezone != "" {
		query.Set("timezone", endpoint.Timezone)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(endpoint.Username, endpoint.Password),
		Host:     net.JoinHostPort(endpoint.Host, endpoint.Port),
		Path:     "/" + cfg.DB.Postgres.Prefix + endpoint.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func PoolOptions(cfg *config.Config) Pool {
	return Pool{
		MaxOpen:     cfg.DB.Postgres.MaxOpenConns,
		MaxIdle:     min(cfg.DB.Postgres.MaxIdleConns, cfg.DB.Postgres.MaxOpenConns),
		MaxLifetime: time.Duration(cfg.DB.Postgres.ConnMaxLifetimeSeconds) * time.Second,
	}
}

// RetryOptions always allows at least one attempt.
func RetryOptions(cfg *config.Config) Retry {
	return Retry{
		Attempts: max(cfg.DB.Postgres.MaxRetry, 1),
		Wait:     time.Duration(cfg.DB.Postgres.RetryWaitTime) * time.Second,
	}
}

// Apply sets the pool limits on an open handle.
func (p Pool) Apply(db *sqlx.DB) {
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
}

// Connect dials until the database answers or the attempts run out.
func Connect(name, dsn string, pool Pool, retry Retry) (*sqlx.DB, error) {
	var lastErr error

	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		db, err := sqlx.Connect("postgres", dsn)
		if err == nil {
			pool.Apply(db)

			log.Info().
				Str("name", name).
				Int("maxOpen", pool.MaxOpen).
				Int("maxIdle", pool.MaxIdle).
				Msg("Connected to database")

			return db, nil
		}

		lastErr = err

		log.Error().
			Err(err).
			Str("name", name).
			Int("attempt", attempt).
			Int("attempts", retry.Attempts).
			Msg("Failed connecting to database")

		if attempt < retry.Attempts {
			time.Sleep(retry.Wait)
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrUnreachable, name, retry.Attempts, lastErr)
}
