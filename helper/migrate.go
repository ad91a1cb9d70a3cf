package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"

	"natours/config"
	"natours/infras/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationSource = "file://migrations/postgres"

// Direction names one migration action of cmd/migrate.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStepUp Direction = "step-up"
	DirectionDrop   Direction = "drop"
)

var ErrUnknownDirection = errors.New("unknown migration direction")

// DSN is the write connection string, with the migrations table when one is configured.
func DSN(cfg *config.Config) string {
	dsn := postgres.DSN(cfg, cfg.DB.Postgres.Write)

	if cfg.DB.Postgres.MigrationTable != "" {
		dsn += "&x-migrations-table=" + url.QueryEscape(cfg.DB.Postgres.MigrationTable)
	}

	return dsn
}

func Runner(cfg *config.Config, direction Direction) error {
	mig, err := migrate.New(migrationSource, DSN(cfg))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer mig.Close()

	switch direction {
	case DirectionUp:
		err = mig.Up()
	case DirectionDown:
		err = mig.Steps(-1)
	case DirectionStepUp:
		err = mig.Steps(1)
	case DirectionDrop:
		err = mig.Down()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migrations: %w", direction, err)
	}

	log.Info().Str("direction", string(direction)).Msg("Database migrations completed successfully")

	return nil
}

func Up(cfg *config.Config) error {
	return Runner(cfg, DirectionUp)
}

func StepUp(cfg *config.Config) error {
	return Runner(cfg, DirectionStepUp)
}

func Down(cfg *config.Config) error {
	return Runner(cfg, DirectionDown)
}

func Drop(cfg *config.Config) error {
	return Runner(cfg, DirectionDrop)
}
