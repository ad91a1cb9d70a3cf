package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"       default:"development"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Port     string `envconfig:"PORT"      default:"3000"`
		Host     string `envconfig:"HOST"      default:"0.0.0.0"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"5"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"   default:"5"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name          string `envconfig:"APP_NAME"        default:"natours"`
		Timezone      string `envconfig:"TIMEZONE"        default:"UTC"`
		BaseURL       string `envconfig:"BASE_URL"        default:"http://localhost:3000"`
		BodyLimitByte int64  `envconfig:"BODY_LIMIT_BYTE" default:"10240"`
		CORS          struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"         default:"true"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"   default:"100"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"3600"`
			// Addresses or CIDRs of load balancers whose X-Forwarded-For is believed.
			TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
		} `envconfig:"RATE_LIMITER"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
				PoolSize int    `envconfig:"POOL_SIZE"       default:"10"`
				TimeoutS int    `envconfig:"TIMEOUT_SECONDS" default:"5"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"300"`
	} `envconfig:"CACHE"`

	JWT struct {
		Secret           string `envconfig:"SECRET"             required:"true"`
		ExpireMin        int    `envconfig:"EXPIRE_MIN"         default:"129600"`
		CookieExpireDays int    `envconfig:"COOKIE_EXPIRE_DAYS" default:"90"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry               int              `envconfig:"MAX_RETRY"                 default:"5"`
			RetryWaitTime          int              `envconfig:"RETRY_WAIT_TIME"           default:"2"`
			MaxOpenConns           int              `envconfig:"MAX_OPEN_CONNS"            default:"10"`
			MaxIdleConns           int              `envconfig:"MAX_IDLE_CONNS"            default:"10"`
			ConnMaxLifetimeSeconds int              `envconfig:"CONN_MAX_LIFETIME_SECONDS" default:"300"`
			MigrationTable         string           `envconfig:"MIGRATION_TABLE"`
			AutoMigrate            bool             `envconfig:"AUTO_MIGRATE"`
			Prefix                 string           `envconfig:"PREFIX"`
			Read                   PostgresEndpoint `envconfig:"READ"`
			Write                  PostgresEndpoint `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers []string `envconfig:"BROKERS"`
		SASL    struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		NotificationTopic string `envconfig:"NOTIFICATION_TOPIC" default:"notifications"`
	} `envconfig:"KAFKA"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
			BucketName      string `envconfig:"BUCKET_NAME"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
		} `envconfig:"S3"`
		Stripe struct {
			SecretKey     string `envconfig:"SECRET_KEY"`
			WebhookSecret string `envconfig:"WEBHOOK_SECRET" required:"true"`
			Currency      string `envconfig:"CURRENCY"       default:"usd"`
			ImageBaseURL  string `envconfig:"IMAGE_BASE_URL"`
		} `envconfig:"STRIPE"`
	} `envconfig:"EXTERNAL"`
}

// PostgresEndpoint is one side of the read/write split.
type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

// IsDevelopment reports whether error responses may carry internal details.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Load reads an optional .env file and then the process environment.
// It is called once at start-up; the returned value is passed to every component that needs it.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
	} else {
		log.Info().Msg("Successfully loaded variables from .env file into environment")
	}

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("processing environment variables: %w", err)
	}

	log.Info().Msg("Service configuration initialized successfully")

	return &conf, nil
}
