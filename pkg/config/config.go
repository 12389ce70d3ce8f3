package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string   `env:"PORT"                      envDefault:"8080"`
	Env                     string   `env:"ENV"                       envDefault:"development"`
	MetricsPort             string   `env:"METRICS_PORT"              envDefault:"9090"`
	FirebaseCredentialsPath string   `env:"FIREBASE_CREDENTIALS_PATH"`
	PostgresConnStr         string   `env:"POSTGRES_CONN_STR"`
	MongoURI                string   `env:"MONGO_URI"`
	MongoDatabase           string   `env:"MONGO_DATABASE"            envDefault:"cinefeed"`
	RedisURL                string   `env:"REDIS_URL"`
	JWTSecret               string   `env:"JWT_SECRET"                envDefault:"supersecretjwtkey"`
	AllowedOrigins          []string `env:"CORS_ALLOWED_ORIGINS"      envSeparator:","`
	RateLimit               float64  `env:"RATE_LIMIT_RPS"            envDefault:"20"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Feed              FeedConfig `envPrefix:"FEED_"`
	NotificationPage  int        `env:"NOTIFICATION_PAGE_SIZE" envDefault:"30"`
	ReviewAutoApprove bool       `env:"REVIEW_AUTO_APPROVE"    envDefault:"true"`
}

// FeedConfig bounds the following feed
type FeedConfig struct {
	Limit         int           `env:"LIMIT"          envDefault:"20"`
	SourceLimit   int           `env:"SOURCE_LIMIT"   envDefault:"10"`
	Lookback      time.Duration `env:"LOOKBACK"       envDefault:"720h"`
	SourceTimeout time.Duration `env:"SOURCE_TIMEOUT" envDefault:"3s"`
}

// Load reads an optional .env file and parses the environment into a Config.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	foundDotEnv := godotenv.Load() == nil

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, foundDotEnv, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, foundDotEnv, err
	}
	return &cfg, foundDotEnv, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.PostgresConnStr == "" {
		errs = append(errs, errors.New("POSTGRES_CONN_STR environment variable not set"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI environment variable not set"))
	}
	if c.Feed.Limit <= 0 {
		errs = append(errs, fmt.Errorf("FEED_LIMIT must be positive, got %d", c.Feed.Limit))
	}
	if c.Feed.SourceLimit <= 0 {
		errs = append(errs, fmt.Errorf("FEED_SOURCE_LIMIT must be positive, got %d", c.Feed.SourceLimit))
	}
	if c.Feed.Lookback <= 0 {
		errs = append(errs, fmt.Errorf("FEED_LOOKBACK must be positive, got %s", c.Feed.Lookback))
	}
	if c.Feed.SourceTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FEED_SOURCE_TIMEOUT must be positive, got %s", c.Feed.SourceTimeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %g", c.RateLimit))
	}
	if c.NotificationPage <= 0 {
		errs = append(errs, fmt.Errorf("NOTIFICATION_PAGE_SIZE must be positive, got %d", c.NotificationPage))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
