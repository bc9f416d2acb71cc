// Package config loads runtime settings for the scraper binaries
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/myusername/cricket-commentary-scraper/internal/logging"
	"github.com/myusername/cricket-commentary-scraper/pkg/scraper"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"

	DefaultScheduleURL = "https://www.espncricinfo.com/series/ipl-2025-1449924/match-schedule-fixtures-and-results"
)

// envFiles are tried in order; the first one found is loaded
var envFiles = []string{".env", "../.env", "../../.env"}

// Config stores runtime configuration for the scraper
type Config struct {
	AppEnv         string        `validate:"oneof=dev stage prod"`
	LogLevel       logging.Level `validate:"-"`
	LogFormat      string        `validate:"oneof=json console"`
	DBDriver       string        `validate:"omitempty,oneof=postgres pgx sqlite"`
	DBURL          string        `validate:"required_with=DBDriver"`
	DBAutoMigrate  bool
	ExportDir      string `validate:"required"`
	ExportPrefix   string
	EventsFormat   string `validate:"oneof=csv json"`
	MetadataFormat string `validate:"oneof=csv json"`
	PlayersFormat  string `validate:"oneof=csv json"`
	Workers        int    `validate:"min=1,max=32"`
	ScheduleURL    string `validate:"omitempty,url"`
	SnapshotDir    string
	Headless       bool
	ChromeURL      string        `validate:"omitempty,url"`
	PageTimeout    time.Duration `validate:"gt=0"`
	ScrollPasses   int           `validate:"min=0,max=100"`
	ScrollDelay    time.Duration `validate:"gte=0"`
	RetryAttempts  int           `validate:"min=1,max=10"`
	RetryDelay     time.Duration `validate:"gt=0"`
	DiscordWebhook string        `validate:"omitempty,url"`
}

// LoadEnvFile loads the first .env file found, if any, without overriding
// variables already set. It returns the path loaded or "".
func LoadEnvFile() string {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads configuration from the environment and validates it
func Load() (Config, error) {
	appEnv := strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", EnvDev)))

	logFormatDefault := "console"
	if appEnv == EnvProd {
		logFormatDefault = "json"
	}

	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return Config{}, errors.Wrap(err, "parse DB_AUTO_MIGRATE")
	}
	workers, err := getEnvAsInt("WORKERS", 2)
	if err != nil {
		return Config{}, errors.Wrap(err, "parse WORKERS")
	}
	headless, err := strconv.ParseBool(getEnv("BROWSER_HEADLESS", "true"))
	if err != nil {
		return Config{}, errors.Wrap(err, "parse BROWSER_HEADLESS")
	}
	pageTimeout, err := time.ParseDuration(getEnv("PAGE_TIMEOUT", "3m"))
	if err != nil {
		return Config{}, errors.Wrap(err, "parse PAGE_TIMEOUT")
	}
	scrollPasses, err := getEnvAsInt("SCROLL_PASSES", 30)
	if err != nil {
		return Config{}, errors.Wrap(err, "parse SCROLL_PASSES")
	}
	scrollDelay, err := time.ParseDuration(getEnv("SCROLL_DELAY", "3s"))
	if err != nil {
		return Config{}, errors.Wrap(err, "parse SCROLL_DELAY")
	}
	retryAttempts, err := getEnvAsInt("RETRY_ATTEMPTS", 3)
	if err != nil {
		return Config{}, errors.Wrap(err, "parse RETRY_ATTEMPTS")
	}
	retryDelay, err := time.ParseDuration(getEnv("RETRY_DELAY", "2s"))
	if err != nil {
		return Config{}, errors.Wrap(err, "parse RETRY_DELAY")
	}

	cfg := Config{
		AppEnv:         appEnv,
		LogLevel:       logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", logFormatDefault)),
		DBDriver:       strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", ""))),
		DBURL:          strings.TrimSpace(getEnv("DB_URL", "")),
		DBAutoMigrate:  autoMigrate,
		ExportDir:      getEnv("EXPORT_DIR", "output"),
		ExportPrefix:   strings.Trim(getEnv("EXPORT_PREFIX", "data"), "/"),
		EventsFormat:   strings.ToLower(getEnv("EVENTS_FORMAT", "csv")),
		MetadataFormat: strings.ToLower(getEnv("METADATA_FORMAT", "json")),
		PlayersFormat:  strings.ToLower(getEnv("PLAYERS_FORMAT", "csv")),
		Workers:        workers,
		ScheduleURL:    strings.TrimSpace(getEnv("SCHEDULE_URL", DefaultScheduleURL)),
		SnapshotDir:    getEnv("SNAPSHOT_DIR", "snapshots"),
		Headless:       headless,
		ChromeURL:      strings.TrimSpace(getEnv("CHROME_URL", "")),
		PageTimeout:    pageTimeout,
		ScrollPasses:   scrollPasses,
		ScrollDelay:    scrollDelay,
		RetryAttempts:  retryAttempts,
		RetryDelay:     retryDelay,
		DiscordWebhook: strings.TrimSpace(getEnv("DISCORD_WEBHOOK_URL", "")),
	}
	if cfg.DBURL != "" && cfg.DBDriver == "" {
		cfg.DBDriver = "postgres"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints; flag overrides should call it again
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.Newf("invalid config %s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return errors.Wrap(err, "validate config")
	}
	return nil
}

// RetryPolicy returns the backoff applied to page loads, match snapshots and the schedule fetch
func (c Config) RetryPolicy() scraper.RetryPolicy {
	return scraper.RetryPolicy{
		Attempts:        c.RetryAttempts,
		InitialInterval: c.RetryDelay,
		MaxInterval:     15 * c.RetryDelay,
	}
}

// DatabaseEnabled reports whether a relational store is configured
func (c Config) DatabaseEnabled() bool {
	return c.DBURL != ""
}

// String renders the config with secrets masked
func (c Config) String() string {
	return fmt.Sprintf("env=%s driver=%s db=%s export=%s/%s workers=%d headless=%t discord=%t",
		c.AppEnv, c.DBDriver, mask(c.DBURL), c.ExportDir, c.ExportPrefix, c.Workers, c.Headless, c.DiscordWebhook != "")
}

func mask(v string) string {
	if v == "" {
		return "none"
	}
	return "***"
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}
