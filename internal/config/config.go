// Package config loads service settings from the environment, optionally
// seeded from a config.env or .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ProductCatalog/internal/catalog"
)

type Config struct {
	HTTP    HTTPConfig
	Store   catalog.Config
	Log     LogConfig
	Auth    AuthConfig
	Metrics MetricsConfig
	Limits  LimitsConfig
}

type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type AuthConfig struct {
	// APIKeySecret signs and verifies API keys. Empty disables API-key checks.
	APIKeySecret string
}

func (c AuthConfig) Enabled() bool { return c.APIKeySecret != "" }

type MetricsConfig struct {
	Token string
}

type LimitsConfig struct {
	WritesPerMinute int
}

const (
	keyCatalogFile      = "CATALOG_FILE"
	keyLockTimeout      = "LOCK_TIMEOUT"
	keyLockPollInterval = "LOCK_POLL_INTERVAL"
	keyLockStaleAfter   = "LOCK_STALE_AFTER"
	keyHTTPAddr         = "HTTP_ADDR"
	keyShutdownTimeout  = "SHUTDOWN_TIMEOUT"
	keyLogLevel         = "LOG_LEVEL"
	keyAPIKeySecret     = "API_KEY_SECRET"
	keyMetricsToken     = "METRICS_TOKEN"
	keyWriteRateLimit   = "WRITE_RATE_LIMIT"
)

// Load reads configuration. Environment variables win over file values.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigType("env")
	v.AddConfigPath(".")
	for _, name := range []string{"config", ".env"} {
		v.SetConfigName(name)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read %s: %w", name, err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyCatalogFile, "data/products.csv")
	v.SetDefault(keyLockTimeout, catalog.DefaultLockTimeout)
	v.SetDefault(keyLockPollInterval, catalog.DefaultPollInterval)
	v.SetDefault(keyLockStaleAfter, time.Duration(0))
	v.SetDefault(keyHTTPAddr, ":8082")
	v.SetDefault(keyShutdownTimeout, 10*time.Second)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyWriteRateLimit, 60)
}

// FromViper builds and validates a Config from an already populated viper
// instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            v.GetString(keyHTTPAddr),
			ShutdownTimeout: v.GetDuration(keyShutdownTimeout),
		},
		Store: catalog.Config{
			Path:         v.GetString(keyCatalogFile),
			LockTimeout:  v.GetDuration(keyLockTimeout),
			PollInterval: v.GetDuration(keyLockPollInterval),
			StaleAfter:   v.GetDuration(keyLockStaleAfter),
		},
		Log:     LogConfig{Level: v.GetString(keyLogLevel)},
		Auth:    AuthConfig{APIKeySecret: v.GetString(keyAPIKeySecret)},
		Metrics: MetricsConfig{Token: v.GetString(keyMetricsToken)},
		Limits:  LimitsConfig{WritesPerMinute: v.GetInt(keyWriteRateLimit)},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, fmt.Errorf("%s is required", keyCatalogFile))
	}
	if c.Store.LockTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", keyLockTimeout))
	}
	if c.Store.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", keyLockPollInterval))
	} else if c.Store.PollInterval > c.Store.LockTimeout {
		errs = append(errs, fmt.Errorf("%s must not exceed %s", keyLockPollInterval, keyLockTimeout))
	}
	if c.Store.StaleAfter < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", keyLockStaleAfter))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, fmt.Errorf("%s is required", keyHTTPAddr))
	}
	if c.Auth.Enabled() && len(c.Auth.APIKeySecret) < 32 {
		errs = append(errs, fmt.Errorf("%s must be at least 32 chars", keyAPIKeySecret))
	}
	return errors.Join(errs...)
}
