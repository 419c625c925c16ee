// Package config reads service settings from the environment.
package config

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be
	// parsed into Config.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig is returned when parsed values are out of range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the full set of environment settings.
type Config struct {
	Port      string     `env:"PORT" envDefault:"8080"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text"`
	BaseURL   string     `env:"QR_BASE_URL" envDefault:"https://mail.ylide.io"`

	ModuleSize     int           `env:"QR_MODULE_SIZE" envDefault:"10"`
	QuietZone      int           `env:"QR_QUIET_ZONE" envDefault:"4"`
	ECLevel        encoder.Level `env:"QR_EC_LEVEL" envDefault:"M"`
	MatrixCache    int           `env:"QR_MATRIX_CACHE_SIZE" envDefault:"256"`
	MaxLogoBytes   int64         `env:"QR_MAX_LOGO_BYTES" envDefault:"2097152"`
	ExportFilename string        `env:"QR_EXPORT_FILENAME" envDefault:"download.png"`
}

var dotenvLoaded sync.Once

// Load reads an optional .env file once, then parses the environment.
func Load() (Config, error) {
	dotenvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var errs []error
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, errors.New("LOG_FORMAT must be json or text"))
	}
	if c.ModuleSize < 1 {
		errs = append(errs, errors.New("QR_MODULE_SIZE must be at least 1"))
	}
	if c.QuietZone < 0 {
		errs = append(errs, errors.New("QR_QUIET_ZONE must not be negative"))
	}
	if c.MatrixCache < 1 {
		errs = append(errs, errors.New("QR_MATRIX_CACHE_SIZE must be at least 1"))
	}
	if c.MaxLogoBytes < 1 {
		errs = append(errs, errors.New("QR_MAX_LOGO_BYTES must be at least 1"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}
