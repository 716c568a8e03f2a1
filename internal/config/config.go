package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is read from the process environment, falling back to .env files.
type Config struct {
	LogLevel     string `env:"TOMERATER_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFormat    string `env:"TOMERATER_LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	LogRoot      string `env:"TOMERATER_LOG_ROOT"`
	RatingPolicy string `env:"TOMERATER_RATING_POLICY" envDefault:"accumulate" validate:"oneof=accumulate latest"`
	Output       string `env:"TOMERATER_OUTPUT" envDefault:"text" validate:"oneof=text json"`
	SeedBooks    int    `env:"TOMERATER_SEED_BOOKS" envDefault:"50" validate:"gte=1,lte=10000"`
	SeedUsers    int    `env:"TOMERATER_SEED_USERS" envDefault:"20" validate:"gte=1,lte=10000"`
}

var validate = validator.New()

func loadEnvFiles() {
	// Do not override environment provided by the runtime.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads .env files, parses the environment and validates the result.
func Load() (Config, error) {
	loadEnvFiles()
	return Parse()
}

// Parse reads the configuration from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
