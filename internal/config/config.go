package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all pipeline configuration.
type Config struct {
	Env      string `validate:"oneof=development production test"`
	Paths    PathsConfig
	Database DatabaseConfig
	Load     LoadConfig
}

// PathsConfig holds the input and output file locations.
type PathsConfig struct {
	Source string `validate:"required"` // flat property export CSV
	Rules  string `validate:"required"` // field rule table CSV
	Report string `validate:"required"` // discrepancy report destination
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required"`
	Name     string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`
	SSLMode  string `validate:"oneof=disable require verify-ca verify-full"`
	PoolMin  int    `validate:"gte=0"`
	PoolMax  int    `validate:"gte=1,gtefield=PoolMin"`
}

// LoadConfig holds load-adapter behavior.
type LoadConfig struct {
	// Policy is "best_effort" (keep loading after a failed row) or
	// "fail_fast" (stop at the first).
	Policy string `validate:"oneof=best_effort fail_fast"`
}

// Load reads configuration from environment variables with development
// defaults, then validates the result.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("ENV", "development")
	v.SetDefault("SOURCE_CSV", "data/fake_data.csv")
	v.SetDefault("RULES_CSV", "data/field_rules.csv")
	v.SetDefault("REPORT_CSV", "out/discrepancies.csv")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "propetl")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 1)
	v.SetDefault("DB_POOL_MAX", 4)
	v.SetDefault("LOAD_POLICY", "best_effort")

	v.AutomaticEnv()

	cfg := &Config{
		Env: v.GetString("ENV"),
		Paths: PathsConfig{
			Source: v.GetString("SOURCE_CSV"),
			Rules:  v.GetString("RULES_CSV"),
			Report: v.GetString("REPORT_CSV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Load: LoadConfig{
			Policy: strings.ToLower(v.GetString("LOAD_POLICY")),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
