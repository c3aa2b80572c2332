package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is loaded from environment variables, with an optional .env file
// for local development. Environment always wins over the file.
type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	DBHost        string `mapstructure:"POSTGRES_HOST"`
	DBPort        string `mapstructure:"POSTGRES_PORT"`
	DBUser        string `mapstructure:"POSTGRES_USER"`
	DBPassword    string `mapstructure:"POSTGRES_PASSWORD"`
	DBName        string `mapstructure:"POSTGRES_DB"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	RedisAddr    string   `mapstructure:"REDIS_ADDR"`
	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`

	TaxRate         string `mapstructure:"TAX_RATE"`
	DefaultShipping string `mapstructure:"DEFAULT_SHIPPING_COST"`

	CollaboratorTimeoutMS int `mapstructure:"COLLABORATOR_TIMEOUT_MS"`
}

func Load() (*Config, error) {
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "ecommforall")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	viper.SetDefault("TAX_RATE", "0.10")
	viper.SetDefault("DEFAULT_SHIPPING_COST", "0")
	viper.SetDefault("COLLABORATOR_TIMEOUT_MS", 2000)

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// The .env file is optional; env vars alone are a valid setup.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, ok := err.(*viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse .env file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := decimal.NewFromString(cfg.TaxRate); err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE %q: %w", cfg.TaxRate, err)
	}
	if _, err := decimal.NewFromString(cfg.DefaultShipping); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_SHIPPING_COST %q: %w", cfg.DefaultShipping, err)
	}

	return cfg, nil
}

// TaxRateDecimal returns the validated tax rate.
func (c *Config) TaxRateDecimal() decimal.Decimal {
	d, _ := decimal.NewFromString(c.TaxRate)
	return d
}

// DefaultShippingDecimal returns the validated default shipping cost.
func (c *Config) DefaultShippingDecimal() decimal.Decimal {
	d, _ := decimal.NewFromString(c.DefaultShipping)
	return d
}
