package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`

	DB struct {
		Host           string `mapstructure:"POSTGRES_HOST"`
		Port           string `mapstructure:"POSTGRES_PORT"`
		User           string `mapstructure:"POSTGRES_USER"`
		Password       string `mapstructure:"POSTGRES_PASSWORD"`
		Name           string `mapstructure:"POSTGRES_DB"`
		AutoMigrate    bool   `mapstructure:"DB_AUTO_MIGRATE"`
		MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
	} `mapstructure:",squash"`

	Mail struct {
		Host          string `mapstructure:"MAIL_HOST"`
		Port          int    `mapstructure:"MAIL_PORT"`
		User          string `mapstructure:"MAIL_USER"`
		Password      string `mapstructure:"MAIL_PASSWORD"`
		Sender        string `mapstructure:"MAIL_SENDER"`
		ActivationURL string `mapstructure:"ACTIVATION_URL"`
	} `mapstructure:",squash"`

	RabbitMQ struct {
		Host     string `mapstructure:"RABBITMQ_HOST"`
		Port     string `mapstructure:"RABBITMQ_PORT"`
		User     string `mapstructure:"RABBITMQ_USER"`
		Password string `mapstructure:"RABBITMQ_PASSWORD"`
	} `mapstructure:",squash"`

	RateLimit struct {
		Enabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
		RPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
		Burst   int     `mapstructure:"RATE_LIMIT_BURST"`
	} `mapstructure:",squash"`

	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	// EntityAPIURL points the entity pages at a remote companyblog API instead of the local services.
	EntityAPIURL string `mapstructure:"ENTITY_API_URL"`
}

var configDefaults = map[string]any{
	"PORT":               ":4000",
	"ENVIRONMENT":        "development",
	"VERSION":            "1.0.0",
	"POSTGRES_HOST":      "localhost",
	"POSTGRES_PORT":      "5432",
	"POSTGRES_USER":      "",
	"POSTGRES_PASSWORD":  "",
	"POSTGRES_DB":        "companyblog",
	"DB_AUTO_MIGRATE":    false,
	"MIGRATIONS_PATH":    "file://migrations",
	"MAIL_HOST":          "localhost",
	"MAIL_PORT":          25,
	"MAIL_USER":          "",
	"MAIL_PASSWORD":      "",
	"MAIL_SENDER":        "companyblog <no-reply@companyblog.local>",
	"ACTIVATION_URL":     "",
	"RABBITMQ_HOST":      "localhost",
	"RABBITMQ_PORT":      "5672",
	"RABBITMQ_USER":      "guest",
	"RABBITMQ_PASSWORD":  "guest",
	"RATE_LIMIT_ENABLED": true,
	"RATE_LIMIT_RPS":     2.0,
	"RATE_LIMIT_BURST":   4,
	"CACHE_TTL":          5 * time.Minute,
	"TLS_CERT_FILE":      "",
	"TLS_KEY_FILE":       "",
	"ENTITY_API_URL":     "",
}

// loadConfig reads the .env style file at path. A missing file is not an error;
// environment variables always take precedence over file values.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
