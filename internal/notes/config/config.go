// Package config описывает конфигурацию сервиса заметок.
package config

import (
	"context"
	"os"

	pkgconfig "notesapi/pkg/config"
)

const (
	serviceName    = "notes"
	envFileVar     = "NOTES_ENV_FILE"
	defaultEnvFile = ".env"
)

// Config - корневая конфигурация сервиса заметок.
type Config struct {
	HTTP       HTTPConfig
	Storage    StorageConfig
	Postgres   PostgresConfig
	Migrations MigrationsConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Shutdown   ShutdownConfig
}

// Load загружает конфигурацию из окружения и файла NOTES_ENV_FILE (по умолчанию .env).
func Load(ctx context.Context) (*Config, error) {
	envFile, ok := os.LookupEnv(envFileVar)
	if !ok {
		envFile = defaultEnvFile
	}

	cfg, err := pkgconfig.Load[Config](ctx, serviceName, envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые cleanenv не может проверить сам.
func (c *Config) Validate() error {
	return c.Storage.Validate()
}
