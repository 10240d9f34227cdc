package config

import (
	"errors"
	"fmt"
	"strings"
)

// Driver - выбранное хранилище заметок.
type Driver string

// Поддерживаемые хранилища.
const (
	DriverMemory   Driver = "memory"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverRedis    Driver = "redis"
)

// ErrUnknownDriver возвращается для неподдерживаемого значения NOTES_STORAGE_DRIVER.
var ErrUnknownDriver = errors.New("unknown storage driver")

// StorageConfig выбирает хранилище.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"NOTES_STORAGE_DRIVER" env-default:"memory"`
}

// GetDriver возвращает нормализованное имя хранилища.
func (s *StorageConfig) GetDriver() Driver {
	return Driver(strings.ToLower(strings.TrimSpace(s.Driver)))
}

// Validate проверяет, что хранилище поддерживается.
func (s *StorageConfig) Validate() error {
	switch s.GetDriver() {
	case DriverMemory, DriverPostgres, DriverSQLite, DriverRedis:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, s.Driver)
	}
}
