package config

import "time"

// SQLiteConfig содержит настройки файловой базы SQLite.
type SQLiteConfig struct {
	Path        string        `yaml:"path" env:"NOTES_SQLITE_PATH" env-default:"notes.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"NOTES_SQLITE_BUSY_TIMEOUT" env-default:"5s"`
}
