// Package sqlite открывает файловую базу SQLite через database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver" // регистрирует драйвер "sqlite3"
	_ "github.com/ncruces/go-sqlite3/embed"  // встроенная сборка SQLite
	"go.uber.org/zap"

	"notesapi/pkg/logger"
)

// DriverName - имя драйвера database/sql.
const DriverName = "sqlite3"

// Константы для сообщений logger.
const (
	LogOpening = "opening SQLite database"
	LogOpened  = "SQLite database ready"

	ErrOpen = "failed to open SQLite database"
	ErrPing = "failed to ping SQLite database"
)

// DSN собирает строку подключения с busy_timeout и внешними ключами.
func DSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + path + "?" + q.Encode()
}

// Open открывает базу по пути path. Одно соединение на запись исключает SQLITE_BUSY внутри процесса.
func Open(ctx context.Context, path string, busyTimeout time.Duration) (*sql.DB, error) {
	log := logger.Log(ctx).With(zap.String("path", path))
	log.Info(ctx, LogOpening)

	db, err := sql.Open(DriverName, DSN(path, busyTimeout))
	if err != nil {
		log.Error(ctx, ErrOpen, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrOpen, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		log.Error(ctx, ErrPing, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPing, err)
	}

	log.Info(ctx, LogOpened)
	return db, nil
}
