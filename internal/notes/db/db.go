// Package db открывает выбранное хранилище заметок и отдает репозиторий поверх него.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"notesapi/internal/notes/adapters/memory"
	pgadapter "notesapi/internal/notes/adapters/postgres"
	redisadapter "notesapi/internal/notes/adapters/redis"
	sqliteadapter "notesapi/internal/notes/adapters/sqlite"
	"notesapi/internal/notes/config"
	"notesapi/internal/notes/ports/repositories"
	"notesapi/pkg/db/postgres"
	"notesapi/pkg/db/redis"
	"notesapi/pkg/db/sqlite"
	"notesapi/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogDBInitializing    = "initializing notes storage"
	LogDBInitialized     = "notes storage initialized successfully"
	LogMigrationStarting = "starting database migrations for notes service"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations      = "failed to apply notes database migrations"
	ErrDBConnection      = "failed to connect to notes storage"
	ErrDBSchema          = "failed to prepare notes schema"
	ErrDBCheckConnection = "error checking the storage connection"
)

// DB представляет открытое хранилище заметок.
type DB struct {
	driver config.Driver
	repo   repositories.NoteRepository
	ping   func(ctx context.Context) error
	close  func(ctx context.Context) error
}

// New открывает хранилище, указанное в cfg.Storage; для Postgres сначала применяются миграции.
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	driver := cfg.Storage.GetDriver()
	log := logger.Log(ctx).With(zap.String("driver", string(driver)))
	log.Info(ctx, LogDBInitializing)

	var (
		db  *DB
		err error
	)
	switch driver {
	case config.DriverMemory:
		db = newMemory()
	case config.DriverPostgres:
		db, err = newPostgres(ctx, &cfg.Postgres, &cfg.Migrations)
	case config.DriverSQLite:
		db, err = newSQLite(ctx, &cfg.SQLite)
	case config.DriverRedis:
		db, err = newRedis(ctx, &cfg.Redis)
	default:
		err = fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Storage.Driver)
	}
	if err != nil {
		log.Error(ctx, ErrDBConnection, zap.Error(err))
		return nil, err
	}

	db.driver = driver
	log.Info(ctx, LogDBInitialized)
	return db, nil
}

func newMemory() *DB {
	return &DB{
		repo:  memory.NewNoteRepository(),
		ping:  func(context.Context) error { return nil },
		close: func(context.Context) error { return nil },
	}
}

func newPostgres(ctx context.Context, cfg *config.PostgresConfig, migrations *config.MigrationsConfig) (*DB, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrations.SourceURL()))

	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrations.SourceURL()); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	database, err := postgres.New(ctx, cfg.GetDSN(), postgres.Options{
		MinConns: cfg.MinConn,
		MaxConns: cfg.MaxConn,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	return &DB{
		repo: pgadapter.NewRepositoryFactory(database.Pool()).NoteRepository(),
		ping: database.Ping,
		close: func(ctx context.Context) error {
			database.Close(ctx)
			return nil
		},
	}, nil
}

func newSQLite(ctx context.Context, cfg *config.SQLiteConfig) (*DB, error) {
	conn, err := sqlite.Open(ctx, cfg.Path, cfg.BusyTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}
	return fromSQL(ctx, conn)
}

func fromSQL(ctx context.Context, conn *sql.DB) (*DB, error) {
	if err := sqliteadapter.EnsureSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", ErrDBSchema, err)
	}

	return &DB{
		repo:  sqliteadapter.NewNoteRepository(conn),
		ping:  conn.PingContext,
		close: func(context.Context) error { return conn.Close() },
	}, nil
}

func newRedis(ctx context.Context, cfg *config.RedisConfig) (*DB, error) {
	client, err := redis.NewClient(ctx, cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	return &DB{
		repo:  redisadapter.NewNoteRepository(client.RawClient(), cfg.KeyPrefix),
		ping:  client.Ping,
		close: client.Close,
	}, nil
}

// Driver возвращает имя открытого хранилища.
func (db *DB) Driver() config.Driver {
	return db.driver
}

// NoteRepository возвращает репозиторий заметок.
func (db *DB) NoteRepository() repositories.NoteRepository {
	return db.repo
}

// Ping проверяет соединение с хранилищем.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDBCheckConnection, err)
	}
	return nil
}

// Close закрывает соединение с хранилищем.
func (db *DB) Close(ctx context.Context) error {
	return db.close(ctx)
}
