package db_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesapi/internal/notes/config"
	"notesapi/internal/notes/db"
	"notesapi/internal/notes/domain/entities"
	"notesapi/pkg/logger"
)

func testContext() context.Context {
	return logger.NewContext(context.Background(), logger.NewNop())
}

func roundTrip(t *testing.T, store *db.DB) {
	t.Helper()
	ctx := testContext()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Ping(ctx))

	repo := store.NoteRepository()
	created, err := repo.Create(ctx, entities.NewNote("hello", "world", now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestNew_Memory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "memory"}}

	store, err := db.New(testContext(), cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close(testContext())) }()

	assert.Equal(t, config.DriverMemory, store.Driver())
	roundTrip(t, store)
}

func TestNew_Redis(t *testing.T) {
	srv := miniredis.RunT(t)
	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "redis"},
		Redis: config.RedisConfig{
			Host:      srv.Host(),
			Port:      port,
			PoolSize:  2,
			Timeout:   time.Second,
			KeyPrefix: "it",
		},
	}

	store, err := db.New(testContext(), cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close(testContext())) }()

	assert.Equal(t, config.DriverRedis, store.Driver())
	roundTrip(t, store)
	assert.True(t, srv.Exists("it:note:1"))
}

func TestNew_SQLite(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "sqlite"},
		SQLite: config.SQLiteConfig{
			Path:        filepath.Join(t.TempDir(), "notes.db"),
			BusyTimeout: time.Second,
		},
	}

	store, err := db.New(testContext(), cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close(testContext())) }()

	assert.Equal(t, config.DriverSQLite, store.Driver())
	roundTrip(t, store)
}

func TestNew_RedisUnavailable(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)
	srv.Close()

	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "redis"},
		Redis:   config.RedisConfig{Host: "127.0.0.1", Port: port, Timeout: 200 * time.Millisecond},
	}

	store, err := db.New(testContext(), cfg)
	require.Error(t, err)
	assert.Nil(t, store)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "mongo"}}

	store, err := db.New(testContext(), cfg)
	require.ErrorIs(t, err, config.ErrUnknownDriver)
	assert.Nil(t, store)
}
