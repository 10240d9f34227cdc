package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesapi/pkg/db/sqlite"
)

func TestDSN(t *testing.T) {
	dsn := sqlite.DSN("notes.db", 5*time.Second)

	assert.Equal(t, "file:notes.db?_pragma=busy_timeout%285000%29&_pragma=foreign_keys%281%29", dsn)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")

	db, err := sqlite.Open(ctx, path, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var one int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
