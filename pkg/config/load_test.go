package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesapi/pkg/config"
)

type sampleConfig struct {
	Name  string `env:"PKGCFG_TEST_NAME" env-default:"default-name"`
	Count int    `env:"PKGCFG_TEST_COUNT" env-default:"3"`
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults without env file", func(t *testing.T) {
		cfg, err := config.Load[sampleConfig](ctx, "test", filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "default-name", cfg.Name)
		assert.Equal(t, 3, cfg.Count)
	})

	t.Run("values from env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PKGCFG_TEST_NAME=from-file\nPKGCFG_TEST_COUNT=7\n"), 0o600))
		t.Cleanup(func() {
			_ = os.Unsetenv("PKGCFG_TEST_NAME")
			_ = os.Unsetenv("PKGCFG_TEST_COUNT")
		})

		cfg, err := config.Load[sampleConfig](ctx, "test", path)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Name)
		assert.Equal(t, 7, cfg.Count)
	})

	t.Run("process env wins over env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PKGCFG_TEST_NAME=from-file\n"), 0o600))
		t.Setenv("PKGCFG_TEST_NAME", "from-env")

		cfg, err := config.Load[sampleConfig](ctx, "test", path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Name)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("PKGCFG_TEST_COUNT", "not-a-number")

		cfg, err := config.Load[sampleConfig](ctx, "test", "")
		require.Error(t, err)
		assert.Nil(t, cfg)
	})
}
