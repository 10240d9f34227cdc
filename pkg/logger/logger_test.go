package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notesapi/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/level="+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)
			})
		}
	}

	t.Run("logging methods do not panic", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewRequestIDContext(context.Background(), "req-1")

		assert.NotPanics(t, func() {
			log.Debug(ctx, "debug message")
			log.Info(ctx, "info message", zap.Int("n", 1))
			log.Warn(ctx, "warn message")
			log.Error(ctx, "error message")
		})
	})

	t.Run("With returns new instance", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "info")
		require.NoError(t, err)

		child := log.With(zap.String("component", "test"))
		assert.NotSame(t, log, child)
	})
}

func TestFromContext(t *testing.T) {
	t.Run("logger present", func(t *testing.T) {
		testLogger := logger.NewNop()
		ctx := logger.NewContext(context.Background(), testLogger)

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, got)
	})

	t.Run("logger survives derived context", func(t *testing.T) {
		type key struct{}
		testLogger := logger.NewNop()
		ctx := context.WithValue(logger.NewContext(context.Background(), testLogger), key{}, "v")

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, got)
	})

	t.Run("no logger", func(t *testing.T) {
		got, err := logger.FromContext(context.Background())
		require.ErrorIs(t, err, logger.ErrLoggerNotFound)
		assert.Nil(t, got)
	})

	t.Run("foreign value under another key", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "not a logger")

		_, err := logger.FromContext(ctx)
		require.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})
}

func TestLog(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	t.Run("context logger wins over global", func(t *testing.T) {
		global := logger.NewNop()
		logger.SetGlobalLogger(global)

		fromCtx := logger.NewNop()
		ctx := logger.NewContext(context.Background(), fromCtx)

		assert.Same(t, fromCtx, logger.Log(ctx))
	})

	t.Run("global when context is empty", func(t *testing.T) {
		global := logger.NewNop()
		logger.SetGlobalLogger(global)

		assert.Same(t, global, logger.Log(context.Background()))
	})

	t.Run("fallback is a singleton", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		first := logger.Log(context.Background())
		second := logger.Log(context.Background())
		require.NotNil(t, first)
		assert.Same(t, first, second)
	})
}

func TestInitGlobalLoggerWithLevel(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Production, "info"))
	first := logger.Log(context.Background())

	require.NoError(t, logger.InitGlobalLogger(logger.Development))
	second := logger.Log(context.Background())

	assert.Same(t, first, second, "second init must keep the existing global logger")
}

func TestRequestID(t *testing.T) {
	t.Run("explicit id is kept", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "abc")

		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Equal(t, "abc", id)
	})

	t.Run("empty id is generated", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")

		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Len(t, id, 36)
	})

	t.Run("generated ids differ", func(t *testing.T) {
		assert.NotEqual(t, logger.GenerateRequestID(), logger.GenerateRequestID())
	})

	t.Run("WithRequestID", func(t *testing.T) {
		base := logger.NewNop()

		assert.Same(t, base, base.WithRequestID(context.Background()))

		ctx := logger.NewRequestIDContext(context.Background(), "req-2")
		assert.NotSame(t, base, base.WithRequestID(ctx))
	})
}
