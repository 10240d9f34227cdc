package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesapi/internal/notes/adapters/http/apperr"
	"notesapi/internal/notes/adapters/http/middleware"
	"notesapi/internal/notes/adapters/services"
	"notesapi/pkg/logger"
)

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	for _, h := range handlers {
		app.Use(h)
	}
	app.Get("/ok", func(ctx fiber.Ctx) error {
		return ctx.SendString("ok")
	})
	app.Get("/healthz", func(ctx fiber.Ctx) error {
		return ctx.SendString("healthy")
	})
	app.Get("/panic", func(_ fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/request-id", func(ctx fiber.Ctx) error {
		id, _ := logger.GetRequestID(middleware.RequestContext(ctx))
		return ctx.SendString(id)
	})
	return app
}

func decodeError(t *testing.T, resp *http.Response) apperr.Detail {
	t.Helper()
	defer resp.Body.Close()
	var body apperr.Body
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestRequestIDMiddleware(t *testing.T) {
	app := newApp(middleware.NewRequestIDMiddleware(logger.NewNop()))

	t.Run("echoes incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/request-id", nil)
		req.Header.Set(middleware.HeaderRequestID, "abc-123")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "abc-123", resp.Header.Get(middleware.HeaderRequestID))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", string(body))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/request-id", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		id := resp.Header.Get(middleware.HeaderRequestID)
		assert.Len(t, id, 36)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	app := newApp(
		middleware.NewRequestIDMiddleware(logger.NewNop()),
		middleware.NewLoggerMiddleware(),
		middleware.NewRecoveryMiddleware(),
	)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	detail := decodeError(t, resp)
	assert.Equal(t, apperr.CodeInternal, detail.Code)
	assert.Equal(t, apperr.MsgInternal, detail.Message)
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		path   string
		key    string
		status int
	}{
		{name: "disabled lets everything through", secret: "", path: "/ok", status: http.StatusOK},
		{name: "missing key", secret: "s3cret", path: "/ok", status: http.StatusUnauthorized},
		{name: "wrong key", secret: "s3cret", path: "/ok", key: "nope", status: http.StatusUnauthorized},
		{name: "right key", secret: "s3cret", path: "/ok", key: "s3cret", status: http.StatusOK},
		{name: "exempt path", secret: "s3cret", path: "/healthz", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(middleware.NewAPIKeyMiddleware(services.NewStaticKeyVerifier(tt.secret), "/healthz"))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(middleware.HeaderAPIKey, tt.key)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, apperr.CodeUnauthorized, decodeError(t, resp).Code)
			} else {
				_ = resp.Body.Close()
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	// Скорость мала настолько, что за время теста токены не восстанавливаются.
	app := newApp(middleware.NewRateLimitMiddleware(0.001, 2))

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, apperr.CodeRateLimited, decodeError(t, resp).Code)
}
