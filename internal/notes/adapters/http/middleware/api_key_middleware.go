package middleware

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesapi/internal/notes/adapters/http/apperr"
	"notesapi/internal/notes/ports/services"
	"notesapi/pkg/logger"
)

// HeaderAPIKey - заголовок со статическим ключом.
const HeaderAPIKey = "X-API-Key"

// NewAPIKeyMiddleware проверяет X-API-Key, если ключ настроен. Пути из exempt не проверяются.
func NewAPIKeyMiddleware(verifier services.KeyVerifier, exempt ...string) fiber.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, path := range exempt {
		skip[path] = struct{}{}
	}

	return func(ctx fiber.Ctx) error {
		if !verifier.Enabled() {
			return ctx.Next()
		}
		if _, ok := skip[ctx.Path()]; ok {
			return ctx.Next()
		}

		requestCtx := RequestContext(ctx)
		if err := verifier.Verify(requestCtx, ctx.Get(HeaderAPIKey)); err != nil {
			logger.Log(requestCtx).Debug(requestCtx, "api key rejected", zap.Error(err))
			return apperr.Unauthorized()
		}

		return ctx.Next()
	}
}
