package middleware

import (
	"github.com/gofiber/fiber/v3"

	"notesapi/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// NewRequestIDMiddleware берет X-Request-ID из запроса или генерирует новый,
// кладет его и logger в контекст запроса и возвращает в ответе.
func NewRequestIDMiddleware(log *logger.Logger) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestID := ctx.Get(HeaderRequestID)
		if len(requestID) > maxRequestIDLength {
			requestID = ""
		}

		requestCtx := logger.NewRequestIDContext(ctx.Context(), requestID)
		requestCtx = logger.NewContext(requestCtx, log)
		id, _ := logger.GetRequestID(requestCtx)

		ctx.Locals(UserContextKey, requestCtx)
		ctx.Set(HeaderRequestID, id)

		return ctx.Next()
	}
}
