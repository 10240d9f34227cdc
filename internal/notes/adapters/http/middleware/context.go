// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// UserContextKey - ключ Locals, под которым лежит контекст запроса с logger и request id.
const UserContextKey = "userContext"

// RequestContext возвращает контекст запроса, сохраненный NewRequestIDMiddleware.
func RequestContext(ctx fiber.Ctx) context.Context {
	if userCtx, ok := ctx.Locals(UserContextKey).(context.Context); ok {
		return userCtx
	}
	return ctx.Context() // Запасной вариант
}
