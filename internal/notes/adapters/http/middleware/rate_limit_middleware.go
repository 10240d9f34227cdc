package middleware

import (
	"github.com/gofiber/fiber/v3"
	"golang.org/x/time/rate"

	"notesapi/internal/notes/adapters/http/apperr"
	"notesapi/pkg/logger"
)

const defaultBurst = 1

// NewRateLimitMiddleware ограничивает общее число запросов в секунду (rps) с допустимым всплеском burst.
func NewRateLimitMiddleware(rps float64, burst int) fiber.Handler {
	if burst <= 0 {
		burst = defaultBurst
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(ctx fiber.Ctx) error {
		if !limiter.Allow() {
			requestCtx := RequestContext(ctx)
			logger.Log(requestCtx).Warn(requestCtx, "rate limit exceeded")
			return apperr.RateLimited()
		}
		return ctx.Next()
	}
}
