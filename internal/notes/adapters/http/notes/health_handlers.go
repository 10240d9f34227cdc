package notes

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesapi/internal/notes/adapters/http/middleware"
	"notesapi/internal/notes/app/dto"
	"notesapi/pkg/logger"
)

// Статусы проверок работоспособности.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler отвечает на проверки работоспособности.
type HealthHandler struct {
	storage Pinger
}

// NewHealthHandler создает обработчик проверок.
func NewHealthHandler(storage Pinger) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Health всегда отвечает 200, пока процесс обслуживает запросы.
func (h *HealthHandler) Health(ctx fiber.Ctx) error {
	if err := ctx.JSON(dto.HealthResponse{Status: StatusOK}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// Ready проверяет хранилище; при ошибке отвечает 503.
func (h *HealthHandler) Ready(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)

	status, code := StatusOK, fiber.StatusOK
	if err := h.storage.Ping(userCtx); err != nil {
		logger.Log(userCtx).Warn(userCtx, "storage is not ready", zap.Error(err))
		status, code = StatusUnavailable, fiber.StatusServiceUnavailable
	}

	if err := ctx.Status(code).JSON(dto.HealthResponse{Status: status}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}
