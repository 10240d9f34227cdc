// Package apperr приводит все ошибки HTTP-слоя к единому JSON-конверту
// {"error": {"code": ..., "message": ...}}.
package apperr

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesapi/internal/notes/app"
	"notesapi/pkg/logger"
)

// Коды ошибок в конверте.
const (
	CodeValidation     = "validation_error"
	CodeNotFound       = "not_found"
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal_error"
	CodeHTTP           = "http_error"
)

// Сообщения по умолчанию.
const (
	MsgUnauthorized = "missing or invalid API key"
	MsgRateLimited  = "too many requests"
	MsgInternal     = "internal server error"

	logUnhandledError = "unhandled error"
	logSendFailed     = "failed to send error response"
)

// Error - ошибка с HTTP-статусом и кодом для конверта.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Body - тело ответа с ошибкой.
type Body struct {
	Error Detail `json:"error"`
}

// Detail - содержимое конверта.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validation создает ошибку 422.
func Validation(message string) *Error {
	return &Error{Status: fiber.StatusUnprocessableEntity, Code: CodeValidation, Message: message}
}

// NotFound создает ошибку 404.
func NotFound(message string) *Error {
	return &Error{Status: fiber.StatusNotFound, Code: CodeNotFound, Message: message}
}

// InvalidRequest создает ошибку 400.
func InvalidRequest(message string) *Error {
	return &Error{Status: fiber.StatusBadRequest, Code: CodeInvalidRequest, Message: message}
}

// Unauthorized создает ошибку 401.
func Unauthorized() *Error {
	return &Error{Status: fiber.StatusUnauthorized, Code: CodeUnauthorized, Message: MsgUnauthorized}
}

// RateLimited создает ошибку 429.
func RateLimited() *Error {
	return &Error{Status: fiber.StatusTooManyRequests, Code: CodeRateLimited, Message: MsgRateLimited}
}

// Internal создает ошибку 500 с общим сообщением.
func Internal() *Error {
	return &Error{Status: fiber.StatusInternalServerError, Code: CodeInternal, Message: MsgInternal}
}

// From сопоставляет ошибку бизнес-логики или фреймворка с ответом.
// Неизвестные ошибки превращаются в 500 без деталей.
func From(err error) *Error {
	var (
		appErr        *Error
		validationErr *app.ValidationError
		notFoundErr   *app.NotFoundError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &validationErr):
		return Validation(validationErr.Message)
	case errors.As(err, &notFoundErr):
		return NotFound(notFoundErr.Error())
	case errors.Is(err, app.ErrInvalidRequest):
		return InvalidRequest(err.Error())
	case errors.As(err, &fiberErr):
		return &Error{Status: fiberErr.Code, Code: CodeHTTP, Message: fiberErr.Message}
	default:
		return Internal()
	}
}

// Handler - обработчик ошибок для fiber.Config.ErrorHandler.
func Handler(ctx fiber.Ctx, err error) error {
	requestCtx, ok := ctx.Locals("userContext").(context.Context)
	if !ok {
		requestCtx = ctx.Context()
	}
	log := logger.Log(requestCtx)

	mapped := From(err)
	if mapped.Status >= fiber.StatusInternalServerError {
		log.Error(requestCtx, logUnhandledError, zap.Error(err), zap.String("path", ctx.Path()))
	}

	if sendErr := ctx.Status(mapped.Status).JSON(Body{
		Error: Detail{Code: mapped.Code, Message: mapped.Message},
	}); sendErr != nil {
		log.Error(requestCtx, logSendFailed, zap.Error(sendErr))
		return fmt.Errorf("%s: %w", logSendFailed, sendErr)
	}
	return nil
}
