// Package services defines service interfaces for the notes service.
package services

import (
	"context"
	"errors"
	"time"
)

// Clock отдает текущее время; подменяется в тестах.
type Clock interface {
	Now() time.Time
}

// KeyVerifier проверяет статический API-ключ из заголовка запроса.
type KeyVerifier interface {
	// Enabled сообщает, настроен ли ключ вообще.
	Enabled() bool
	Verify(ctx context.Context, presented string) error
}

// Ошибки проверки ключа.
var (
	ErrMissingAPIKey = errors.New("missing API key")
	ErrInvalidAPIKey = errors.New("invalid API key")
)
