package services

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"

	"notesapi/internal/notes/ports/services"
	"notesapi/pkg/logger"
)

const (
	methodVerifyKey  = "StaticKeyVerifier.Verify"
	msgKeyMissing    = "api key header missing"
	msgKeyMismatch   = "api key mismatch"
	msgKeyAccepted   = "api key accepted"
	attrPresentedLen = "presented_len"
)

var _ services.KeyVerifier = (*StaticKeyVerifier)(nil)

// StaticKeyVerifier сравнивает ключ с заданным секретом за постоянное время.
type StaticKeyVerifier struct {
	secret []byte
}

// NewStaticKeyVerifier создает проверку ключа. Пустой secret отключает проверку.
func NewStaticKeyVerifier(secret string) *StaticKeyVerifier {
	return &StaticKeyVerifier{secret: []byte(secret)}
}

// Enabled реализует services.KeyVerifier.
func (v *StaticKeyVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify реализует services.KeyVerifier.
func (v *StaticKeyVerifier) Verify(ctx context.Context, presented string) error {
	if !v.Enabled() {
		return nil
	}

	log := logger.Log(ctx).With(zap.String("method", methodVerifyKey))

	if presented == "" {
		log.Debug(ctx, msgKeyMissing)
		return services.ErrMissingAPIKey
	}

	if subtle.ConstantTimeCompare([]byte(presented), v.secret) != 1 {
		log.Debug(ctx, msgKeyMismatch, zap.Int(attrPresentedLen, len(presented)))
		return services.ErrInvalidAPIKey
	}

	log.Debug(ctx, msgKeyAccepted)
	return nil
}
