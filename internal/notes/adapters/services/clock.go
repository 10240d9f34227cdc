// Package services provides implementations of service interfaces.
package services

import (
	"time"

	"notesapi/internal/notes/ports/services"
)

var _ services.Clock = SystemClock{}

// SystemClock возвращает реальное время.
type SystemClock struct{}

// Now реализует services.Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock всегда возвращает одно и то же время, пока его не сдвинут.
type FixedClock struct {
	T time.Time
}

// Now реализует services.Clock.
func (c *FixedClock) Now() time.Time {
	return c.T
}

// Advance сдвигает время вперед.
func (c *FixedClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
