// Package entities defines the domain entities for the notes service.
package entities

import (
	"errors"
	"strings"
	"time"
)

// TimeLayout - формат временных меток в API: UTC, секунды, суффикс Z.
const TimeLayout = "2006-01-02T15:04:05Z"

// ErrEmptyTitle возвращается, когда заголовок пуст после удаления пробелов.
var ErrEmptyTitle = errors.New("title must be a non-empty string")

// Note представляет собой заметку.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotePatch описывает частичное обновление; nil-поля не меняются.
type NotePatch struct {
	Title   *string
	Content *string
}

// Empty сообщает, что обновление не содержит ни одного поля.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

// Apply применяет обновление к заметке и выставляет updated_at.
func (p NotePatch) Apply(note *Note, now time.Time) {
	if p.Title != nil {
		note.Title = *p.Title
	}
	if p.Content != nil {
		note.Content = *p.Content
	}
	note.UpdatedAt = now
}

// NewNote создает заметку с одинаковыми created_at и updated_at.
func NewNote(title, content string, now time.Time) *Note {
	return &Note{
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeTitle обрезает пробелы и проверяет, что заголовок не пуст.
func NormalizeTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrEmptyTitle
	}
	return trimmed, nil
}

// Truncate приводит время к UTC с точностью до секунды.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// FormatTime форматирует время так, как оно отдается клиенту.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime разбирает время в формате TimeLayout.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Matches сообщает, содержит ли заголовок или текст подстроку query без учета регистра.
// query должен быть уже приведен к нижнему регистру.
func (n *Note) Matches(lowerQuery string) bool {
	return strings.Contains(strings.ToLower(n.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(n.Content), lowerQuery)
}

// Clone возвращает копию заметки.
func (n *Note) Clone() *Note {
	c := *n
	return &c
}
