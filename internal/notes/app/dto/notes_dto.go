// Package dto содержит JSON-формы запросов и ответов API заметок.
package dto

import (
	"notesapi/internal/notes/domain/entities"
)

// CreateNoteRequest содержит данные для создания заметки.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PatchNoteRequest содержит данные для частичного обновления заметки.
type PatchNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ToPatch преобразует запрос в доменное обновление.
func (r *PatchNoteRequest) ToPatch() entities.NotePatch {
	return entities.NotePatch{Title: r.Title, Content: r.Content}
}

// NoteResponse представляет заметку в ответе.
type NoteResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListNotesResponse содержит страницу заметок и информацию о пагинации.
type ListNotesResponse struct {
	Items  []NoteResponse `json:"items"`
	Count  int            `json:"count"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// HealthResponse - ответ проверки работоспособности.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewNoteResponse форматирует заметку для клиента.
func NewNoteResponse(note *entities.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: entities.FormatTime(note.CreatedAt),
		UpdatedAt: entities.FormatTime(note.UpdatedAt),
	}
}

// NewNoteResponses форматирует список заметок; пустой список остается массивом.
func NewNoteResponses(notes []*entities.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, NewNoteResponse(note))
	}
	return out
}

// NewListNotesResponse собирает ответ для страницы заметок.
func NewListNotesResponse(notes []*entities.Note, total, limit, offset int) ListNotesResponse {
	items := NewNoteResponses(notes)
	return ListNotesResponse{
		Items:  items,
		Count:  len(items),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
}
