// Package app implements application business logic for the notes service.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notesapi/internal/notes/domain/entities"
	"notesapi/internal/notes/ports/repositories"
	"notesapi/internal/notes/ports/services"
	"notesapi/pkg/logger"
)

// Параметры пагинации.
const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 100
)

// Ошибки уровня бизнес-логики.
var (
	ErrNotFound       = errors.New("note not found")
	ErrValidation     = errors.New("validation error")
	ErrInvalidRequest = errors.New("invalid request")
)

// Сообщения об ошибках валидации.
const (
	MsgLimitOutOfRange = "limit must be between 1 and 100"
	MsgOffsetNegative  = "offset must be greater than or equal to 0"
	MsgQueryRequired   = "q must be a non-empty string"
	MsgNoUpdateFields  = "at least one of title or content must be provided"
)

// Константы для логирования и контекста ошибок.
const (
	errCtxCreateNote    = "failed to create note"
	errCtxListNotes     = "failed to list notes"
	errCtxSearchNotes   = "failed to search notes"
	errCtxGetNote       = "failed to get note"
	errCtxUpdateNote    = "failed to update note"
	errCtxDeleteNote    = "failed to delete note"
	msgNoteCreated      = "note created"
	msgNoteUpdated      = "note updated"
	msgNoteDeleted      = "note deleted"
	msgValidationFailed = "validation failed"
)

// ValidationError описывает первое нарушенное правило валидации поля.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError создает ошибку валидации поля.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap позволяет сравнивать с ErrValidation через errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError указывает, какой id не найден.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("note %d not found", e.ID)
}

// Unwrap позволяет сравнивать с ErrNotFound через errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NotesPage - страница заметок вместе с параметрами окна.
type NotesPage struct {
	Items  []*entities.Note
	Total  int
	Limit  int
	Offset int
}

// NoteUseCase представляет собой бизнес-логику работы с заметками.
type NoteUseCase struct {
	noteRepo repositories.NoteRepository
	clock    services.Clock
}

// NewNoteUseCase создает новый экземпляр NoteUseCase.
func NewNoteUseCase(noteRepo repositories.NoteRepository, clock services.Clock) *NoteUseCase {
	return &NoteUseCase{
		noteRepo: noteRepo,
		clock:    clock,
	}
}

func (uc *NoteUseCase) now() time.Time {
	return entities.Truncate(uc.clock.Now())
}

// CreateNote создает заметку. Заголовок сохраняется без окружающих пробелов.
func (uc *NoteUseCase) CreateNote(ctx context.Context, title, content string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteUseCase.CreateNote"))

	normalized, err := entities.NormalizeTitle(title)
	if err != nil {
		log.Debug(ctx, msgValidationFailed, zap.String("field", "title"))
		return nil, NewValidationError("title", err.Error())
	}

	note, err := uc.noteRepo.Create(ctx, entities.NewNote(normalized, content, uc.now()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxCreateNote, err)
	}

	log.Info(ctx, msgNoteCreated, zap.Int64("note_id", note.ID))
	return note, nil
}

// ListNotes возвращает страницу заметок по возрастанию id.
func (uc *NoteUseCase) ListNotes(ctx context.Context, limit, offset int) (*NotesPage, error) {
	if limit < MinLimit || limit > MaxLimit {
		return nil, NewValidationError("limit", MsgLimitOutOfRange)
	}
	if offset < 0 {
		return nil, NewValidationError("offset", MsgOffsetNegative)
	}

	notes, total, err := uc.noteRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxListNotes, err)
	}

	return &NotesPage{
		Items:  notes,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// SearchNotes ищет заметки, где title или content содержит query без учета регистра.
func (uc *NoteUseCase) SearchNotes(ctx context.Context, query string) ([]*entities.Note, error) {
	if query == "" {
		return nil, NewValidationError("q", MsgQueryRequired)
	}

	notes, err := uc.noteRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxSearchNotes, err)
	}

	return notes, nil
}

// GetNote возвращает заметку по ID.
func (uc *NoteUseCase) GetNote(ctx context.Context, id int64) (*entities.Note, error) {
	note, err := uc.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxGetNote, err)
	}
	if note == nil {
		return nil, &NotFoundError{ID: id}
	}

	return note, nil
}

// UpdateNote применяет частичное обновление. updated_at обновляется при любом
// успешном вызове, даже если значения не изменились.
func (uc *NoteUseCase) UpdateNote(ctx context.Context, id int64, patch entities.NotePatch) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteUseCase.UpdateNote"), zap.Int64("note_id", id))

	if patch.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, MsgNoUpdateFields)
	}

	if patch.Title != nil {
		normalized, err := entities.NormalizeTitle(*patch.Title)
		if err != nil {
			log.Debug(ctx, msgValidationFailed, zap.String("field", "title"))
			return nil, NewValidationError("title", err.Error())
		}
		patch.Title = &normalized
	}

	note, err := uc.noteRepo.Update(ctx, id, patch, uc.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxUpdateNote, err)
	}
	if note == nil {
		return nil, &NotFoundError{ID: id}
	}

	log.Info(ctx, msgNoteUpdated)
	return note, nil
}

// DeleteNote удаляет заметку.
func (uc *NoteUseCase) DeleteNote(ctx context.Context, id int64) error {
	deleted, err := uc.noteRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtxDeleteNote, err)
	}
	if !deleted {
		return &NotFoundError{ID: id}
	}

	logger.Log(ctx).Info(ctx, msgNoteDeleted, zap.Int64("note_id", id))
	return nil
}
