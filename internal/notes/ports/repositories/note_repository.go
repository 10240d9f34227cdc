// Package repositories defines repository interfaces for the notes service.
package repositories

import (
	"context"
	"time"

	"notesapi/internal/notes/domain/entities"
)

// NoteRepository - хранилище заметок. Отсутствие записи - не ошибка:
// GetByID и Update возвращают nil, nil, Delete возвращает false.
type NoteRepository interface {
	// Create присваивает заметке следующий id и сохраняет ее.
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)
	// List возвращает окно [offset, offset+limit) по возрастанию id и общее число заметок.
	List(ctx context.Context, limit, offset int) ([]*entities.Note, int, error)
	GetByID(ctx context.Context, id int64) (*entities.Note, error)
	// Update применяет patch и выставляет updated_at = now.
	Update(ctx context.Context, id int64, patch entities.NotePatch, now time.Time) (*entities.Note, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// Search ищет подстроку в title или content без учета регистра, по возрастанию id.
	Search(ctx context.Context, query string) ([]*entities.Note, error)
}
