// Package memory provides a process-local implementation of repositories.NoteRepository.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"notesapi/internal/notes/domain/entities"
	"notesapi/internal/notes/ports/repositories"
	"notesapi/pkg/logger"
)

var _ repositories.NoteRepository = (*NoteRepository)(nil)

// NoteRepository хранит заметки в map; счетчик id живет столько же, сколько процесс.
type NoteRepository struct {
	mu     sync.RWMutex
	nextID int64
	notes  map[int64]*entities.Note
}

// NewNoteRepository создает пустое хранилище.
func NewNoteRepository() *NoteRepository {
	return &NoteRepository{
		nextID: 1,
		notes:  make(map[int64]*entities.Note),
	}
}

// Create присваивает следующий id и сохраняет копию заметки.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := note.Clone()
	stored.ID = r.nextID
	r.nextID++
	r.notes[stored.ID] = stored

	logger.Log(ctx).Debug(ctx, "note stored in memory",
		zap.String("method", "memory.NoteRepository.Create"),
		zap.Int64("noteID", stored.ID))

	return stored.Clone(), nil
}

// List возвращает окно заметок по возрастанию id и общее количество.
func (r *NoteRepository) List(_ context.Context, limit, offset int) ([]*entities.Note, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := r.sortedLocked()
	total := len(ordered)

	if offset >= total {
		return []*entities.Note{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return ordered[offset:end], total, nil
}

// GetByID возвращает копию заметки или nil.
func (r *NoteRepository) GetByID(_ context.Context, id int64) (*entities.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[id]
	if !ok {
		return nil, nil
	}
	return note.Clone(), nil
}

// Update применяет patch под блокировкой записи.
func (r *NoteRepository) Update(_ context.Context, id int64, patch entities.NotePatch, now time.Time) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok {
		return nil, nil
	}

	patch.Apply(note, now)
	return note.Clone(), nil
}

// Delete удаляет заметку; id не переиспользуется.
func (r *NoteRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[id]; !ok {
		return false, nil
	}
	delete(r.notes, id)
	return true, nil
}

// Search перебирает все заметки по возрастанию id.
func (r *NoteRepository) Search(_ context.Context, query string) ([]*entities.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lowered := strings.ToLower(query)
	found := make([]*entities.Note, 0)
	for _, note := range r.sortedLocked() {
		if note.Matches(lowered) {
			found = append(found, note)
		}
	}
	return found, nil
}

// sortedLocked возвращает копии всех заметок по возрастанию id. Вызывается под блокировкой.
func (r *NoteRepository) sortedLocked() []*entities.Note {
	out := make([]*entities.Note, 0, len(r.notes))
	for _, note := range r.notes {
		out = append(out, note.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
