// Package redis provides a Redis implementation of the note repository.
//
// Каждая заметка хранится хешем {prefix}:note:{id}; упорядоченное множество
// {prefix}:index (score = id) задает порядок и общее количество, а счетчик
// {prefix}:next_id выдает идентификаторы.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notesapi/internal/notes/domain/entities"
	"notesapi/internal/notes/ports/repositories"
	"notesapi/pkg/logger"
)

const (
	fieldTitle     = "title"
	fieldContent   = "content"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"

	maxUpdateRetries = 5
)

// ErrUpdateConflict возвращается, если заметку не удалось обновить из-за конкурентных изменений.
var ErrUpdateConflict = errors.New("note update conflicted with a concurrent write")

var _ repositories.NoteRepository = (*NoteRepository)(nil)

// NoteRepository хранит заметки в Redis.
type NoteRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewNoteRepository создает репозиторий; все ключи начинаются с prefix.
func NewNoteRepository(client redis.UniversalClient, prefix string) *NoteRepository {
	if prefix == "" {
		prefix = "notes"
	}
	return &NoteRepository{client: client, prefix: prefix}
}

func (r *NoteRepository) noteKey(id int64) string {
	return r.prefix + ":note:" + strconv.FormatInt(id, 10)
}

func (r *NoteRepository) indexKey() string {
	return r.prefix + ":index"
}

func (r *NoteRepository) counterKey() string {
	return r.prefix + ":next_id"
}

// Create выдает новый id и атомарно записывает хеш заметки и запись в индексе.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "redis.NoteRepository.Create"))

	id, err := r.client.Incr(ctx, r.counterKey()).Result()
	if err != nil {
		log.Error(ctx, "failed to allocate note id", zap.Error(err))
		return nil, fmt.Errorf("failed to allocate note id: %w", err)
	}

	stored := note.Clone()
	stored.ID = id

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.noteKey(id), toHash(stored))
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(id), Member: id})
		return nil
	})
	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.Int64("noteID", id))
	return stored, nil
}

// List получает страницу заметок по возрастанию id и общее количество.
func (r *NoteRepository) List(ctx context.Context, limit, offset int) ([]*entities.Note, int, error) {
	total, err := r.client.ZCard(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}
	if int64(offset) >= total {
		return []*entities.Note{}, int(total), nil
	}

	members, err := r.client.ZRange(ctx, r.indexKey(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}

	notes, err := r.load(ctx, members)
	if err != nil {
		return nil, 0, err
	}
	return notes, int(total), nil
}

// GetByID получает заметку по ID; nil, nil если ее нет.
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*entities.Note, error) {
	values, err := r.client.HGetAll(ctx, r.noteKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return fromHash(id, values)
}

// Update применяет обновление под WATCH, повторяя попытку при конфликте.
func (r *NoteRepository) Update(ctx context.Context, id int64, patch entities.NotePatch, now time.Time) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "redis.NoteRepository.Update"), zap.Int64("noteID", id))
	key := r.noteKey(id)

	var updated *entities.Note
	txf := func(tx *redis.Tx) error {
		values, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(values) == 0 {
			updated = nil
			return nil
		}

		note, err := fromHash(id, values)
		if err != nil {
			return err
		}
		patch.Apply(note, now)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, toHash(note))
			return nil
		})
		if err == nil {
			updated = note
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			log.Error(ctx, "failed to update note", zap.Error(err))
			return nil, fmt.Errorf("failed to update note: %w", err)
		}
		log.Debug(ctx, "optimistic lock failed, retrying", zap.Int("attempt", attempt+1))
	}

	return nil, ErrUpdateConflict
}

// Delete удаляет хеш и запись индекса; true, если заметка существовала.
func (r *NoteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.noteKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}
	return del.Val() > 0, nil
}

// Search просматривает все заметки по порядку id.
func (r *NoteRepository) Search(ctx context.Context, query string) ([]*entities.Note, error) {
	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	notes, err := r.load(ctx, members)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(query)
	matched := make([]*entities.Note, 0)
	for _, note := range notes {
		if note.Matches(lower) {
			matched = append(matched, note)
		}
	}
	return matched, nil
}

// load читает хеши заметок одним конвейером, пропуская удаленные между чтениями.
func (r *NoteRepository) load(ctx context.Context, members []string) ([]*entities.Note, error) {
	notes := make([]*entities.Note, 0, len(members))
	if len(members) == 0 {
		return notes, nil
	}

	ids := make([]int64, len(members))
	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, member := range members {
			id, err := strconv.ParseInt(member, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid index member %q: %w", member, err)
			}
			ids[i] = id
			cmds[i] = pipe.HGetAll(ctx, r.noteKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	for i, cmd := range cmds {
		values := cmd.Val()
		if len(values) == 0 {
			continue
		}
		note, err := fromHash(ids[i], values)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func toHash(note *entities.Note) map[string]any {
	return map[string]any{
		fieldTitle:     note.Title,
		fieldContent:   note.Content,
		fieldCreatedAt: entities.FormatTime(note.CreatedAt),
		fieldUpdatedAt: entities.FormatTime(note.UpdatedAt),
	}
}

func fromHash(id int64, values map[string]string) (*entities.Note, error) {
	created, err := entities.ParseTime(values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("note %d: invalid created_at: %w", id, err)
	}
	updated, err := entities.ParseTime(values[fieldUpdatedAt])
	if err != nil {
		return nil, fmt.Errorf("note %d: invalid updated_at: %w", id, err)
	}

	return &entities.Note{
		ID:        id,
		Title:     values[fieldTitle],
		Content:   values[fieldContent],
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
