// Package postgres provides PostgreSQL implementations of repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"notesapi/internal/notes/domain/entities"
	"notesapi/internal/notes/ports/repositories"
	"notesapi/pkg/logger"
)

// DBPool - подмножество pgxpool.Pool, которое нужно репозиторию; его же реализует pgxmock.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	queryInsert = `INSERT INTO notes (title, content, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	queryCount  = `SELECT COUNT(*) FROM notes`
	queryList   = `SELECT id, title, content, created_at, updated_at FROM notes ORDER BY id ASC LIMIT $1 OFFSET $2`
	queryGet    = `SELECT id, title, content, created_at, updated_at FROM notes WHERE id = $1`
	queryUpdate = `UPDATE notes SET title = COALESCE($1, title), content = COALESCE($2, content), updated_at = $3 ` +
		`WHERE id = $4 RETURNING id, title, content, created_at, updated_at`
	queryDelete = `DELETE FROM notes WHERE id = $1`
	querySearch = `SELECT id, title, content, created_at, updated_at FROM notes ` +
		`WHERE POSITION(LOWER($1) IN LOWER(title)) > 0 OR POSITION(LOWER($1) IN LOWER(content)) > 0 ORDER BY id ASC`
)

var _ repositories.NoteRepository = (*NoteRepository)(nil)

// NoteRepository реализует интерфейс repositories.NoteRepository поверх таблицы notes.
type NoteRepository struct {
	pool DBPool
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool DBPool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create сохраняет новую заметку в БД; id назначает последовательность.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, "creating new note")

	stored := note.Clone()
	err := r.pool.QueryRow(ctx, queryInsert,
		note.Title, note.Content, note.CreatedAt, note.UpdatedAt,
	).Scan(&stored.ID)
	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.Int64("noteID", stored.ID))
	return stored, nil
}

// List получает страницу заметок и общее количество.
func (r *NoteRepository) List(ctx context.Context, limit, offset int) ([]*entities.Note, int, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.List"))
	log.Debug(ctx, "listing notes", zap.Int("limit", limit), zap.Int("offset", offset))

	var total int
	if err := r.pool.QueryRow(ctx, queryCount).Scan(&total); err != nil {
		log.Error(ctx, "failed to count notes", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	rows, err := r.pool.Query(ctx, queryList, limit, offset)
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}

	notes, err := collectNotes(rows)
	if err != nil {
		log.Error(ctx, "failed to read notes", zap.Error(err))
		return nil, 0, err
	}

	return notes, total, nil
}

// GetByID получает заметку по ID; nil, nil если ее нет.
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.GetByID"))
	log.Debug(ctx, "getting note", zap.Int64("noteID", id))

	note, err := scanNote(r.pool.QueryRow(ctx, queryGet, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found", zap.Int64("noteID", id))
			return nil, nil
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// Update обновляет переданные поля одним запросом.
func (r *NoteRepository) Update(ctx context.Context, id int64, patch entities.NotePatch, now time.Time) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Update"))
	log.Debug(ctx, "updating note", zap.Int64("noteID", id))

	note, err := scanNote(r.pool.QueryRow(ctx, queryUpdate, patch.Title, patch.Content, now, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found", zap.Int64("noteID", id))
			return nil, nil
		}
		log.Error(ctx, "failed to update note", zap.Error(err))
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return note, nil
}

// Delete удаляет заметку и сообщает, существовала ли она.
func (r *NoteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Delete"))
	log.Debug(ctx, "deleting note", zap.Int64("noteID", id))

	result, err := r.pool.Exec(ctx, queryDelete, id)
	if err != nil {
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return false, fmt.Errorf("failed to delete note: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Search ищет подстроку без учета регистра по title и content.
func (r *NoteRepository) Search(ctx context.Context, query string) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Search"))
	log.Debug(ctx, "searching notes", zap.Int("query_len", len(query)))

	rows, err := r.pool.Query(ctx, querySearch, query)
	if err != nil {
		log.Error(ctx, "failed to search notes", zap.Error(err))
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	notes, err := collectNotes(rows)
	if err != nil {
		log.Error(ctx, "failed to read notes", zap.Error(err))
		return nil, err
	}

	return notes, nil
}

func scanNote(row pgx.Row) (*entities.Note, error) {
	var note entities.Note
	if err := row.Scan(&note.ID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, err
	}
	note.CreatedAt = note.CreatedAt.UTC()
	note.UpdatedAt = note.UpdatedAt.UTC()
	return &note, nil
}

func collectNotes(rows pgx.Rows) ([]*entities.Note, error) {
	defer rows.Close()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}
