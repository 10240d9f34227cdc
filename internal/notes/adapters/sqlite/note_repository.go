// Package sqlite provides a SQLite implementation of the note repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"notesapi/internal/notes/domain/entities"
	"notesapi/internal/notes/ports/repositories"
	"notesapi/pkg/logger"
)

// Временные метки хранятся текстом в формате entities.TimeLayout.
const schema = `CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const (
	queryInsert = `INSERT INTO notes (title, content, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id`
	queryCount  = `SELECT COUNT(*) FROM notes`
	queryList   = `SELECT id, title, content, created_at, updated_at FROM notes ORDER BY id ASC LIMIT ? OFFSET ?`
	queryAll    = `SELECT id, title, content, created_at, updated_at FROM notes ORDER BY id ASC`
	queryGet    = `SELECT id, title, content, created_at, updated_at FROM notes WHERE id = ?`
	queryUpdate = `UPDATE notes SET title = COALESCE(?, title), content = COALESCE(?, content), updated_at = ? ` +
		`WHERE id = ? RETURNING id, title, content, created_at, updated_at`
	queryDelete = `DELETE FROM notes WHERE id = ?`
)

// DB - подмножество *sql.DB, используемое репозиторием.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ repositories.NoteRepository = (*NoteRepository)(nil)

// NoteRepository хранит заметки в таблице notes базы SQLite.
type NoteRepository struct {
	db DB
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(db DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// EnsureSchema создает таблицу notes, если ее еще нет.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Log(ctx).Error(ctx, "failed to create notes table", zap.Error(err))
		return fmt.Errorf("failed to create notes table: %w", err)
	}
	return nil
}

// Create сохраняет новую заметку.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "sqlite.NoteRepository.Create"))

	stored := note.Clone()
	err := r.db.QueryRowContext(ctx, queryInsert,
		note.Title, note.Content, entities.FormatTime(note.CreatedAt), entities.FormatTime(note.UpdatedAt),
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
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, queryList, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}

	notes, err := collectNotes(rows, nil)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// GetByID получает заметку по ID; nil, nil если ее нет.
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*entities.Note, error) {
	note, err := scanNote(r.db.QueryRowContext(ctx, queryGet, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// Update обновляет переданные поля одним запросом.
func (r *NoteRepository) Update(ctx context.Context, id int64, patch entities.NotePatch, now time.Time) (*entities.Note, error) {
	note, err := scanNote(r.db.QueryRowContext(ctx, queryUpdate,
		nullable(patch.Title), nullable(patch.Content), entities.FormatTime(now), id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Log(ctx).Error(ctx, "failed to update note", zap.Int64("noteID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// Delete удаляет заметку и сообщает, существовала ли она.
func (r *NoteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, queryDelete, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Search фильтрует заметки в Go: LOWER в SQLite понимает только ASCII.
func (r *NoteRepository) Search(ctx context.Context, query string) ([]*entities.Note, error) {
	rows, err := r.db.QueryContext(ctx, queryAll)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	lower := strings.ToLower(query)
	return collectNotes(rows, func(n *entities.Note) bool { return n.Matches(lower) })
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*entities.Note, error) {
	var (
		note             entities.Note
		created, updated string
	)
	if err := row.Scan(&note.ID, &note.Title, &note.Content, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if note.CreatedAt, err = entities.ParseTime(created); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	if note.UpdatedAt, err = entities.ParseTime(updated); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updated, err)
	}
	return &note, nil
}

func collectNotes(rows *sql.Rows, keep func(*entities.Note) bool) ([]*entities.Note, error) {
	defer rows.Close()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		if keep == nil || keep(note) {
			notes = append(notes, note)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return notes, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
