// Package notes содержит HTTP-обработчики для управления заметками.
package notes

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesapi/internal/notes/adapters/http/apperr"
	"notesapi/internal/notes/adapters/http/middleware"
	"notesapi/internal/notes/app"
	"notesapi/internal/notes/app/dto"
	"notesapi/internal/notes/domain/entities"
	"notesapi/pkg/logger"
)

// Константы ошибок и сообщений для логирования.
const (
	LogHandlerCreateNote  = "handling create note request"
	LogHandlerGetNote     = "handling get note request"
	LogHandlerListNotes   = "handling list notes request"
	LogHandlerSearchNotes = "handling search notes request"
	LogHandlerUpdateNote  = "handling update note request"
	LogHandlerDeleteNote  = "handling delete note request"

	ErrMsgInvalidNoteID      = "id must be an integer"
	ErrMsgInvalidLimit       = "limit must be an integer"
	ErrMsgInvalidOffset      = "offset must be an integer"
	ErrMsgInvalidRequestBody = "request body must be a valid JSON object"
)

// ParamID - имя параметра пути с идентификатором заметки.
const ParamID = "id"

// NoteService - операции бизнес-логики, которые нужны обработчикам.
type NoteService interface {
	CreateNote(ctx context.Context, title, content string) (*entities.Note, error)
	ListNotes(ctx context.Context, limit, offset int) (*app.NotesPage, error)
	SearchNotes(ctx context.Context, query string) ([]*entities.Note, error)
	GetNote(ctx context.Context, id int64) (*entities.Note, error)
	UpdateNote(ctx context.Context, id int64, patch entities.NotePatch) (*entities.Note, error)
	DeleteNote(ctx context.Context, id int64) error
}

// Handler обработчик HTTP-запросов для работы с заметками.
type Handler struct {
	notes NoteService
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(notes NoteService) *Handler {
	return &Handler{notes: notes}
}

// CreateNote обрабатывает запрос на создание новой заметки.
func (h *Handler) CreateNote(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(userCtx, LogHandlerCreateNote)

	var req dto.CreateNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return apperr.Validation(ErrMsgInvalidRequestBody)
	}

	note, err := h.notes.CreateNote(userCtx, req.Title, req.Content)
	if err != nil {
		return err
	}

	if err := ctx.Status(fiber.StatusCreated).JSON(dto.NewNoteResponse(note)); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// ListNotes обрабатывает запрос на получение списка заметок с пагинацией.
func (h *Handler) ListNotes(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.ListNotes"))
	log.Debug(userCtx, LogHandlerListNotes)

	limit, err := queryInt(ctx, "limit", app.DefaultLimit)
	if err != nil {
		return apperr.Validation(ErrMsgInvalidLimit)
	}
	offset, err := queryInt(ctx, "offset", 0)
	if err != nil {
		return apperr.Validation(ErrMsgInvalidOffset)
	}

	page, err := h.notes.ListNotes(userCtx, limit, offset)
	if err != nil {
		return err
	}

	resp := dto.NewListNotesResponse(page.Items, page.Total, page.Limit, page.Offset)
	if err := ctx.JSON(resp); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// SearchNotes обрабатывает поиск подстроки по заголовку и тексту.
func (h *Handler) SearchNotes(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.SearchNotes"))
	log.Debug(userCtx, LogHandlerSearchNotes)

	notes, err := h.notes.SearchNotes(userCtx, ctx.Query("q"))
	if err != nil {
		return err
	}

	if err := ctx.JSON(dto.NewNoteResponses(notes)); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// GetNote обрабатывает запрос на получение заметки по ID.
func (h *Handler) GetNote(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.GetNote"))
	log.Debug(userCtx, LogHandlerGetNote)

	id, err := noteID(ctx)
	if err != nil {
		return err
	}

	note, err := h.notes.GetNote(userCtx, id)
	if err != nil {
		return err
	}

	if err := ctx.JSON(dto.NewNoteResponse(note)); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// UpdateNote обрабатывает запрос на частичное обновление заметки.
func (h *Handler) UpdateNote(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.UpdateNote"))
	log.Debug(userCtx, LogHandlerUpdateNote)

	id, err := noteID(ctx)
	if err != nil {
		return err
	}

	var req dto.PatchNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return apperr.Validation(ErrMsgInvalidRequestBody)
	}

	note, err := h.notes.UpdateNote(userCtx, id, req.ToPatch())
	if err != nil {
		return err
	}

	if err := ctx.JSON(dto.NewNoteResponse(note)); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// DeleteNote обрабатывает запрос на удаление заметки.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.DeleteNote"))
	log.Debug(userCtx, LogHandlerDeleteNote)

	id, err := noteID(ctx)
	if err != nil {
		return err
	}

	if err := h.notes.DeleteNote(userCtx, id); err != nil {
		return err
	}

	if err := ctx.SendStatus(fiber.StatusNoContent); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func noteID(ctx fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params(ParamID), 10, 64)
	if err != nil {
		return 0, apperr.Validation(ErrMsgInvalidNoteID)
	}
	return id, nil
}

// queryInt читает целочисленный параметр запроса; отсутствующий параметр дает def.
func queryInt(ctx fiber.Ctx, key string, def int) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
