// Package http содержит компоненты для HTTP сервера.
package http

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"notesapi/internal/notes/adapters/http/apperr"
	"notesapi/internal/notes/adapters/http/middleware"
	"notesapi/internal/notes/adapters/http/notes"
	"notesapi/internal/notes/config"
	"notesapi/internal/notes/ports/services"
	"notesapi/pkg/logger"
)

// Пути проверок работоспособности, для которых не требуется API-ключ.
const (
	PathHealth = "/healthz"
	PathReady  = "/readyz"
)

// PathNotes - коллекция заметок.
const PathNotes = "/notes"

const pathNote = PathNotes + "/:" + notes.ParamID

// Dependencies - все, что нужно маршрутизатору.
type Dependencies struct {
	Notes       notes.NoteService
	Storage     notes.Pinger
	KeyVerifier services.KeyVerifier
	Logger      *logger.Logger
	Security    config.SecurityConfig
}

// NewApp создает fiber.App с таймаутами, лимитом тела и единым обработчиком ошибок.
func NewApp(cfg *config.HTTPConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "notes",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: apperr.Handler,
	})
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies) {
	notesHandler := notes.NewHandler(deps.Notes)
	healthHandler := notes.NewHealthHandler(deps.Storage)

	log := deps.Logger
	if log == nil {
		log = logger.Log(context.Background())
	}

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware(log))
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	if deps.Security.RateLimitEnabled() {
		app.Use(middleware.NewRateLimitMiddleware(deps.Security.RateLimitRPS, deps.Security.RateLimitBurst))
	}
	if deps.KeyVerifier != nil {
		app.Use(middleware.NewAPIKeyMiddleware(deps.KeyVerifier, PathHealth, PathReady))
	}

	app.Get(PathHealth, healthHandler.Health)
	app.Get(PathReady, healthHandler.Ready)

	// /notes/search регистрируется раньше /notes/:id, иначе "search" попадет в параметр.
	app.Post(PathNotes, notesHandler.CreateNote)
	app.Get(PathNotes, notesHandler.ListNotes)
	app.Get(PathNotes+"/search", notesHandler.SearchNotes)
	app.Get(pathNote, notesHandler.GetNote)
	app.Patch(pathNote, notesHandler.UpdateNote)
	app.Delete(pathNote, notesHandler.DeleteNote)
}
