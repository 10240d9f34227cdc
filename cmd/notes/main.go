// Package main реализует точку входа службы заметок.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	notesHTTP "notesapi/internal/notes/adapters/http"
	"notesapi/internal/notes/adapters/services"
	"notesapi/internal/notes/app"
	"notesapi/internal/notes/config"
	"notesapi/internal/notes/db"
	"notesapi/pkg/logger"
	"notesapi/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTES_LOGGER_MODE"
	EnvLoggerLevel = "NOTES_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitStorage          = "failed to initialize storage"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notes service started"
	LogServiceShutdownDone = "notes service shutdown complete"
	LogStoppingHTTP        = "stopping HTTP server"
	LogClosingStorage      = "closing storage"
	LogInitStorage         = "initializing storage"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			// Глобальный logger к этому моменту может быть заменен logger-ом из конфигурации.
			if err := logger.Log(ctx).Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		exitCode = run(ctx, log)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// run собирает сервис и блокируется до сигнала завершения; возвращает код выхода.
func run(ctx context.Context, log *logger.Logger) int {
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, ErrLoadConfig, zap.Error(err))
		return 1
	}

	l, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
	if err != nil {
		log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
		return 1
	}
	logger.SetGlobalLogger(l)

	l.Info(ctx, LogServiceStarted,
		zap.String("environment", string(cfg.Logging.GetEnvironment())),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("storage", string(cfg.Storage.GetDriver())),
		zap.String("startup_time", time.Now().Format(time.RFC3339)))

	l.Info(ctx, LogInitStorage)
	storage, err := db.New(ctx, cfg)
	if err != nil {
		l.Error(ctx, ErrInitStorage, zap.Error(err))
		return 1
	}

	noteUseCase := app.NewNoteUseCase(storage.NoteRepository(), services.SystemClock{})

	l.Info(ctx, LogInitHTTPServer)
	server := notesHTTP.NewApp(&cfg.HTTP)
	notesHTTP.SetupRouter(server, notesHTTP.Dependencies{
		Notes:       noteUseCase,
		Storage:     storage,
		KeyVerifier: services.NewStaticKeyVerifier(cfg.Security.APIKey),
		Logger:      l,
		Security:    cfg.Security,
	})

	l.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	listenFailed := make(chan struct{})
	go func() {
		if err := server.Listen(cfg.HTTP.GetAddress()); err != nil {
			l.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			close(listenFailed)
			stopServer()
		}
	}()

	// Хранилище закрывается только после того, как HTTP сервер перестал принимать запросы.
	shutdown.Wait(serverCtx, cfg.Shutdown.GetTimeout(),
		func(ctx context.Context) error {
			l.Info(ctx, LogStoppingHTTP)
			if err := server.ShutdownWithContext(ctx); err != nil {
				l.Warn(ctx, "HTTP server shutdown failed", zap.Error(err))
			}

			l.Info(ctx, LogClosingStorage)
			return storage.Close(ctx)
		},
	)

	l.Info(ctx, LogServiceShutdownDone)

	select {
	case <-listenFailed:
		return 1
	default:
		return 0
	}
}
