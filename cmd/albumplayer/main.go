package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hazadus/go-album-player/internal/catalog"
	"github.com/hazadus/go-album-player/internal/config"
	"github.com/hazadus/go-album-player/internal/data"
	"github.com/hazadus/go-album-player/internal/logger"
	"github.com/hazadus/go-album-player/internal/player"
)

// Application хранит состояние приложения, общее для всех команд
type Application struct {
	Config  *config.Config
	Library *data.Library

	// newHandle создает аудио-handle для воспроизведения
	newHandle func() player.Handle
	closeLog  func() error
}

// NewApplication создает приложение с настоящим аудио-плеером
func NewApplication() *Application {
	app := &Application{
		closeLog: func() error { return nil },
	}
	app.newHandle = func() player.Handle {
		return player.NewPlayer(player.Options{
			BaseDir:    app.Library.BaseDir,
			BufferSize: app.Config.Playback.BufferSize(),
		})
	}
	return app
}

// initialize загружает конфигурацию, настраивает логгер и читает библиотеку
func (app *Application) initialize(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "ошибка загрузки конфигурации")
	}
	app.Config = cfg

	closeLog, err := logger.Init(cfg.Log.Logger())
	if err != nil {
		return errors.Wrap(err, "ошибка настройки логгера")
	}
	app.closeLog = closeLog

	library := data.NewLibrary()
	if err := library.LoadData(cfg.LibraryPath); err != nil {
		return errors.Wrap(err, "ошибка загрузки библиотеки")
	}
	app.Library = library

	zlog.Debug().
		Str("config", configPath).
		Str("library", cfg.LibraryPath).
		Int("albums", len(library.Albums)).
		Msg("приложение инициализировано")
	return nil
}

// catalog возвращает доступ к альбомам библиотеки
func (app *Application) catalog() *catalog.Manager {
	return catalog.NewManager(app.Library)
}

// Close освобождает ресурсы приложения
func (app *Application) Close() error {
	return app.closeLog()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := NewApplication()
	err := app.createRootCommand().ExecuteContext(ctx)

	stop()
	_ = app.Close()

	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}
