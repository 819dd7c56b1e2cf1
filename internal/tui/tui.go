// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-album-player/internal/playback"
	"github.com/hazadus/go-album-player/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	controller *playback.Controller
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(controller *playback.Controller) *App {
	return &App{
		controller: controller,
	}
}

// Run запускает TUI приложение. Контроллер закрывается при любом исходе.
func (tuiApp *App) Run() error {
	model := app.NewMainModel(tuiApp.controller)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()

	// Закрываем контроллер и плеер после завершения программы
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
