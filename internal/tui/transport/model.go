// Package transport содержит модель транспортной панели для TUI
package transport

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-album-player/internal/playback"
	"github.com/hazadus/go-album-player/internal/utils"
)

const (
	seekStep   = 0.05
	volumeStep = 0.1

	progressWidth = 40
	volumeWidth   = 10
)

var (
	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

// TrackToggleMsg - переключатель текущего трека (повторное нажатие останавливает)
type TrackToggleMsg struct{}

// PauseToggleMsg - пауза/воспроизведение без смены трека
type PauseToggleMsg struct{}

// PreviousMsg - переход к предыдущему треку
type PreviousMsg struct{}

// NextMsg - переход к следующему треку
type NextMsg struct{}

// SeekMsg - перемотка на долю длительности
type SeekMsg struct {
	Fraction float64
}

// VolumeChangeMsg - новая громкость в диапазоне [0,1]
type VolumeChangeMsg struct {
	Volume float64
}

// Model представляет транспортную панель: только отображает снимок
// состояния и превращает клавиши в намерения
type Model struct {
	snapshot    playback.Snapshot
	format      func(float64) string
	progressBar progress.Model
	volumeBar   progress.Model
}

// NewModel создает панель. Если format равен nil, используется utils.FormatTime.
func NewModel(format func(float64) string) *Model {
	if format == nil {
		format = utils.FormatTime
	}

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = progressWidth

	vol := progress.New(progress.WithSolidFill("#00aa00"), progress.WithoutPercentage())
	vol.Width = volumeWidth

	return &Model{
		snapshot:    playback.Snapshot{State: playback.Stopped(), Hovered: playback.NoTrack},
		format:      format,
		progressBar: prog,
		volumeBar:   vol,
	}
}

// SetState заменяет отображаемый снимок состояния
func (m *Model) SetState(snapshot playback.Snapshot) {
	m.snapshot = snapshot
}

// Update обрабатывает сообщения. Возвращает команду с намерением,
// если клавиша относится к транспортной панели.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progressBar.Width = max(10, min(60, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			return m, send(TrackToggleMsg{})
		case "p":
			return m, send(PauseToggleMsg{})
		case "b", "[":
			return m, send(PreviousMsg{})
		case "n", "]":
			return m, send(NextMsg{})
		case "left":
			return m, m.seekBy(-seekStep)
		case "right":
			return m, m.seekBy(seekStep)
		case "+", "=":
			return m, send(VolumeChangeMsg{Volume: stepVolume(m.snapshot.Volume, volumeStep)})
		case "-":
			return m, send(VolumeChangeMsg{Volume: stepVolume(m.snapshot.Volume, -volumeStep)})
		}
	}

	return m, nil
}

// seekBy сдвигает позицию на долю длительности; без известной длительности ничего не делает
func (m *Model) seekBy(delta float64) tea.Cmd {
	d := m.snapshot.Duration
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return nil
	}
	return send(SeekMsg{Fraction: clamp(m.snapshot.Progress() + delta)})
}

// View отображает панель
func (m *Model) View() string {
	icon, status := "⏹", "Стоп"
	switch m.snapshot.State.Status {
	case playback.StatusPlaying:
		icon, status = "▶️", "Воспроизведение"
	case playback.StatusPaused:
		icon, status = "⏸️", "Пауза"
	}

	title := "—"
	if m.snapshot.Track != nil {
		title = m.snapshot.Track.Title
	}

	timeText := fmt.Sprintf("%s / %s",
		m.format(m.snapshot.CurrentTime),
		m.format(m.snapshot.Duration))

	volumeText := fmt.Sprintf("🔊 %s %3.0f%%",
		m.volumeBar.ViewAs(m.snapshot.Volume),
		m.snapshot.Volume*100)

	controls := controlsStyle.Render(
		"Enter: трек • Пробел: старт/стоп • p: пауза • b/n: пред./след. • ←/→: перемотка • +/-: громкость • q: выход",
	)

	return fmt.Sprintf("%s\n%s\n%s  %s\n%s\n%s",
		statusStyle.Render(fmt.Sprintf("%s %s", icon, status)),
		trackInfoStyle.Render("🎵 "+title),
		m.progressBar.ViewAs(m.snapshot.Progress()),
		timeText,
		volumeText,
		controls,
	)
}

// stepVolume меняет громкость на шаг, ограничивая диапазоном слайдера
func stepVolume(volume, step float64) float64 {
	return math.Round(clamp(volume+step)*100) / 100
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
