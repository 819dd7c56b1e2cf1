// Package app содержит основную логику TUI приложения
package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zlog "github.com/rs/zerolog/log"

	"github.com/hazadus/go-album-player/internal/playback"
	"github.com/hazadus/go-album-player/internal/tui/tracklist"
	"github.com/hazadus/go-album-player/internal/tui/transport"
	"github.com/hazadus/go-album-player/internal/utils"
)

// transportHeight - строки, занимаемые транспортной панелью
const transportHeight = 8

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#ff0000")).
	Bold(true)

// StateChangedMsg отправляется, когда контроллер сообщил об изменении состояния
type StateChangedMsg struct{}

// OperationErrorMsg содержит ошибку операции контроллера
type OperationErrorMsg struct {
	Err error
}

// MainModel связывает представления с контроллером: намерения представлений
// превращаются в операции контроллера, снимки состояния - в отображение
type MainModel struct {
	controller     *playback.Controller
	tracklistModel *tracklist.Model
	transportModel *transport.Model
	queue          *opQueue
	lastErr        error
	quitting       bool
}

// NewMainModel создает главную модель для контроллера
func NewMainModel(controller *playback.Controller) *MainModel {
	m := &MainModel{
		controller:     controller,
		tracklistModel: tracklist.NewModel(controller.Album()),
		transportModel: transport.NewModel(utils.FormatTime),
		queue:          newOpQueue(),
	}
	m.refresh()
	return m
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.tracklistModel.Init(),
		m.listenForUpdates(),
	)
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}

		// Клавиши транспортной панели имеют приоритет над списком
		var cmd tea.Cmd
		if m.transportModel, cmd = m.transportModel.Update(msg); cmd != nil {
			return m, cmd
		}
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		var tracklistCmd, transportCmd tea.Cmd
		m.tracklistModel, tracklistCmd = m.tracklistModel.Update(tea.WindowSizeMsg{
			Width:  msg.Width,
			Height: msg.Height - transportHeight,
		})
		m.transportModel, transportCmd = m.transportModel.Update(msg)
		return m, tea.Batch(tracklistCmd, transportCmd)

	case tracklist.HoverMsg:
		if err := m.controller.Hover(msg.Index); err != nil {
			zlog.Debug().Err(err).Int("track", msg.Index).Msg("наведение отклонено")
		}
		m.refresh()
		return m, nil

	case tracklist.TrackClickedMsg:
		return m, m.run(func() error { return m.controller.HandleTrackClick(msg.Index) })

	case transport.TrackToggleMsg:
		return m, m.run(m.controller.TogglePlayback)

	case transport.PauseToggleMsg:
		if m.controller.Snapshot().State.IsPlaying() {
			return m, m.run(m.controller.Pause)
		}
		return m, m.run(m.controller.Play)

	case transport.PreviousMsg:
		return m, m.run(m.controller.StepPrevious)

	case transport.NextMsg:
		return m, m.run(m.controller.StepNext)

	case transport.SeekMsg:
		return m, m.run(func() error { return m.controller.Seek(msg.Fraction) })

	case transport.VolumeChangeMsg:
		return m, m.run(func() error { return m.controller.SetVolume(msg.Volume) })

	case StateChangedMsg:
		m.refresh()
		return m, m.listenForUpdates()

	case OperationErrorMsg:
		m.lastErr = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.tracklistModel, cmd = m.tracklistModel.Update(msg)
	return m, cmd
}

// View отображает интерфейс
func (m *MainModel) View() string {
	if m.quitting {
		return "До свидания!\n"
	}

	view := m.tracklistModel.View() + "\n" + m.transportModel.View()
	if m.lastErr != nil {
		view += "\n" + errorStyle.Render("❌ "+m.lastErr.Error())
	}
	return view
}

// Close закрывает контроллер и освобождает аудио-handle
func (m *MainModel) Close() error {
	return m.controller.Close()
}

// refresh передает представлениям свежий снимок состояния
func (m *MainModel) refresh() {
	snapshot := m.controller.Snapshot()
	m.tracklistModel.SetState(snapshot)
	m.transportModel.SetState(snapshot)
}

// run выполняет операцию контроллера вне цикла отрисовки:
// загрузка источника может занять время. Номер в очереди выдается сразу,
// поэтому операции выполняются в порядке намерений пользователя.
func (m *MainModel) run(op func() error) tea.Cmd {
	ticket := m.queue.ticket()
	return func() tea.Msg {
		if err := m.queue.do(ticket, op); err != nil {
			zlog.Error().Err(err).Msg("ошибка операции воспроизведения")
			return OperationErrorMsg{Err: err}
		}
		return OperationErrorMsg{}
	}
}

// listenForUpdates ждет следующего сигнала об изменении состояния
func (m *MainModel) listenForUpdates() tea.Cmd {
	updates := m.controller.Updates()
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return StateChangedMsg{}
	}
}

// opQueue пропускает операции по одной в порядке выдачи номеров.
// Bubble Tea выполняет команды в отдельных горутинах без гарантии порядка.
type opQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	issued  uint64
	serving uint64
}

func newOpQueue() *opQueue {
	q := &opQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// ticket выдает следующий номер в очереди
func (q *opQueue) ticket() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	ticket := q.issued
	q.issued++
	return ticket
}

// do ждет своей очереди и выполняет op
func (q *opQueue) do(ticket uint64, op func() error) error {
	q.mu.Lock()
	for q.serving != ticket {
		q.cond.Wait()
	}
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.serving++
		q.cond.Broadcast()
		q.mu.Unlock()
	}()
	return op()
}
