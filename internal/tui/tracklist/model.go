// Package tracklist содержит модель списка треков альбома для TUI
package tracklist

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-album-player/internal/data"
	"github.com/hazadus/go-album-player/internal/playback"
	"github.com/hazadus/go-album-player/internal/utils"
)

const (
	pauseIcon = "⏸"
	playIcon  = "▶"

	defaultWidth  = 80
	defaultHeight = 12
	headerHeight  = 6
	titleWidth    = 50
)

var (
	albumTitleStyle   = lipgloss.NewStyle().Bold(true).MarginLeft(2)
	albumInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	currentItemStyle  = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("#0000ff"))
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
)

// HoverMsg отправляется, когда курсор переходит на трек
type HoverMsg struct {
	Index int
}

// TrackClickedMsg отправляется при выборе трека клавишей Enter
type TrackClickedMsg struct {
	Index int
}

// trackItem реализует интерфейс list.Item для трека альбома
type trackItem struct {
	index int
	track data.Track
}

func (i trackItem) FilterValue() string {
	return i.track.Title
}

// rowState - то, что строкам нужно знать о воспроизведении
type rowState struct {
	current int
	hovered int
}

// trackIcon возвращает содержимое первой колонки строки:
// пауза для текущего трека, play для трека под курсором, иначе номер
func trackIcon(index int, state rowState) string {
	switch {
	case index == state.current:
		return pauseIcon
	case index == state.hovered:
		return playIcon
	default:
		return strconv.Itoa(index + 1)
	}
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct {
	state *rowState
}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	// Колонки: значок/номер | Название | Длительность
	str := fmt.Sprintf("%-3s %-*s %s",
		trackIcon(i.index, *d.state),
		titleWidth,
		utils.TruncateString(i.track.Title, titleWidth),
		utils.FormatTime(i.track.Duration))

	fn := itemStyle.Render
	if i.index == d.state.current {
		fn = currentItemStyle.Render
	}
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель списка треков альбома
type Model struct {
	list   list.Model
	album  *data.Album
	state  *rowState
	cursor int
}

// NewModel создает новую модель списка треков
func NewModel(album *data.Album) *Model {
	state := &rowState{current: playback.NoTrack, hovered: playback.NoTrack}

	items := make([]list.Item, len(album.Tracks))
	for i, t := range album.Tracks {
		items[i] = trackItem{index: i, track: t}
	}

	l := list.New(items, trackItemDelegate{state: state}, defaultWidth, defaultHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	// Индекс строки совпадает с индексом трека в альбоме
	l.SetFilteringEnabled(false)
	l.Styles.PaginationStyle = paginationStyle

	return &Model{
		list:  l,
		album: album,
		state: state,
	}
}

// Init сообщает о начальном положении курсора
func (m *Model) Init() tea.Cmd {
	return hover(m.cursor)
}

// SetState обновляет отображение текущего трека и трека под курсором
func (m *Model) SetState(snapshot playback.Snapshot) {
	m.state.current = snapshot.State.Track
	m.state.hovered = snapshot.Hovered
}

// Cursor возвращает индекс трека под курсором
func (m *Model) Cursor() int {
	return m.cursor
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, max(1, msg.Height-headerHeight))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" && len(m.album.Tracks) > 0 {
			index := m.list.Index()
			return m, func() tea.Msg {
				return TrackClickedMsg{Index: index}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	if index := m.list.Index(); index != m.cursor {
		m.cursor = index
		cmd = tea.Batch(cmd, hover(index))
	}
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	return m.header() + "\n" + m.list.View()
}

// header отображает сведения об альбоме
func (m *Model) header() string {
	info := []string{"🎤 " + m.album.Artist}
	if m.album.ReleaseInfo != "" {
		info = append(info, "📅 "+m.album.ReleaseInfo)
	}
	if m.album.CoverArt != "" {
		info = append(info, "🖼  "+m.album.CoverArt)
	}

	return fmt.Sprintf("%s\n%s\n",
		albumTitleStyle.Render("💿 "+m.album.Title),
		albumInfoStyle.Render(strings.Join(info, "\n")))
}

func hover(index int) tea.Cmd {
	return func() tea.Msg {
		return HoverMsg{Index: index}
	}
}
