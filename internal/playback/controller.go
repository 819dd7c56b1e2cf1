package playback

import (
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/hazadus/go-album-player/internal/data"
	"github.com/hazadus/go-album-player/internal/player"
)

// DefaultVolume - начальная громкость
const DefaultVolume = 0.8

var (
	ErrInvalidInput = errors.New("некорректные входные данные")
	ErrNoSource     = errors.New("источник не загружен")
	ErrClosed       = errors.New("контроллер закрыт")
)

// Config содержит настройки контроллера
type Config struct {
	InitialVolume float64
}

// DefaultConfig возвращает настройки по умолчанию
func DefaultConfig() Config {
	return Config{InitialVolume: DefaultVolume}
}

// Snapshot - копия состояния воспроизведения для отображения
type Snapshot struct {
	State       State
	Track       *data.Track // nil, если трек не выбран
	CurrentTime float64
	Duration    float64
	Volume      float64
	Hovered     int
}

// Progress возвращает долю прослушанного в [0,1]; 0, если длительность неизвестна
func (s Snapshot) Progress() float64 {
	if !validDuration(s.Duration) {
		return 0
	}
	return math.Max(0, math.Min(1, s.CurrentTime/s.Duration))
}

// Controller - единственный владелец аудио-handle и источник истины
// о состоянии транспорта
type Controller struct {
	mu     sync.Mutex
	album  *data.Album
	handle player.Handle

	state       State
	generation  uint64 // Меняется при каждом переходе состояния
	loaded      int    // Индекс трека, источник которого загружен в handle
	currentTime float64
	duration    float64
	volume      float64
	hovered     int

	closed      bool
	unsubscribe []func()
	updates     chan struct{}
}

// NewController создает контроллер и захватывает handle.
// Источник первого трека загружается сразу, воспроизведение не начинается.
func NewController(album *data.Album, handle player.Handle, cfg Config) (*Controller, error) {
	if album == nil || len(album.Tracks) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "в альбоме нет треков")
	}
	if handle == nil {
		return nil, errors.Wrap(ErrInvalidInput, "не передан аудио-handle")
	}
	if err := checkVolume(cfg.InitialVolume); err != nil {
		return nil, err
	}

	first := album.Tracks[0]
	if err := handle.SetSource(first.AudioSrc); err != nil {
		return nil, errors.Wrap(err, "ошибка загрузки первого трека")
	}
	handle.SetVolume(cfg.InitialVolume)

	c := &Controller{
		album:    album,
		handle:   handle,
		state:    Stopped(),
		loaded:   0,
		duration: first.Duration,
		volume:   cfg.InitialVolume,
		hovered:  NoTrack,
		updates:  make(chan struct{}, 1),
	}

	c.unsubscribe = []func(){
		handle.Subscribe(player.EventTimeUpdate, c.onTimeUpdate),
		handle.Subscribe(player.EventDurationChange, c.onDurationChange),
		handle.Subscribe(player.EventVolumeChange, c.onVolumeChange),
		handle.Subscribe(player.EventEnded, c.onEnded),
	}

	zlog.Debug().Str("album", album.Slug).Int("tracks", len(album.Tracks)).Msg("контроллер создан")
	return c, nil
}

// Album возвращает альбом контроллера
func (c *Controller) Album() *data.Album {
	return c.album
}

// Updates возвращает канал сигналов об изменении состояния.
// Сигналы склеиваются; канал закрывается при Close.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// Snapshot возвращает копию текущего состояния
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := Snapshot{
		State:       c.state,
		CurrentTime: c.currentTime,
		Duration:    c.duration,
		Volume:      c.volume,
		Hovered:     c.hovered,
	}
	if c.state.HasTrack() {
		track := c.album.Tracks[c.state.Track]
		snapshot.Track = &track
	}
	return snapshot
}

// SelectTrack загружает источник трека и делает его текущим, не запуская воспроизведение
func (c *Controller) SelectTrack(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.selectTrack(index)
}

// Play запускает воспроизведение загруженного источника
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.play()
}

// Pause приостанавливает воспроизведение, текущий трек сохраняется
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.pause()
	return nil
}

// HandleTrackClick переключает трек: повторный клик по играющему треку
// останавливает его, клик по другому треку - выбирает и запускает
func (c *Controller) HandleTrackClick(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.handleTrackClick(index)
}

// TogglePlayback - переключатель транспортной панели.
// Без выбранного трека возобновляет загруженный источник.
func (c *Controller) TogglePlayback() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if !c.state.HasTrack() {
		return c.play()
	}
	return c.handleTrackClick(c.state.Track)
}

// StepPrevious переходит к предыдущему треку (не раньше первого) и запускает его
func (c *Controller) StepPrevious() error {
	return c.step(-1)
}

// StepNext переходит к следующему треку (не дальше последнего) и запускает его
func (c *Controller) StepNext() error {
	return c.step(1)
}

// Seek перематывает на долю длительности fraction из [0,1]
func (c *Controller) Seek(fraction float64) error {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return errors.Wrapf(ErrInvalidInput, "позиция %v вне диапазона [0,1]", fraction)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if !validDuration(c.duration) {
		return errors.Wrap(ErrInvalidInput, "длительность неизвестна")
	}
	return c.seek(c.duration * fraction)
}

// SeekTo перематывает на абсолютную позицию в секундах
func (c *Controller) SeekTo(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return errors.Wrapf(ErrInvalidInput, "некорректная позиция %v", seconds)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if validDuration(c.duration) && seconds > c.duration {
		return errors.Wrapf(ErrInvalidInput, "позиция %v больше длительности %v", seconds, c.duration)
	}
	return c.seek(seconds)
}

// SetVolume устанавливает громкость из диапазона [0,1]
func (c *Controller) SetVolume(volume float64) error {
	if err := checkVolume(volume); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.handle.SetVolume(volume)
	c.volume = volume
	c.notify()
	return nil
}

// Hover отмечает трек под курсором. На воспроизведение не влияет.
func (c *Controller) Hover(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIndex(index); err != nil {
		return err
	}
	if c.hovered != index {
		c.hovered = index
		c.notify()
	}
	return nil
}

// Unhover снимает отметку курсора
func (c *Controller) Unhover() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hovered != NoTrack {
		c.hovered = NoTrack
		c.notify()
	}
}

// Close отписывается от уведомлений и освобождает handle.
// Повторный вызов ничего не делает.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	close(c.updates)
	c.mu.Unlock()

	for _, unsub := range unsubscribe {
		unsub()
	}

	c.handle.Pause()
	if err := c.handle.Close(); err != nil {
		return errors.Wrap(err, "ошибка закрытия аудио-handle")
	}

	zlog.Debug().Str("album", c.album.Slug).Msg("контроллер закрыт")
	return nil
}

// Дальнейшие методы вызываются под мьютексом

func (c *Controller) selectTrack(index int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}

	track := c.album.Tracks[index]
	if err := c.handle.SetSource(track.AudioSrc); err != nil {
		return errors.Wrapf(err, "ошибка смены источника на трек %d", index)
	}

	c.loaded = index
	c.currentTime = 0
	c.duration = track.Duration
	c.setState(Paused(index))

	zlog.Debug().Int("track", index).Str("title", track.Title).Msg("трек выбран")
	return nil
}

// play запускает загруженный источник. На время handle.Play мьютекс
// отпускается: загрузка источника может занять время.
func (c *Controller) play() error {
	if c.handle.Source() == "" {
		return ErrNoSource
	}
	index, generation := c.loaded, c.generation

	c.mu.Unlock()
	err := c.handle.Play()
	c.mu.Lock()

	if c.closed {
		return ErrClosed
	}
	if err != nil {
		zlog.Warn().Err(err).Int("track", index).Msg("не удалось запустить воспроизведение")
		return errors.Wrap(err, "ошибка запуска воспроизведения")
	}

	if c.generation != generation {
		// Пока источник загружался, состояние сменила другая операция
		if !c.state.IsPlaying() {
			c.handle.Pause()
		}
		return nil
	}

	c.setState(Playing(index))
	return nil
}

func (c *Controller) pause() {
	c.handle.Pause()
	if c.state.IsPlaying() {
		c.setState(Paused(c.state.Track))
	} else {
		c.generation++
	}
}

func (c *Controller) handleTrackClick(index int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}

	if c.state.IsPlaying() && c.state.Track == index {
		c.handle.Pause()
		c.setState(Stopped())
		return nil
	}

	if c.state.Track != index {
		if err := c.selectTrack(index); err != nil {
			return err
		}
	}
	return c.play()
}

func (c *Controller) step(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	// Без текущего трека оба направления ведут к первому треку
	next := 0
	if c.state.HasTrack() {
		next = max(0, min(c.album.LastIndex(), c.state.Track+delta))
	}

	if err := c.selectTrack(next); err != nil {
		return err
	}
	return c.play()
}

func (c *Controller) seek(seconds float64) error {
	if err := c.handle.SetCurrentTime(seconds); err != nil {
		return errors.Wrap(err, "ошибка перемотки")
	}
	c.currentTime = seconds
	c.notify()
	return nil
}

func (c *Controller) checkIndex(index int) error {
	if index < 0 || index > c.album.LastIndex() {
		return errors.Wrapf(ErrInvalidInput, "нет трека с индексом %d", index)
	}
	return nil
}

// setState переключает состояние и уведомляет представления
func (c *Controller) setState(state State) {
	c.state = state
	c.generation++
	c.notify()
}

// notify отправляет сигнал об изменении без блокировки
func (c *Controller) notify() {
	if c.closed {
		return
	}
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// Обработчики уведомлений handle

func (c *Controller) onTimeUpdate(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.currentTime = ev.Value
	c.notify()
}

func (c *Controller) onDurationChange(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !validDuration(ev.Value) {
		return
	}
	c.duration = ev.Value
	c.notify()
}

func (c *Controller) onVolumeChange(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.volume = ev.Value
	c.notify()
}

func (c *Controller) onEnded(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Завершение предыдущего источника не должно останавливать новый
	if c.closed || ev.Source != c.album.Tracks[c.loaded].AudioSrc {
		return
	}
	if c.state.IsPlaying() {
		c.currentTime = c.duration
		c.setState(Paused(c.state.Track))
	}
}

func checkVolume(volume float64) error {
	if math.IsNaN(volume) || volume < 0 || volume > 1 {
		return errors.Wrapf(ErrInvalidInput, "громкость %v вне диапазона [0,1]", volume)
	}
	return nil
}

func validDuration(seconds float64) bool {
	return !math.IsNaN(seconds) && !math.IsInf(seconds, 0) && seconds > 0
}
