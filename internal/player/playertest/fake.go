// Package playertest содержит управляемую реализацию player.Handle для тестов
package playertest

import (
	"math"
	"sync"

	"github.com/hazadus/go-album-player/internal/player"
)

// Fake - player.Handle без звука. События доставляются только через Emit,
// синхронно, в горутине вызывающего.
type Fake struct {
	mu          sync.Mutex
	source      string
	playing     bool
	currentTime float64
	duration    float64
	volume      float64
	ended       bool
	closed      bool
	subs        map[player.EventKind]map[int]func(player.Event)
	nextID      int
	calls       []string

	// PlayErr возвращается из Play, если задан
	PlayErr error
	// SeekErr возвращается из SetCurrentTime, если задан
	SeekErr error
}

var _ player.Handle = (*Fake)(nil)

// New создает Fake с громкостью 1 и неизвестной длительностью
func New() *Fake {
	return &Fake{
		duration: math.NaN(),
		volume:   1,
		subs:     make(map[player.EventKind]map[int]func(player.Event)),
	}
}

func (f *Fake) record(call string) {
	f.calls = append(f.calls, call)
}

// SetSource заменяет источник и сбрасывает позицию
func (f *Fake) SetSource(src string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return player.ErrClosed
	}
	f.record("SetSource")
	f.source = src
	f.playing = false
	f.ended = false
	f.currentTime = 0
	f.duration = math.NaN()
	return nil
}

// Source возвращает текущий источник
func (f *Fake) Source() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

// Play отмечает воспроизведение
func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return player.ErrClosed
	}
	f.record("Play")
	if f.source == "" {
		return player.ErrNoSource
	}
	if f.PlayErr != nil {
		return f.PlayErr
	}
	// Доигравший источник начинается сначала
	if f.ended {
		f.ended = false
		f.currentTime = 0
	}
	f.playing = true
	return nil
}

// Pause снимает отметку воспроизведения
func (f *Fake) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Pause")
	f.playing = false
}

// CurrentTime возвращает позицию
func (f *Fake) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentTime
}

// SetCurrentTime устанавливает позицию
func (f *Fake) SetCurrentTime(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetCurrentTime")
	if f.SeekErr != nil {
		return f.SeekErr
	}
	f.currentTime = seconds
	return nil
}

// Duration возвращает длительность, заданную через SetDuration
func (f *Fake) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

// SetDuration задает длительность без уведомления
func (f *Fake) SetDuration(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duration = seconds
}

// Volume возвращает громкость
func (f *Fake) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

// SetVolume устанавливает громкость
func (f *Fake) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetVolume")
	f.volume = volume
}

// Subscribe регистрирует обработчик
func (f *Fake) Subscribe(kind player.EventKind, fn func(player.Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[kind] == nil {
		f.subs[kind] = make(map[int]func(player.Event))
	}
	id := f.nextID
	f.nextID++
	f.subs[kind][id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[kind], id)
	}
}

// Close закрывает Fake
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Close")
	f.closed = true
	f.playing = false
	return nil
}

// Emit синхронно доставляет событие подписчикам
func (f *Fake) Emit(ev player.Event) {
	f.mu.Lock()
	fns := make([]func(player.Event), 0, len(f.subs[ev.Kind]))
	for _, fn := range f.subs[ev.Kind] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Finish доигрывает источник до конца и доставляет ended
func (f *Fake) Finish() {
	f.mu.Lock()
	f.playing = false
	f.ended = true
	if !math.IsNaN(f.duration) {
		f.currentTime = f.duration
	}
	ev := player.Event{Kind: player.EventEnded, Source: f.source, Value: f.currentTime}
	f.mu.Unlock()

	f.Emit(ev)
}

// Playing сообщает, идет ли воспроизведение
func (f *Fake) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

// Closed сообщает, был ли вызван Close
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Subscribers возвращает общее число активных подписок
func (f *Fake) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, subs := range f.subs {
		total += len(subs)
	}
	return total
}

// Calls возвращает копию журнала вызовов
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
