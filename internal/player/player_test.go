package player

import (
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// waitEvent ждет событие из канала с таймаутом
func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("Таймаут ожидания события")
		return Event{}
	}
}

// stubStreamer - поток фиксированной длины без декодера
type stubStreamer struct {
	length   int
	position int
	closed   bool
}

func (s *stubStreamer) Stream(samples [][2]float64) (int, bool) { return 0, false }
func (s *stubStreamer) Err() error                              { return nil }
func (s *stubStreamer) Len() int                                { return s.length }
func (s *stubStreamer) Position() int                           { return s.position }
func (s *stubStreamer) Seek(p int) error                        { s.position = p; return nil }
func (s *stubStreamer) Close() error                            { s.closed = true; return nil }

// attachStub подключает поток к плееру в обход декодера и динамиков
func attachStub(p *Player, stub *stubStreamer) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.streamer = stub
	p.format = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	p.ctrl = &beep.Ctrl{Streamer: stub, Paused: true}
}

func TestPlayWithoutSource(t *testing.T) {
	player := NewPlayer(Options{})
	defer player.Close()

	err := player.Play()
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("Ожидалась ошибка ErrNoSource, получено: %v", err)
	}
}

func TestPlayInvalidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.mp3"), []byte("fake mp3 content"), 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}

	player := NewPlayer(Options{BaseDir: dir})
	defer player.Close()

	if err := player.SetSource("broken.mp3"); err != nil {
		t.Fatalf("Ошибка установки источника: %v", err)
	}

	err := player.Play()
	if err == nil {
		t.Fatal("Ожидалась ошибка при воспроизведении невалидного файла")
	}
	if !strings.Contains(err.Error(), "ошибка декодирования MP3") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}

	// Источник сохраняется, трек не загружен
	if player.Source() != "broken.mp3" {
		t.Errorf("Ожидался источник broken.mp3, получено %s", player.Source())
	}
	if !math.IsNaN(player.Duration()) {
		t.Errorf("Длительность незагруженного источника должна быть NaN, получено %v", player.Duration())
	}
}

func TestPlayNonExistentURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	player := NewPlayer(Options{})
	defer player.Close()

	_ = player.SetSource(server.URL + "/missing.mp3")
	err := player.Play()
	if err == nil {
		t.Fatal("Ожидалась ошибка при воспроизведении несуществующего URL")
	}
	if !strings.Contains(err.Error(), "ошибка открытия источника") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestSetSourceResetsPosition(t *testing.T) {
	player := NewPlayer(Options{})
	defer player.Close()

	updates := make(chan Event, 4)
	player.Subscribe(EventTimeUpdate, func(ev Event) { updates <- ev })

	_ = player.SetSource("first.mp3")
	waitEvent(t, updates)

	if err := player.SetCurrentTime(42); err != nil {
		t.Fatalf("Ошибка перемотки: %v", err)
	}
	ev := waitEvent(t, updates)
	if ev.Value != 42 || ev.Source != "first.mp3" {
		t.Errorf("Неожиданное событие перемотки: %+v", ev)
	}
	if player.CurrentTime() != 42 {
		t.Errorf("Ожидалась отложенная позиция 42, получено %v", player.CurrentTime())
	}

	_ = player.SetSource("second.mp3")
	ev = waitEvent(t, updates)
	if ev.Value != 0 || ev.Source != "second.mp3" {
		t.Errorf("Ожидалось событие сброса позиции, получено: %+v", ev)
	}
	if player.CurrentTime() != 0 {
		t.Errorf("Позиция должна сброситься при смене источника, получено %v", player.CurrentTime())
	}
}

func TestSetCurrentTimeInvalid(t *testing.T) {
	player := NewPlayer(Options{})
	defer player.Close()

	for _, value := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := player.SetCurrentTime(value); err == nil {
			t.Errorf("Ожидалась ошибка для позиции %v", value)
		}
	}
}

func TestSetVolumeEmitsEvent(t *testing.T) {
	player := NewPlayer(Options{})
	defer player.Close()

	changes := make(chan Event, 1)
	player.Subscribe(EventVolumeChange, func(ev Event) { changes <- ev })

	player.SetVolume(0.3)
	ev := waitEvent(t, changes)
	if ev.Kind != EventVolumeChange || ev.Value != 0.3 {
		t.Errorf("Неожиданное событие громкости: %+v", ev)
	}
	if player.Volume() != 0.3 {
		t.Errorf("Ожидалась громкость 0.3, получено %v", player.Volume())
	}
}

func TestUnsubscribe(t *testing.T) {
	player := NewPlayer(Options{})
	defer player.Close()

	removed := make(chan Event, 1)
	kept := make(chan Event, 1)
	unsubscribe := player.Subscribe(EventVolumeChange, func(ev Event) { removed <- ev })
	player.Subscribe(EventVolumeChange, func(ev Event) { kept <- ev })
	unsubscribe()

	player.SetVolume(0.5)
	waitEvent(t, kept)

	select {
	case <-removed:
		t.Error("Отписанный обработчик не должен вызываться")
	default:
	}
}

func TestClose(t *testing.T) {
	player := NewPlayer(Options{})
	_ = player.SetSource("track.mp3")

	if err := player.Close(); err != nil {
		t.Fatalf("Ошибка закрытия плеера: %v", err)
	}
	if err := player.Close(); err != nil {
		t.Errorf("Повторное закрытие должно быть без ошибки: %v", err)
	}

	if err := player.Play(); !errors.Is(err, ErrClosed) {
		t.Errorf("Ожидалась ошибка ErrClosed, получено: %v", err)
	}
	if err := player.SetSource("other.mp3"); !errors.Is(err, ErrClosed) {
		t.Errorf("Ожидалась ошибка ErrClosed, получено: %v", err)
	}
	if player.Source() != "" {
		t.Errorf("Источник должен быть очищен после закрытия, получено %s", player.Source())
	}
}

func TestApplyVolume(t *testing.T) {
	gain := &effects.Volume{Base: 2}

	applyVolume(gain, 1)
	if gain.Silent || gain.Volume != 0 {
		t.Errorf("Громкость 1 должна соответствовать усилению 0, получено %+v", gain)
	}

	applyVolume(gain, 0.5)
	if gain.Silent || gain.Volume != -1 {
		t.Errorf("Громкость 0.5 должна соответствовать усилению -1, получено %+v", gain)
	}

	applyVolume(gain, 0)
	if !gain.Silent {
		t.Error("Нулевая громкость должна включать тишину")
	}
}

func TestEventKindString(t *testing.T) {
	tests := map[EventKind]string{
		EventTimeUpdate:     "timeupdate",
		EventDurationChange: "durationchange",
		EventVolumeChange:   "volumechange",
		EventEnded:          "ended",
		EventKind(99):       "unknown",
	}
	for kind, expected := range tests {
		if kind.String() != expected {
			t.Errorf("EventKind(%d).String() = %s, ожидалось %s", kind, kind.String(), expected)
		}
	}
}

func TestFinishReleasesStream(t *testing.T) {
	player := NewPlayer(Options{BaseDir: t.TempDir()})
	defer player.Close()

	_ = player.SetSource("track.mp3")
	stub := &stubStreamer{length: 100, position: 100}
	attachStub(player, stub)

	// Завершение устаревшего потока ничего не меняет
	player.finish(&stubStreamer{})
	if player.streamer != stub {
		t.Fatal("Устаревшее завершение не должно освобождать текущий поток")
	}

	player.finish(stub)
	if player.streamer != nil || player.ctrl != nil {
		t.Error("Доигравший поток должен быть освобожден")
	}
	if !stub.closed {
		t.Error("Доигравший поток должен быть закрыт")
	}
	if player.CurrentTime() != 0 {
		t.Errorf("После завершения позиция должна сброситься, получено %v", player.CurrentTime())
	}
}

func TestPlayAfterEndReloadsSource(t *testing.T) {
	player := NewPlayer(Options{BaseDir: t.TempDir()})
	defer player.Close()

	_ = player.SetSource("track.mp3")
	stub := &stubStreamer{length: 100, position: 100}
	attachStub(player, stub)

	// Поток дочитан: Play загружает источник заново, а не снимает паузу
	// с отключенного потока. Файла нет, поэтому загрузка завершается ошибкой.
	err := player.Play()
	if err == nil || !strings.Contains(err.Error(), "ошибка открытия источника") {
		t.Errorf("Ожидалась повторная загрузка источника, получено: %v", err)
	}
	if !stub.closed {
		t.Error("Дочитанный поток должен быть закрыт")
	}
}

func TestPlayResumesAttachedStream(t *testing.T) {
	player := NewPlayer(Options{})
	defer player.Close()

	_ = player.SetSource("track.mp3")
	stub := &stubStreamer{length: 100, position: 40}
	attachStub(player, stub)

	if err := player.Play(); err != nil {
		t.Fatalf("Ошибка воспроизведения: %v", err)
	}
	if player.ctrl.Paused {
		t.Error("Пауза должна быть снята")
	}
	if stub.closed {
		t.Error("Недочитанный поток не должен перезагружаться")
	}
}

func TestSlowLoadDoesNotBlockPlayer(t *testing.T) {
	requested := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested <- struct{}{}
		<-r.Context().Done()
	}))
	defer server.Close()

	player := NewPlayer(Options{})
	_ = player.SetSource(server.URL + "/slow.mp3")

	result := make(chan error, 1)
	go func() { result <- player.Play() }()

	select {
	case <-requested:
	case <-time.After(time.Second):
		t.Fatal("Таймаут ожидания запроса")
	}

	// Пока источник загружается, остальные методы отвечают сразу
	done := make(chan struct{})
	go func() {
		player.SetVolume(0.5)
		_ = player.Source()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Методы плеера заблокированы загрузкой источника")
	}

	if err := player.Close(); err != nil {
		t.Fatalf("Ошибка закрытия плеера: %v", err)
	}

	select {
	case err := <-result:
		if err == nil {
			t.Error("Прерванная загрузка должна завершиться ошибкой")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close не прервал загрузку источника")
	}
}
