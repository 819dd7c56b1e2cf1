// Package player содержит компоненты для управления воспроизведением аудио
package player

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	zlog "github.com/rs/zerolog/log"

	"github.com/hazadus/go-album-player/internal/streaming"
	"github.com/hazadus/go-album-player/internal/utils"
)

const (
	progressInterval = 250 * time.Millisecond
	eventBufferSize  = 64
	resampleQuality  = 4
)

// speaker инициализируется один раз на процесс
var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = rate
		speakerErr = speaker.Init(rate, rate.N(time.Second/5))
	})
	return speakerRate, speakerErr
}

// Options содержит настройки плеера
type Options struct {
	BaseDir    string // Каталог для относительных путей к файлам
	BufferSize int    // Размер буфера потокового чтения в байтах
}

// Player реализует Handle поверх beep: mp3-декодер, пауза через beep.Ctrl,
// громкость через effects.Volume
type Player struct {
	ctx    context.Context
	cancel context.CancelFunc

	mutex       sync.Mutex
	options     Options
	source      string
	volume      float64
	pendingSeek float64
	generation  uint64 // Меняется при смене источника
	closed      bool

	// Компоненты для воспроизведения
	streamer      beep.StreamSeekCloser
	format        beep.Format
	ctrl          *beep.Ctrl
	gain          *effects.Volume
	monitorCancel context.CancelFunc

	// Подписчики на события
	subsMutex sync.Mutex
	subs      map[EventKind]map[int]func(Event)
	nextSubID int
	events    chan Event
}

// NewPlayer создает новый экземпляр плеера
func NewPlayer(options Options) *Player {
	if options.BufferSize <= 0 {
		options.BufferSize = streaming.DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		ctx:     ctx,
		cancel:  cancel,
		options: options,
		volume:  1,
		subs:    make(map[EventKind]map[int]func(Event)),
		events:  make(chan Event, eventBufferSize),
	}
	go p.dispatch()
	return p
}

// SetSource заменяет источник. Загрузка откладывается до Play.
func (p *Player) SetSource(src string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return ErrClosed
	}

	p.stopInternal()
	p.source = src
	p.generation++
	p.pendingSeek = 0

	p.emit(Event{Kind: EventTimeUpdate, Source: src, Value: 0})
	return nil
}

// Source возвращает текущий источник
func (p *Player) Source() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.source
}

// Play начинает или возобновляет воспроизведение.
// Источник открывается и декодируется без мьютекса: удаленный источник
// может отвечать долго, а остальные методы не должны ждать загрузки.
func (p *Player) Play() error {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return ErrClosed
	}
	if p.source == "" {
		p.mutex.Unlock()
		return ErrNoSource
	}

	// Доигравший поток уже снят с динамиков, его нужно загрузить заново
	if p.streamer != nil && p.drained() {
		p.release()
		p.pendingSeek = 0
	}

	if p.streamer != nil {
		p.resume()
		p.mutex.Unlock()
		return nil
	}

	src, generation := p.source, p.generation
	p.mutex.Unlock()

	decoded, err := p.open(src)
	if err != nil {
		return err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	switch {
	case p.closed:
		decoded.streamer.Close()
		return ErrClosed
	case p.generation != generation:
		// Источник сменился, пока шла загрузка
		decoded.streamer.Close()
		return nil
	case p.streamer != nil:
		// Параллельный Play уже подключил источник
		decoded.streamer.Close()
	default:
		p.attach(src, decoded)
	}

	p.resume()
	return nil
}

// decodedSource - открытый и декодированный источник
type decodedSource struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	rate     beep.SampleRate
}

// open открывает и декодирует источник, инициализирует динамики
func (p *Player) open(src string) (decodedSource, error) {
	reader, err := streaming.Open(p.ctx, src, p.options.BaseDir, p.options.BufferSize)
	if err != nil {
		return decodedSource{}, errors.Wrap(err, "ошибка открытия источника")
	}

	streamer, format, err := mp3.Decode(reader)
	if err != nil {
		reader.Close()
		return decodedSource{}, errors.Wrap(err, "ошибка декодирования MP3")
	}

	rate, err := initSpeaker(format.SampleRate)
	if err != nil {
		streamer.Close()
		return decodedSource{}, errors.Wrap(err, "ошибка инициализации динамиков")
	}

	return decodedSource{streamer: streamer, format: format, rate: rate}, nil
}

// attach подключает декодированный источник к динамикам на паузе
// (должен вызываться под мьютексом)
func (p *Player) attach(src string, decoded decodedSource) {
	streamer, format := decoded.streamer, decoded.format

	if p.pendingSeek > 0 {
		if err := streamer.Seek(format.SampleRate.N(utils.SecondsToDuration(p.pendingSeek))); err != nil {
			zlog.Warn().Err(err).Str("source", src).Msg("не удалось применить отложенную перемотку")
		}
	}

	var stream beep.Streamer = streamer
	if format.SampleRate != decoded.rate {
		stream = beep.Resample(resampleQuality, format.SampleRate, decoded.rate, streamer)
	}

	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: stream, Paused: true}
	p.gain = &effects.Volume{Streamer: p.ctrl, Base: 2}
	applyVolume(p.gain, p.volume)

	duration := p.durationInternal()
	speaker.Play(beep.Seq(p.gain, beep.Callback(func() {
		// Вызывается под блокировкой speaker: только неблокирующая отправка
		p.emit(Event{Kind: EventEnded, Source: src, Value: duration})
		go p.finish(streamer)
	})))

	monitorCtx, monitorCancel := context.WithCancel(p.ctx)
	p.monitorCancel = monitorCancel
	go p.monitorProgress(monitorCtx, src)

	if !math.IsNaN(duration) {
		p.emit(Event{Kind: EventDurationChange, Source: src, Value: duration})
	}

	zlog.Debug().Str("source", src).Float64("duration", duration).Msg("источник загружен")
}

// finish освобождает доигравший поток, чтобы следующий Play начал трек сначала
func (p *Player) finish(streamer beep.StreamSeekCloser) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.streamer != streamer {
		return
	}
	p.release()
	p.pendingSeek = 0
}

// resume снимает паузу (должен вызываться под мьютексом)
func (p *Player) resume() {
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
}

// drained сообщает, дочитан ли поток до конца (должен вызываться под мьютексом)
func (p *Player) drained() bool {
	speaker.Lock()
	defer speaker.Unlock()

	length := p.streamer.Len()
	return length > 0 && p.streamer.Position() >= length
}

// Pause приостанавливает воспроизведение
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
}

// CurrentTime возвращает текущую позицию в секундах
func (p *Player) CurrentTime() float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.streamer == nil {
		return p.pendingSeek
	}

	speaker.Lock()
	pos := p.format.SampleRate.D(p.streamer.Position())
	speaker.Unlock()
	return pos.Seconds()
}

// SetCurrentTime перематывает источник на указанную позицию.
// До загрузки позиция запоминается и применяется при Play.
func (p *Player) SetCurrentTime(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return errors.Newf("некорректная позиция: %v", seconds)
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return ErrClosed
	}

	if p.streamer != nil {
		speaker.Lock()
		err := p.streamer.Seek(p.format.SampleRate.N(utils.SecondsToDuration(seconds)))
		speaker.Unlock()
		if err != nil {
			return errors.Wrap(err, "ошибка перемотки")
		}
	} else {
		p.pendingSeek = seconds
	}

	p.emit(Event{Kind: EventTimeUpdate, Source: p.source, Value: seconds})
	return nil
}

// Duration возвращает длительность источника или NaN, если она неизвестна
func (p *Player) Duration() float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.durationInternal()
}

func (p *Player) durationInternal() float64 {
	if p.streamer == nil {
		return math.NaN()
	}

	speaker.Lock()
	length := p.streamer.Len()
	speaker.Unlock()

	if length <= 0 {
		return math.NaN()
	}
	return p.format.SampleRate.D(length).Seconds()
}

// Volume возвращает громкость в диапазоне [0,1]
func (p *Player) Volume() float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.volume
}

// SetVolume устанавливает громкость. Значение передается как есть,
// проверка диапазона - ответственность вызывающей стороны.
func (p *Player) SetVolume(volume float64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.volume = volume
	if p.gain != nil {
		speaker.Lock()
		applyVolume(p.gain, volume)
		speaker.Unlock()
	}

	p.emit(Event{Kind: EventVolumeChange, Source: p.source, Value: volume})
}

// applyVolume переводит линейную громкость в логарифмическую шкалу effects.Volume
func applyVolume(gain *effects.Volume, volume float64) {
	if volume <= 0 || math.IsNaN(volume) {
		gain.Silent = true
		gain.Volume = 0
		return
	}
	gain.Silent = false
	gain.Volume = math.Log2(volume)
}

// Subscribe регистрирует обработчик событий указанного типа
func (p *Player) Subscribe(kind EventKind, fn func(Event)) func() {
	p.subsMutex.Lock()
	defer p.subsMutex.Unlock()

	if p.subs[kind] == nil {
		p.subs[kind] = make(map[int]func(Event))
	}
	id := p.nextSubID
	p.nextSubID++
	p.subs[kind][id] = fn

	return func() {
		p.subsMutex.Lock()
		defer p.subsMutex.Unlock()
		delete(p.subs[kind], id)
	}
}

// Close останавливает воспроизведение и освобождает ресурсы
func (p *Player) Close() error {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil
	}
	p.closed = true
	p.stopInternal()
	p.source = ""
	p.generation++
	p.mutex.Unlock()

	// Прерывает загрузку, идущую в Play
	p.cancel()

	p.subsMutex.Lock()
	p.subs = make(map[EventKind]map[int]func(Event))
	p.subsMutex.Unlock()
	return nil
}

// stopInternal внутренний метод остановки (должен вызываться под мьютексом)
func (p *Player) stopInternal() {
	if p.ctrl != nil {
		speaker.Clear()
	}
	p.release()
}

// release закрывает поток и отменяет мониторинг без обращения к динамикам
// (должен вызываться под мьютексом)
func (p *Player) release() {
	if p.monitorCancel != nil {
		p.monitorCancel()
		p.monitorCancel = nil
	}

	p.ctrl = nil
	p.gain = nil

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
}

// emit ставит событие в очередь; при переполнении событие отбрасывается
func (p *Player) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
	}
}

// dispatch доставляет события подписчикам
func (p *Player) dispatch() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case ev := <-p.events:
			for _, fn := range p.subscribers(ev.Kind) {
				fn(ev)
			}
		}
	}
}

func (p *Player) subscribers(kind EventKind) []func(Event) {
	p.subsMutex.Lock()
	defer p.subsMutex.Unlock()

	fns := make([]func(Event), 0, len(p.subs[kind]))
	for _, fn := range p.subs[kind] {
		fns = append(fns, fn)
	}
	return fns
}

// monitorProgress периодически отправляет текущую позицию, пока трек не на паузе
func (p *Player) monitorProgress(ctx context.Context, src string) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mutex.Lock()
			if p.streamer == nil || p.ctrl == nil {
				p.mutex.Unlock()
				return
			}

			speaker.Lock()
			paused := p.ctrl.Paused
			position := p.format.SampleRate.D(p.streamer.Position())
			speaker.Unlock()
			p.mutex.Unlock()

			if !paused {
				p.emit(Event{Kind: EventTimeUpdate, Source: src, Value: position.Seconds()})
			}
		}
	}
}
