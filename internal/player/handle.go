package player

import "github.com/cockroachdb/errors"

var (
	// ErrNoSource возвращается при попытке воспроизведения без источника
	ErrNoSource = errors.New("источник не задан")
	// ErrClosed возвращается при обращении к закрытому плееру
	ErrClosed = errors.New("плеер закрыт")
)

// EventKind определяет тип уведомления от плеера
type EventKind int

const (
	// EventTimeUpdate - изменилась текущая позиция
	EventTimeUpdate EventKind = iota
	// EventDurationChange - стала известна длительность источника
	EventDurationChange
	// EventVolumeChange - изменилась громкость
	EventVolumeChange
	// EventEnded - воспроизведение источника завершено
	EventEnded
)

// String возвращает строковое представление типа события
func (k EventKind) String() string {
	switch k {
	case EventTimeUpdate:
		return "timeupdate"
	case EventDurationChange:
		return "durationchange"
	case EventVolumeChange:
		return "volumechange"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event - уведомление от плеера
type Event struct {
	Kind   EventKind
	Source string  // Источник, к которому относится событие
	Value  float64 // Позиция или длительность в секундах, либо громкость в [0,1]
}

// Handle - управляющий объект воспроизведения одного источника.
//
// Подписчики вызываются асинхронно, из отдельной горутины, и никогда
// изнутри методов Handle. Порядок уведомлений относительно вызовов
// методов не гарантируется.
type Handle interface {
	// SetSource заменяет источник; позиция сбрасывается в 0
	SetSource(src string) error
	Source() string
	Play() error
	Pause()
	// CurrentTime возвращает позицию в секундах
	CurrentTime() float64
	SetCurrentTime(seconds float64) error
	// Duration возвращает длительность в секундах или NaN, пока она неизвестна
	Duration() float64
	Volume() float64
	SetVolume(volume float64)
	// Subscribe регистрирует обработчик и возвращает функцию отписки
	Subscribe(kind EventKind, fn func(Event)) (unsubscribe func())
	Close() error
}
