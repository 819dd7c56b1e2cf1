// Package playback содержит контроллер воспроизведения альбома
package playback

import "fmt"

// NoTrack - индекс, означающий отсутствие выбранного трека
const NoTrack = -1

// Status - состояние транспорта
type Status int

const (
	StatusStopped Status = iota // Трек не выбран
	StatusPaused                // Трек выбран, но не играет
	StatusPlaying               // Трек играет
)

// String возвращает строковое представление статуса
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// State - размеченное объединение {Stopped, Paused(track), Playing(track)}.
// Track равен NoTrack тогда и только тогда, когда Status == StatusStopped.
type State struct {
	Status Status
	Track  int
}

// Stopped возвращает состояние без выбранного трека
func Stopped() State {
	return State{Status: StatusStopped, Track: NoTrack}
}

// Paused возвращает состояние выбранного, но не играющего трека
func Paused(track int) State {
	return State{Status: StatusPaused, Track: track}
}

// Playing возвращает состояние играющего трека
func Playing(track int) State {
	return State{Status: StatusPlaying, Track: track}
}

// IsPlaying сообщает, идет ли воспроизведение
func (s State) IsPlaying() bool {
	return s.Status == StatusPlaying
}

// HasTrack сообщает, выбран ли трек
func (s State) HasTrack() bool {
	return s.Track != NoTrack
}

// String возвращает строковое представление состояния
func (s State) String() string {
	if !s.HasTrack() {
		return s.Status.String()
	}
	return fmt.Sprintf("%s(%d)", s.Status, s.Track)
}
