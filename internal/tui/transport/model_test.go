package transport

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-album-player/internal/data"
	"github.com/hazadus/go-album-player/internal/playback"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)

	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.format(65) != "1:05" {
		t.Errorf("Expected default formatter, got %s", model.format(65))
	}
	if model.snapshot.State != playback.Stopped() {
		t.Errorf("Expected stopped state, got %v", model.snapshot.State)
	}
}

func TestKeyIntents(t *testing.T) {
	tests := []struct {
		key      tea.KeyMsg
		expected tea.Msg
	}{
		{tea.KeyMsg{Type: tea.KeySpace}, TrackToggleMsg{}},
		{runes("p"), PauseToggleMsg{}},
		{runes("b"), PreviousMsg{}},
		{runes("["), PreviousMsg{}},
		{runes("n"), NextMsg{}},
		{runes("]"), NextMsg{}},
	}

	model := NewModel(nil)
	for _, tt := range tests {
		_, cmd := model.Update(tt.key)
		if cmd == nil {
			t.Errorf("Key %q: expected command", tt.key.String())
			continue
		}
		if msg := cmd(); msg != tt.expected {
			t.Errorf("Key %q: expected %T, got %T", tt.key.String(), tt.expected, msg)
		}
	}
}

func TestUnknownKeyIgnored(t *testing.T) {
	model := NewModel(nil)
	if _, cmd := model.Update(runes("x")); cmd != nil {
		t.Error("Expected no command for unknown key")
	}
}

func TestSeekKeys(t *testing.T) {
	model := NewModel(nil)
	model.SetState(playback.Snapshot{State: playback.Playing(0), CurrentTime: 100, Duration: 200})

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRight})
	if msg, ok := cmd().(SeekMsg); !ok || math.Abs(msg.Fraction-0.55) > 1e-9 {
		t.Errorf("Expected SeekMsg{0.55}, got %+v", msg)
	}

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if msg, ok := cmd().(SeekMsg); !ok || math.Abs(msg.Fraction-0.45) > 1e-9 {
		t.Errorf("Expected SeekMsg{0.45}, got %+v", msg)
	}

	// Перемотка ограничена концом трека
	model.SetState(playback.Snapshot{State: playback.Playing(0), CurrentTime: 199, Duration: 200})
	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	if msg, ok := cmd().(SeekMsg); !ok || msg.Fraction != 1 {
		t.Errorf("Expected SeekMsg{1}, got %+v", msg)
	}
}

func TestSeekWithoutDuration(t *testing.T) {
	model := NewModel(nil)
	model.SetState(playback.Snapshot{Duration: math.NaN()})

	if _, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRight}); cmd != nil {
		t.Error("Expected no seek without known duration")
	}
}

func TestVolumeKeys(t *testing.T) {
	model := NewModel(nil)
	model.SetState(playback.Snapshot{Volume: 0.8})

	_, cmd := model.Update(runes("+"))
	if msg, ok := cmd().(VolumeChangeMsg); !ok || msg.Volume != 0.9 {
		t.Errorf("Expected VolumeChangeMsg{0.9}, got %+v", msg)
	}

	_, cmd = model.Update(runes("-"))
	if msg, ok := cmd().(VolumeChangeMsg); !ok || msg.Volume != 0.7 {
		t.Errorf("Expected VolumeChangeMsg{0.7}, got %+v", msg)
	}
}

func TestStepVolumeClamps(t *testing.T) {
	if v := stepVolume(0.95, volumeStep); v != 1 {
		t.Errorf("Expected 1, got %v", v)
	}
	if v := stepVolume(0.05, -volumeStep); v != 0 {
		t.Errorf("Expected 0, got %v", v)
	}
}

func TestView(t *testing.T) {
	track := data.Track{ID: 2, Title: "Green", Duration: 103.96}
	model := NewModel(nil)
	model.SetState(playback.Snapshot{
		State:       playback.Playing(1),
		Track:       &track,
		CurrentTime: 65,
		Duration:    103.96,
		Volume:      0.5,
	})

	view := model.View()
	for _, expected := range []string{"Воспроизведение", "Green", "1:05 / 1:43", "50%"} {
		if !strings.Contains(view, expected) {
			t.Errorf("Expected view to contain %q, got:\n%s", expected, view)
		}
	}
}

func TestViewUsesFormatter(t *testing.T) {
	model := NewModel(func(float64) string { return "X" })

	if view := model.View(); !strings.Contains(view, "X / X") {
		t.Errorf("Expected custom formatter output, got:\n%s", view)
	}
	if view := model.View(); !strings.Contains(view, "Стоп") {
		t.Errorf("Expected stopped status, got:\n%s", view)
	}
}
