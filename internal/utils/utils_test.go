package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{65, "1:05"},
		{5, "--:05"},
		{60, "1:--"},
		{0, "--:--"},
		{130, "2:10"},
		{161.71, "2:41"},
		{599.99, "9:59"},
		{3605, "--:05"},
		{-1, "--:--"},
		{math.NaN(), "--:--"},
		{math.Inf(1), "--:--"},
	}

	for _, test := range tests {
		result := FormatTime(test.seconds)
		if result != test.expected {
			t.Errorf("FormatTime(%v) = %s; expected %s", test.seconds, result, test.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{60 * time.Second, "00:01:00"},
		{61*time.Minute + 1*time.Second, "01:01:01"},
		{25*time.Hour + 45*time.Minute + 30*time.Second, "25:45:30"},
	}

	for _, test := range tests {
		result := FormatDuration(test.duration)
		if result != test.expected {
			t.Errorf("FormatDuration(%v) = %s; expected %s", test.duration, result, test.expected)
		}
	}
}

func TestSecondsToDuration(t *testing.T) {
	if got := SecondsToDuration(1.5); got != 1500*time.Millisecond {
		t.Errorf("SecondsToDuration(1.5) = %v", got)
	}
	if got := SecondsToDuration(math.NaN()); got != 0 {
		t.Errorf("SecondsToDuration(NaN) = %v; expected 0", got)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a very long string", 10, "this is..."},
		{"abcd", 3, "abc"},
		{"Голубой период", 8, "Голуб..."},
	}

	for _, test := range tests {
		result := TruncateString(test.input, test.maxLen)
		if result != test.expected {
			t.Errorf("TruncateString(%s, %d) = %s; expected %s", test.input, test.maxLen, result, test.expected)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("домашний каталог недоступен")
	}

	got, err := ExpandHome("~/.albumplayer/albums.yaml")
	if err != nil {
		t.Fatalf("Ошибка раскрытия пути: %v", err)
	}
	if got != filepath.Join(home, ".albumplayer", "albums.yaml") {
		t.Errorf("Неожиданный путь: %s", got)
	}

	got, _ = ExpandHome("/tmp/albums.yaml")
	if got != "/tmp/albums.yaml" {
		t.Errorf("Абсолютный путь не должен меняться: %s", got)
	}
}
