// Package utils содержит утилитарные функции, используемые в разных частях приложения
package utils

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	placeholderMinutes = "--:"
	placeholderSeconds = "--"
)

// FormatTime форматирует позицию или длительность в секундах в вид M:SS.
//
// Нулевая компонента (минуты или секунды) выводится заглушкой "--",
// поэтому ноль неотличим от неизвестного значения: FormatTime(5) == "--:05",
// FormatTime(60) == "1:--". Часы отбрасываются (минуты считаются по модулю часа).
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return placeholderMinutes + placeholderSeconds
	}

	rem := math.Mod(seconds, 3600)
	m := int(math.Floor(rem / 60))
	s := int(math.Floor(math.Mod(rem, 60)))

	minutes := placeholderMinutes
	if m > 0 {
		minutes = strconv.Itoa(m) + ":"
	}

	secs := placeholderSeconds
	if s > 0 {
		secs = fmt.Sprintf("%02d", s)
	}

	return minutes + secs
}

// FormatDuration форматирует time.Duration в формат HH:MM:SS
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// SecondsToDuration переводит секунды с дробной частью в time.Duration
func SecondsToDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// TruncateString обрезает строку до указанной длины в символах, добавляя "..." если строка длиннее
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// ExpandHome раскрывает ведущую тильду в пути
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home + strings.TrimPrefix(path, "~"), nil
}
