package main

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/hazadus/go-album-player/internal/playback"
)

// volumeFromConfig - значение флага --volume, при котором берется громкость из конфигурации
const volumeFromConfig = -1

// resolveVolume выбирает начальную громкость: флаг, если задан, иначе конфигурация
func (app *Application) resolveVolume(flagValue float64) (float64, error) {
	if flagValue == volumeFromConfig {
		return app.Config.Playback.DefaultVolume, nil
	}
	if math.IsNaN(flagValue) || flagValue < 0 || flagValue > 1 {
		return 0, errors.Wrapf(playback.ErrInvalidInput, "громкость %v вне диапазона [0,1]", flagValue)
	}
	return flagValue, nil
}
