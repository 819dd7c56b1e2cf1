// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-album-player/internal/logger"
	"github.com/hazadus/go-album-player/internal/utils"
)

// DefaultPath - путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.albumplayer/config.yaml"

// Config структура для хранения конфигурации приложения
type Config struct {
	LibraryPath string         `yaml:"library_path" default:"~/.albumplayer/albums.yaml" validate:"required"`
	Playback    PlaybackConfig `yaml:"playback"`
	Log         LogConfig      `yaml:"log"`
}

// PlaybackConfig содержит настройки воспроизведения
type PlaybackConfig struct {
	// Нулевое значение заменяется значением по умолчанию
	DefaultVolume float64 `yaml:"default_volume" default:"0.8" validate:"gte=0,lte=1"`
	BufferSizeKB  int     `yaml:"buffer_size_kb" default:"256" validate:"gte=16,lte=65536"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"file" validate:"oneof=stdout stderr file discard"`
	File   string `yaml:"file" default:"~/.albumplayer/albumplayer.log"`
}

// BufferSize возвращает размер буфера потокового чтения в байтах
func (p PlaybackConfig) BufferSize() int {
	return p.BufferSizeKB * 1024
}

// Logger возвращает настройки для пакета logger
func (l LogConfig) Logger() logger.Config {
	return logger.Config{
		Output: l.Output,
		Level:  l.Level,
		File:   l.File,
	}
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не считается ошибкой: используются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, errors.Wrap(err, "ошибка разбора файла конфигурации")
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrap(err, "ошибка чтения файла конфигурации")
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "ошибка установки значений по умолчанию")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Раскрываем тильду в пути библиотеки
	if cfg.LibraryPath, err = utils.ExpandHome(cfg.LibraryPath); err != nil {
		return nil, err
	}

	return cfg, nil
}

// overrideFromEnv переопределяет значения из переменных окружения
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("ALBUMPLAYER_LIBRARY"); v != "" {
		c.LibraryPath = v
	}
	if v := os.Getenv("ALBUMPLAYER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ALBUMPLAYER_VOLUME"); v != "" {
		volume, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "некорректное значение ALBUMPLAYER_VOLUME: %q", v)
		}
		c.Playback.DefaultVolume = volume
	}
	return nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "ошибка проверки конфигурации")
	}
	return nil
}
