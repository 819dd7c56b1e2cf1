// Package data содержит модель каталога альбомов и работу с файлом библиотеки
package data

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-album-player/internal/utils"
)

//go:embed albums.yaml
var builtinAlbums []byte

var (
	// ErrNotFound возвращается, если альбом с указанным slug отсутствует
	ErrNotFound = errors.New("альбом не найден")
	// ErrInvalidAlbum возвращается при попытке добавить некорректный альбом
	ErrInvalidAlbum = errors.New("некорректный альбом")
)

// Track описывает одну песню альбома
type Track struct {
	ID       int     `yaml:"id"`
	Title    string  `yaml:"title"`
	AudioSrc string  `yaml:"audio_src"` // путь к файлу или URL
	Duration float64 `yaml:"duration"`  // Номинальная длительность в секундах
}

// Album описывает альбом: метаданные и упорядоченный список треков
type Album struct {
	Slug        string  `yaml:"slug"`
	Title       string  `yaml:"title"`
	Artist      string  `yaml:"artist"`
	ReleaseInfo string  `yaml:"release_info"`
	CoverArt    string  `yaml:"cover_art"`
	Tracks      []Track `yaml:"tracks"`
}

// TotalDuration возвращает суммарную номинальную длительность альбома в секундах
func (a *Album) TotalDuration() float64 {
	var total float64
	for _, t := range a.Tracks {
		total += t.Duration
	}
	return total
}

// LastIndex возвращает индекс последнего трека (-1 для пустого альбома)
func (a *Album) LastIndex() int {
	return len(a.Tracks) - 1
}

// Library хранит все альбомы каталога
type Library struct {
	Albums []Album `yaml:"albums"`

	// BaseDir - каталог файла библиотеки, относительно него
	// разрешаются относительные пути к аудиофайлам
	BaseDir string `yaml:"-"`
}

// NewLibrary создает пустую библиотеку
func NewLibrary() *Library {
	return &Library{
		Albums: make([]Album, 0),
	}
}

// BuiltinLibrary возвращает встроенный демонстрационный каталог
func BuiltinLibrary() (*Library, error) {
	lib := NewLibrary()
	if err := lib.parse(builtinAlbums); err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadData загружает библиотеку из файла.
// Если файла нет или он пуст, используется встроенный каталог.
func (l *Library) LoadData(filePath string) error {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "ошибка чтения файла библиотеки")
	}
	if len(content) == 0 {
		content = builtinAlbums
	}

	if err := l.parse(content); err != nil {
		return err
	}
	l.BaseDir = filepath.Dir(path)
	return nil
}

func (l *Library) parse(content []byte) error {
	parsed := NewLibrary()
	if err := yaml.Unmarshal(content, parsed); err != nil {
		return errors.Wrap(err, "ошибка разбора библиотеки")
	}

	for i := range parsed.Albums {
		assignTrackIDs(&parsed.Albums[i])
	}

	l.Albums = parsed.Albums
	return nil
}

// SaveData сохраняет библиотеку в файл
func (l *Library) SaveData(filePath string) error {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return err
	}

	content, err := yaml.Marshal(l)
	if err != nil {
		return errors.Wrap(err, "ошибка сериализации библиотеки")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "ошибка создания каталога библиотеки")
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.Wrap(err, "ошибка записи файла библиотеки")
	}
	return nil
}

// AlbumBySlug возвращает альбом по точному совпадению slug
func (l *Library) AlbumBySlug(slug string) (*Album, error) {
	for i := range l.Albums {
		if l.Albums[i].Slug == slug {
			return &l.Albums[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "slug %q", slug)
}

// AddAlbum добавляет альбом в библиотеку
func (l *Library) AddAlbum(album Album) error {
	album.Slug = strings.TrimSpace(album.Slug)
	if album.Slug == "" {
		return errors.Wrap(ErrInvalidAlbum, "пустой slug")
	}
	if len(album.Tracks) == 0 {
		return errors.Wrapf(ErrInvalidAlbum, "в альбоме %q нет треков", album.Slug)
	}
	if _, err := l.AlbumBySlug(album.Slug); err == nil {
		return errors.Wrapf(ErrInvalidAlbum, "альбом %q уже существует", album.Slug)
	}

	assignTrackIDs(&album)
	l.Albums = append(l.Albums, album)
	return nil
}

// assignTrackIDs назначает трекам без ID последовательные номера
func assignTrackIDs(album *Album) {
	for i := range album.Tracks {
		if album.Tracks[i].ID == 0 {
			album.Tracks[i].ID = i + 1
		}
	}
}
