// Package catalog содержит логику чтения каталога альбомов
package catalog

import (
	"strings"

	"github.com/hazadus/go-album-player/internal/data"
	"github.com/hazadus/go-album-player/internal/streaming"
)

// Manager предоставляет доступ к альбомам библиотеки только для чтения
type Manager struct {
	library *data.Library
}

// NewManager создает новый экземпляр Manager
func NewManager(library *data.Library) *Manager {
	return &Manager{
		library: library,
	}
}

// ListAlbums возвращает список всех альбомов
func (m *Manager) ListAlbums() []data.Album {
	return m.library.Albums
}

// Find возвращает альбом по slug
func (m *Manager) Find(slug string) (*data.Album, error) {
	return m.library.AlbumBySlug(slug)
}

// Search возвращает альбомы, у которых название или исполнитель содержат запрос
func (m *Manager) Search(query string) []data.Album {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return m.ListAlbums()
	}

	result := make([]data.Album, 0)
	for _, album := range m.library.Albums {
		if strings.Contains(strings.ToLower(album.Title), query) ||
			strings.Contains(strings.ToLower(album.Artist), query) {
			result = append(result, album)
		}
	}
	return result
}

// BaseDir возвращает каталог, относительно которого разрешаются пути к аудио
func (m *Manager) BaseDir() string {
	return m.library.BaseDir
}

// MissingSources возвращает индексы треков, аудиофайлы которых не найдены
func (m *Manager) MissingSources(album *data.Album) []int {
	var missing []int
	for i, track := range album.Tracks {
		if !streaming.Available(track.AudioSrc, m.library.BaseDir) {
			missing = append(missing, i)
		}
	}
	return missing
}
