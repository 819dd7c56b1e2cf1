// Package metadata предоставляет функционал для импорта альбомов из каталогов с MP3
package metadata

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hazadus/go-album-player/internal/data"
)

// ErrNoTracks возвращается, если в каталоге нет пригодных MP3 файлов
var ErrNoTracks = errors.New("в каталоге нет MP3 файлов")

// Имена файлов обложки в порядке приоритета
var coverNames = []string{"cover.jpg", "cover.png", "folder.jpg"}

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artist      string
	Title       string
	Album       string
	Year        int
	TrackNumber int
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct {
	duration func(filePath string) (time.Duration, error)
}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	e := &Extractor{}
	e.duration = e.GetDuration
	return e
}

// ExtractFromReader извлекает метаданные из io.Reader
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return e.getDefaultMetadata(source)
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return e.getDefaultMetadata(source)
	}

	result := TrackMetadata{
		Artist: metadata.Artist(),
		Title:  metadata.Title(),
		Album:  metadata.Album(),
		Year:   metadata.Year(),
	}
	result.TrackNumber, _ = metadata.Track()

	// Пустые теги дополняем данными из имени файла
	fallback := e.getDefaultMetadata(source)
	if result.Title == "" {
		result.Title = fallback.Title
	}
	if result.Artist == "" {
		result.Artist = fallback.Artist
	}
	return result
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// GetDuration получает длительность MP3 файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, errors.Wrap(err, "ошибка открытия файла")
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, errors.Wrap(err, "ошибка декодирования MP3")
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// ExtractTrack собирает трек каталога из MP3 файла.
// AudioSrc - абсолютный путь к файлу.
func (e *Extractor) ExtractTrack(filePath string) (data.Track, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return data.Track{}, errors.Wrap(err, "ошибка получения абсолютного пути")
	}

	duration, err := e.duration(absPath)
	if err != nil {
		return data.Track{}, errors.Wrap(err, "ошибка получения длительности")
	}

	metadata := e.ExtractFromFile(absPath)
	return data.Track{
		Title:    metadata.Title,
		AudioSrc: absPath,
		Duration: duration.Seconds(),
	}, nil
}

type scannedTrack struct {
	track    data.Track
	metadata TrackMetadata
	fileName string
}

// ScanDirectory собирает альбом из MP3 файлов каталога.
// Пустой slug заменяется slug-ом имени каталога.
func (e *Extractor) ScanDirectory(dir, slug string) (*data.Album, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка чтения каталога")
	}

	scanned := make([]scannedTrack, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			continue
		}

		filePath := filepath.Join(dir, entry.Name())
		track, err := e.ExtractTrack(filePath)
		if err != nil {
			zlog.Warn().Err(err).Str("file", filePath).Msg("файл пропущен")
			continue
		}
		scanned = append(scanned, scannedTrack{
			track:    track,
			metadata: e.ExtractFromFile(filePath),
			fileName: entry.Name(),
		})
	}

	if len(scanned) == 0 {
		return nil, errors.Wrapf(ErrNoTracks, "каталог %s", dir)
	}

	sortScanned(scanned)

	dirName := filepath.Base(filepath.Clean(dir))
	first := scanned[0].metadata
	album := &data.Album{
		Slug:     slug,
		Title:    first.Album,
		Artist:   first.Artist,
		CoverArt: findCover(dir),
		Tracks:   make([]data.Track, 0, len(scanned)),
	}
	if album.Slug == "" {
		album.Slug = Slugify(dirName)
	}
	if album.Title == "" {
		album.Title = dirName
	}
	if first.Year > 0 {
		album.ReleaseInfo = strconv.Itoa(first.Year)
	}

	for i, s := range scanned {
		s.track.ID = i + 1
		album.Tracks = append(album.Tracks, s.track)
	}

	zlog.Info().Str("slug", album.Slug).Int("tracks", len(album.Tracks)).Msg("каталог просканирован")
	return album, nil
}

// sortScanned упорядочивает треки по номеру из тегов, затем по имени файла.
// Треки без номера идут после пронумерованных.
func sortScanned(scanned []scannedTrack) {
	sort.SliceStable(scanned, func(i, j int) bool {
		a, b := scanned[i].metadata.TrackNumber, scanned[j].metadata.TrackNumber
		if a != b {
			if a == 0 {
				return false
			}
			if b == 0 {
				return true
			}
			return a < b
		}
		return scanned[i].fileName < scanned[j].fileName
	})
}

// findCover возвращает абсолютный путь к обложке или пустую строку
func findCover(dir string) string {
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// Slugify переводит строку в slug: нижний регистр, без диакритики,
// буквы и цифры через дефис
func Slugify(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Пытаемся разобрать имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackMetadata{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return TrackMetadata{
		Artist: "Unknown Artist",
		Title:  nameWithoutExt,
	}
}
