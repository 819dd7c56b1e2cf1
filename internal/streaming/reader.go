// Package streaming открывает источники аудио: локальные файлы и HTTP-потоки
package streaming

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultBufferSize - размер буфера потокового чтения по умолчанию
const DefaultBufferSize = 256 * 1024

// Reader представляет буферизованный HTTP-поток для чтения данных порциями
type Reader struct {
	reader *bufio.Reader
	body   io.ReadCloser
}

// httpClient без общего таймаута: поток читается все время воспроизведения
var httpClient = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       300 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// IsRemote сообщает, является ли источник HTTP(S) адресом
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Resolve разрешает относительный путь к файлу относительно baseDir.
// URL и абсолютные пути возвращаются без изменений.
func Resolve(src, baseDir string) string {
	if IsRemote(src) || filepath.IsAbs(src) || baseDir == "" {
		return src
	}
	return filepath.Join(baseDir, src)
}

// Available сообщает, доступен ли источник. URL считаются доступными
// без обращения к сети, файлы проверяются на диске.
func Available(src, baseDir string) bool {
	if src == "" {
		return false
	}
	if IsRemote(src) {
		return true
	}
	_, err := os.Stat(Resolve(src, baseDir))
	return err == nil
}

// Open открывает источник для чтения.
// Для файлов возвращается *os.File (поддерживает перемотку), для URL - *Reader.
func Open(ctx context.Context, src, baseDir string, bufferSize int) (io.ReadCloser, error) {
	if src == "" {
		return nil, errors.New("пустой источник")
	}
	if IsRemote(src) {
		return NewReader(ctx, src, bufferSize)
	}

	file, err := os.Open(Resolve(src, baseDir))
	if err != nil {
		return nil, errors.Wrap(err, "ошибка открытия файла")
	}
	return file, nil
}

// NewReader создает новый потоковый ридер
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка создания запроса")
	}

	// Сжатие отключено: декодеру нужен исходный поток
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Range", "bytes=0-")
	req.Header.Set("User-Agent", "go-album-player/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка выполнения запроса")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, errors.Newf("ошибка HTTP: %s", resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		body:   resp.Body,
	}, nil
}

// Read реализует интерфейс io.Reader для потокового чтения
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.body.Close()
}
