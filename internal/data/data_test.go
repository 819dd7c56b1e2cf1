package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAlbum(slug string) Album {
	return Album{
		Slug:   slug,
		Title:  "Test Album",
		Artist: "Test Artist",
		Tracks: []Track{
			{Title: "One", AudioSrc: "one.mp3", Duration: 60},
			{Title: "Two", AudioSrc: "two.mp3", Duration: 90.5},
		},
	}
}

func TestBuiltinLibrary(t *testing.T) {
	lib, err := BuiltinLibrary()
	require.NoError(t, err)
	require.NotEmpty(t, lib.Albums)

	album, err := lib.AlbumBySlug("the-colors")
	require.NoError(t, err)
	assert.Equal(t, "Pablo Picasso", album.Artist)
	require.Len(t, album.Tracks, 5)
	assert.Equal(t, "Blue", album.Tracks[0].Title)
	assert.Equal(t, 1, album.Tracks[0].ID)
	assert.Equal(t, 5, album.Tracks[4].ID)
	assert.InDelta(t, 161.71, album.Tracks[0].Duration, 0.001)
}

func TestAlbumBySlugNotFound(t *testing.T) {
	lib, err := BuiltinLibrary()
	require.NoError(t, err)

	album, err := lib.AlbumBySlug("missing")
	assert.Nil(t, album)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestLoadDataMissingFileUsesBuiltin(t *testing.T) {
	dir := t.TempDir()
	lib := NewLibrary()

	require.NoError(t, lib.LoadData(filepath.Join(dir, "albums.yaml")))
	assert.NotEmpty(t, lib.Albums)
	assert.Equal(t, dir, lib.BaseDir)
}

func TestSaveAndLoadData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "albums.yaml")

	lib := NewLibrary()
	require.NoError(t, lib.AddAlbum(sampleAlbum("test")))
	require.NoError(t, lib.SaveData(path))

	loaded := NewLibrary()
	require.NoError(t, loaded.LoadData(path))
	require.Len(t, loaded.Albums, 1)

	album := loaded.Albums[0]
	assert.Equal(t, "test", album.Slug)
	assert.Equal(t, 2, album.Tracks[1].ID)
	assert.InDelta(t, 90.5, album.Tracks[1].Duration, 0.001)
	assert.Equal(t, filepath.Join(dir, "nested"), loaded.BaseDir)
}

func TestLoadDataInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "albums.yaml")
	require.NoError(t, os.WriteFile(path, []byte("albums: [::"), 0644))

	err := NewLibrary().LoadData(path)
	assert.Error(t, err)
}

func TestAddAlbumValidation(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.AddAlbum(sampleAlbum("dup")))

	tests := []struct {
		name  string
		album Album
	}{
		{"empty slug", sampleAlbum("  ")},
		{"duplicate slug", sampleAlbum("dup")},
		{"no tracks", Album{Slug: "empty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lib.AddAlbum(tt.album)
			assert.True(t, errors.Is(err, ErrInvalidAlbum), "ожидалась ErrInvalidAlbum, получено %v", err)
		})
	}
	assert.Len(t, lib.Albums, 1)
}

func TestAlbumHelpers(t *testing.T) {
	album := sampleAlbum("helpers")
	assert.InDelta(t, 150.5, album.TotalDuration(), 0.001)
	assert.Equal(t, 1, album.LastIndex())
	assert.Equal(t, -1, (&Album{}).LastIndex())
}
