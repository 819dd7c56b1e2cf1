package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-album-player/internal/playback"
	"github.com/hazadus/go-album-player/internal/tui"
)

// errSourcesMissing - ни один аудиофайл альбома не найден
var errSourcesMissing = errors.New("аудиофайлы альбома не найдены")

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand() *cobra.Command {
	var volume float64

	cmd := &cobra.Command{
		Use:   "play [slug]",
		Short: "Play an album",
		Long:  `Open the album view: track list and transport bar for playing the album track by track.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.playAlbum(args[0], volume)
		},
	}

	cmd.Flags().Float64Var(&volume, "volume", volumeFromConfig, "initial volume in [0,1] (default from config)")
	return cmd
}

// newController находит альбом и создает контроллер воспроизведения.
// При ошибке созданный handle закрывается.
func (app *Application) newController(slug string, volumeFlag float64) (*playback.Controller, error) {
	album, err := app.catalog().Find(slug)
	if err != nil {
		return nil, err
	}

	volume, err := app.resolveVolume(volumeFlag)
	if err != nil {
		return nil, err
	}

	handle := app.newHandle()
	controller, err := playback.NewController(album, handle, playback.Config{InitialVolume: volume})
	if err != nil {
		_ = handle.Close()
		return nil, errors.Wrap(err, "ошибка создания контроллера")
	}
	return controller, nil
}

// checkSources проверяет, что аудиофайлы альбома доступны
func (app *Application) checkSources(slug string) error {
	album, err := app.catalog().Find(slug)
	if err != nil {
		return err
	}

	missing := app.catalog().MissingSources(album)
	if len(missing) == len(album.Tracks) {
		return errors.Wrapf(errSourcesMissing, "%s: добавьте альбом командой import", album.Slug)
	}
	if len(missing) > 0 {
		zlog.Warn().Str("album", album.Slug).Ints("tracks", missing).Msg("часть аудиофайлов не найдена")
	}
	return nil
}

func (app *Application) playAlbum(slug string, volumeFlag float64) error {
	if err := app.checkSources(slug); err != nil {
		return err
	}

	controller, err := app.newController(slug, volumeFlag)
	if err != nil {
		return err
	}

	album := controller.Album()
	zlog.Info().Str("album", album.Slug).Msg("запуск плеера")

	// Run закрывает контроллер при любом исходе
	if err := tui.NewApp(controller).Run(); err != nil {
		return errors.Wrap(err, "ошибка TUI")
	}

	fmt.Printf("👋 Альбом %q закрыт\n", album.Title)
	return nil
}
