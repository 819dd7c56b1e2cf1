package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-album-player/internal/metadata"
	"github.com/hazadus/go-album-player/internal/utils"
)

// createImportCommand создает команду import с привязкой к экземпляру приложения
func (app *Application) createImportCommand() *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "import [directory]",
		Short: "Import a directory of mp3 files as an album",
		Long:  `Scan a directory of mp3 files, build an album from their tags and add it to the library file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.importAlbum(args[0], slug)
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "album slug (default: derived from the directory name)")
	return cmd
}

func (app *Application) importAlbum(dir, slug string) error {
	fmt.Printf("🔍 Сканируем каталог: %s\n", dir)

	album, err := metadata.NewExtractor().ScanDirectory(dir, slug)
	if err != nil {
		return errors.Wrap(err, "ошибка сканирования каталога")
	}

	if err := app.Library.AddAlbum(*album); err != nil {
		return err
	}
	if err := app.Library.SaveData(app.Config.LibraryPath); err != nil {
		return err
	}

	fmt.Printf("✅ Альбом добавлен в библиотеку:\n")
	fmt.Printf("   Slug: %s\n", album.Slug)
	fmt.Printf("   Исполнитель: %s\n", album.Artist)
	fmt.Printf("   Название: %s\n", album.Title)
	fmt.Printf("   Треков: %d\n", len(album.Tracks))
	fmt.Printf("   Длительность: %s\n", utils.FormatDuration(utils.SecondsToDuration(album.TotalDuration())))
	return nil
}
