package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-album-player/internal/utils"
)

// createShowCommand создает команду show с привязкой к экземпляру приложения
func (app *Application) createShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [slug]",
		Short: "Show album details",
		Long:  `Display album details and its track list.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.showAlbum(args[0])
		},
	}
}

func (app *Application) showAlbum(slug string) error {
	album, err := app.catalog().Find(slug)
	if err != nil {
		return err
	}

	fmt.Printf("💿 %s\n", album.Title)
	fmt.Printf("   Исполнитель: %s\n", album.Artist)
	if album.ReleaseInfo != "" {
		fmt.Printf("   Выпуск: %s\n", album.ReleaseInfo)
	}
	if album.CoverArt != "" {
		fmt.Printf("   Обложка: %s\n", album.CoverArt)
	}
	fmt.Println()

	missing := make(map[int]bool)
	for _, i := range app.catalog().MissingSources(album) {
		missing[i] = true
	}

	fmt.Printf("%-4s %-50s %s\n", "#", "Название", "Длительность")
	fmt.Println(strings.Repeat("-", 70))
	for i, track := range album.Tracks {
		marker := ""
		if missing[i] {
			marker = "  ⚠️ файл не найден"
		}
		fmt.Printf("%-4d %-50s %s%s\n",
			i+1,
			utils.TruncateString(track.Title, 50),
			utils.FormatTime(track.Duration),
			marker)
	}

	if len(missing) > 0 {
		fmt.Printf("\n⚠️  Не найдено аудиофайлов: %d. Добавьте альбом командой import.\n", len(missing))
	}
	return nil
}
