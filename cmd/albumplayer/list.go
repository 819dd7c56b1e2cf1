package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-album-player/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List albums from the library",
		Long:  `Display a list of albums in the library, optionally filtered by title or artist.`,
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			app.listAlbums(query)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter albums by title or artist")
	return cmd
}

func (app *Application) listAlbums(query string) {
	albums := app.catalog().Search(query)
	if len(albums) == 0 {
		if query != "" {
			fmt.Printf("🔍 По запросу %q ничего не найдено\n", query)
			return
		}
		fmt.Println("📚 Библиотека пуста. Добавьте альбом с помощью команды 'import'.")
		return
	}

	fmt.Printf("📚 Найдено альбомов: %d\n\n", len(albums))

	// Выводим заголовок таблицы
	fmt.Printf("%-20s %-25s %-30s %-6s %-10s\n",
		"Slug", "Исполнитель", "Название", "Треки", "Длительность")
	fmt.Println(strings.Repeat("-", 95))

	for _, album := range albums {
		fmt.Printf("%-20s %-25s %-30s %-6d %-10s\n",
			utils.TruncateString(album.Slug, 20),
			utils.TruncateString(album.Artist, 25),
			utils.TruncateString(album.Title, 30),
			len(album.Tracks),
			utils.FormatDuration(utils.SecondsToDuration(album.TotalDuration())))
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'albumplayer play [slug]' для воспроизведения альбома")
}
