package main

import (
	"github.com/spf13/cobra"

	"github.com/hazadus/go-album-player/internal/config"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "albumplayer",
		Short: "A terminal album player",
		Long:  `A terminal album player: browse the album library and play albums track by track from local files or URLs.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.initialize(configPath)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the config file")

	// Добавляем команды, передавая в них экземпляр приложения
	rootCmd.AddCommand(app.createListCommand())
	rootCmd.AddCommand(app.createShowCommand())
	rootCmd.AddCommand(app.createPlayCommand())
	rootCmd.AddCommand(app.createImportCommand())

	return rootCmd
}
