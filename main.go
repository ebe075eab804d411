package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/wavecraft-audio/wavecraft/cmd"
	"github.com/wavecraft-audio/wavecraft/internal/conf"
	"github.com/wavecraft-audio/wavecraft/internal/logging"
)

func main() {
	// Initialize the logging system first so every component can obtain
	// its service logger.
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if settings.Main.Log.Enabled {
		fileLogger, closeLogger, err := logging.NewFileLogger(
			settings.Main.Log.Path, settings.Main.Name, slog.LevelInfo,
			logging.RotationSettings{
				MaxSizeMB:  settings.Main.Log.MaxSizeMB,
				MaxBackups: settings.Main.Log.MaxBackups,
				MaxAgeDays: settings.Main.Log.MaxAgeDays,
			})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer closeLogger() //nolint:errcheck
		slog.SetDefault(fileLogger)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command error: %v\n", err)
		os.Exit(1)
	}
}
