package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"recipegen/internal/config"
)

const defaultConfigPath = "recipegen.yaml"

// loadConfig reads the project config. Without an explicit --config, a
// missing default file falls back to built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, err
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
