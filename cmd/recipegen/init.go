package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"recipegen/internal/config"
)

func initCmd() *cobra.Command {
	var archivePath string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter recipegen.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(configPath, archivePath, force)
		},
	}
	cmd.Flags().StringVar(&archivePath, "archive", "", "Server archive to record in the config")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}

func runInit(path, archivePath string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.Default()
	if archivePath != "" {
		cfg.Archive = archivePath
	}
	contents, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s.\n", path)
	return nil
}
