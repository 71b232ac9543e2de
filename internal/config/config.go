package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"recipegen/internal/archive"
	"recipegen/internal/document"
	"recipegen/internal/record"
	"recipegen/internal/tags"
)

type ProjectConfig struct {
	Version      int                  `yaml:"version"`
	Archive      string               `yaml:"archive"`
	Output       OutputConfig         `yaml:"output"`
	InnerArchive archive.InnerPattern `yaml:"inner_archive"`
	Layouts      []Layout             `yaml:"layouts"`
	Tags         TagsConfig           `yaml:"tags"`
	Database     DatabaseConfig       `yaml:"database"`
	Fields       record.Fields        `yaml:"fields"`
}

type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// Layout names where one schema revision keeps its recipe and tag files.
type Layout struct {
	Name    string `yaml:"name"`
	Recipes string `yaml:"recipes"`
	Tags    string `yaml:"tags"`
}

type TagsConfig struct {
	Mode      string `yaml:"mode"`
	MaxRounds int    `yaml:"max_rounds"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

func Default() *ProjectConfig {
	return &ProjectConfig{
		Version: 1,
		Archive: "server.jar",
		Output: OutputConfig{
			Path:   "recipes/recipes.json",
			Format: string(document.FormatJSON),
		},
		InnerArchive: archive.DefaultInnerPattern(),
		Layouts: []Layout{
			{Name: "1.21", Recipes: "data/minecraft/recipe/", Tags: "data/*/tags/item/"},
			{Name: "legacy", Recipes: "data/minecraft/recipes/", Tags: "data/*/tags/items/"},
		},
		Tags:   TagsConfig{Mode: string(tags.ModeConverge)},
		Fields: record.DefaultFields(),
	}
}

// LoadProjectConfig reads path on top of Default, so any key left out of
// the file keeps its default value.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	cfg.Fields = cfg.Fields.WithDefaults()

	if err := validateProjectConfig(cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if _, err := document.ParseFormat(cfg.Output.Format); err != nil {
		return err
	}
	if _, err := tags.ParseMode(cfg.Tags.Mode); err != nil {
		return err
	}
	if cfg.Tags.MaxRounds < 0 {
		return fmt.Errorf("tags max_rounds must not be negative")
	}
	if len(cfg.Layouts) == 0 {
		return fmt.Errorf("at least one layout is required")
	}

	seen := make(map[string]struct{})
	for i, layout := range cfg.Layouts {
		if strings.TrimSpace(layout.Name) == "" {
			return fmt.Errorf("layout %d name is required", i)
		}
		if err := validatePrefix(layout.Recipes); err != nil {
			return fmt.Errorf("layout %s recipes: %w", layout.Name, err)
		}
		if err := validatePrefix(layout.Tags); err != nil {
			return fmt.Errorf("layout %s tags: %w", layout.Name, err)
		}
		key := strings.ToLower(layout.Name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("duplicate layout name: %s", layout.Name)
		}
		seen[key] = struct{}{}
	}

	return cfg.Fields.Validate()
}

func validatePrefix(prefix string) error {
	if strings.TrimSpace(prefix) == "" {
		return fmt.Errorf("path prefix is required")
	}
	if !strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("path prefix %q must end with /", prefix)
	}
	return nil
}

// Layout returns the layout with the given name.
func (c *ProjectConfig) Layout(name string) (Layout, bool) {
	for _, layout := range c.Layouts {
		if strings.EqualFold(layout.Name, name) {
			return layout, true
		}
	}
	return Layout{}, false
}

func (c *ProjectConfig) TagOptions() tags.Options {
	mode, err := tags.ParseMode(c.Tags.Mode)
	if err != nil {
		mode = tags.ModeConverge
	}
	return tags.Options{Mode: mode, MaxRounds: c.Tags.MaxRounds}
}

func (c *ProjectConfig) OutputFormat() document.Format {
	format, err := document.ParseFormat(c.Output.Format)
	if err != nil {
		return document.FormatJSON
	}
	return format
}
