package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recipegen/internal/archive"
	"recipegen/internal/config"
	"recipegen/internal/document"
	"recipegen/internal/extract"
	"recipegen/internal/store"
)

var extractFlags struct {
	archive string
	output  string
	format  string
	layout  string
	db      string
	full    bool
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build the recipe document from a server archive",
		Args:  cobra.NoArgs,
		RunE:  runExtract,
	}
	cmd.Flags().StringVar(&extractFlags.archive, "archive", "", "Server archive (overrides config)")
	cmd.Flags().StringVarP(&extractFlags.output, "output", "o", "", "Output document path; .zst or .lz4 suffix compresses")
	cmd.Flags().StringVar(&extractFlags.format, "format", "", "Output format: json or cbor")
	cmd.Flags().StringVar(&extractFlags.layout, "layout", "", "Layout name (default: detect)")
	cmd.Flags().StringVar(&extractFlags.db, "db", "", "Also store the document at this DSN (sqlite:// or postgres://)")
	cmd.Flags().BoolVar(&extractFlags.full, "full", false, "Store even when the archive digest is unchanged")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyExtractFlags(cfg); err != nil {
		return err
	}
	logger := newLogger()

	src, err := archive.Open(cfg.Archive, cfg.InnerArchive)
	if err != nil {
		return err
	}
	if src.Inner() != "" {
		logger.Debug("reading nested server archive", "entry", src.Inner())
	}

	layout, err := selectLayout(cfg, src, extractFlags.layout)
	if err != nil {
		return err
	}

	result, err := extract.Run(ctx, src, layout, extract.Options{
		Fields: cfg.Fields,
		Tags:   cfg.TagOptions(),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	if err := document.WriteFile(cfg.Output.Path, result.Document, cfg.OutputFormat()); err != nil {
		return err
	}

	stored := "no"
	if cfg.Database.DSN != "" {
		saved, err := saveDocument(cmd, cfg, src, result)
		if err != nil {
			return err
		}
		stored = "unchanged"
		if saved {
			stored = "yes"
		}
	}

	printSummary(os.Stdout, cfg.Output.Path, result, stored)
	return nil
}

func applyExtractFlags(cfg *config.ProjectConfig) error {
	if extractFlags.archive != "" {
		cfg.Archive = extractFlags.archive
	}
	if extractFlags.output != "" {
		cfg.Output.Path = extractFlags.output
	}
	if extractFlags.format != "" {
		if _, err := document.ParseFormat(extractFlags.format); err != nil {
			return err
		}
		cfg.Output.Format = extractFlags.format
	}
	if extractFlags.db != "" {
		cfg.Database.DSN = extractFlags.db
	}
	return nil
}

func selectLayout(cfg *config.ProjectConfig, src extract.Source, name string) (config.Layout, error) {
	if name == "" {
		return extract.DetectLayout(src, cfg.Layouts)
	}
	layout, ok := cfg.Layout(name)
	if !ok {
		return config.Layout{}, fmt.Errorf("unknown layout: %s", name)
	}
	return layout, nil
}

// saveDocument stores the document unless the archive digest matches the
// latest stored run and --full was not given.
func saveDocument(cmd *cobra.Command, cfg *config.ProjectConfig, src *archive.Archive, result *extract.Result) (bool, error) {
	ctx := cmd.Context()
	db, err := openStore(ctx, cfg.Database.DSN)
	if err != nil {
		return false, err
	}
	defer db.Close(ctx)

	if !extractFlags.full {
		last, err := db.LastDigest(ctx)
		if err != nil {
			return false, err
		}
		if last == src.Digest() {
			return false, nil
		}
	}

	run := store.RunInput{
		Digest:  src.Digest(),
		Archive: cfg.Archive,
		Inner:   src.Inner(),
		Layout:  result.Layout,
	}
	if err := db.SaveDocument(ctx, run, result.Document); err != nil {
		return false, err
	}
	return true, nil
}

func printSummary(out io.Writer, path string, result *extract.Result, stored string) {
	fmt.Fprintln(out, "Extraction complete.")
	fmt.Fprintf(out, "  Layout:           %s\n", result.Layout)
	fmt.Fprintf(out, "  Tags:             %d\n", result.TagsProcessed)
	fmt.Fprintf(out, "  Furnace recipes:  %d\n", result.FurnaceRecipes())
	fmt.Fprintf(out, "  Crafting recipes: %d\n", result.CraftingRecipes())
	fmt.Fprintf(out, "  Items:            %d\n", result.Items())
	fmt.Fprintf(out, "  Entries read:     %d\n", result.EntriesProcessed)
	fmt.Fprintf(out, "  Entries skipped:  %d\n", result.EntriesSkipped+result.TagsSkipped)
	if !result.Tags.Converged {
		fmt.Fprintf(out, "  Tag rounds:       %d (not converged)\n", result.Tags.Rounds)
	}
	fmt.Fprintf(out, "  Stored:           %s\n", stored)
	fmt.Fprintf(out, "  Written to:       %s\n", path)
}
