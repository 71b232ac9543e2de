package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"recipegen/internal/archive"
	"recipegen/internal/config"
	"recipegen/internal/document"
	"recipegen/internal/extract"
	"recipegen/internal/validate"
)

var inspectFlags struct {
	archive  string
	document string
	db       string
	runs     int
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the server archive and check the produced document",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}
	cmd.Flags().StringVar(&inspectFlags.archive, "archive", "", "Server archive (overrides config)")
	cmd.Flags().StringVar(&inspectFlags.document, "document", "", "Document to check (default: configured output)")
	cmd.Flags().StringVar(&inspectFlags.db, "db", "", "List stored runs from this DSN")
	cmd.Flags().IntVar(&inspectFlags.runs, "runs", 5, "Number of stored runs to list")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if inspectFlags.archive != "" {
		cfg.Archive = inspectFlags.archive
	}
	if inspectFlags.document != "" {
		cfg.Output.Path = inspectFlags.document
	}
	if inspectFlags.db != "" {
		cfg.Database.DSN = inspectFlags.db
	}

	if err := describeArchive(os.Stdout, cfg); err != nil {
		return err
	}
	if cfg.Database.DSN != "" {
		if err := listRuns(cmd, os.Stdout, cfg.Database.DSN); err != nil {
			return err
		}
	}

	doc, err := document.ReadFile(cfg.Output.Path)
	if errors.Is(err, fs.ErrNotExist) && inspectFlags.document == "" {
		fmt.Fprintf(os.Stdout, "\nNo document at %s.\n", cfg.Output.Path)
		return nil
	}
	if err != nil {
		return err
	}
	return checkDocument(os.Stdout, cfg.Output.Path, doc)
}

func describeArchive(out io.Writer, cfg *config.ProjectConfig) error {
	src, err := archive.Open(cfg.Archive, cfg.InnerArchive)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Archive: %s\n", cfg.Archive)
	fmt.Fprintf(out, "  Digest:  %s\n", src.Digest())
	inner := src.Inner()
	if inner == "" {
		inner = "(none)"
	}
	fmt.Fprintf(out, "  Nested:  %s\n", inner)
	fmt.Fprintf(out, "  Entries: %d\n", src.Len())

	layout, err := extract.DetectLayout(src, cfg.Layouts)
	if errors.Is(err, extract.ErrNoLayout) {
		fmt.Fprintln(out, "  Layout:  (no match)")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  Layout:  %s\n", layout.Name)
	fmt.Fprintf(out, "    %-8s %d entries under %s\n", "recipes", len(src.Entries(layout.Recipes)), layout.Recipes)
	fmt.Fprintf(out, "    %-8s %d entries under %s\n", "tags", len(src.Entries(layout.Tags)), layout.Tags)
	return nil
}

func listRuns(cmd *cobra.Command, out io.Writer, dsn string) error {
	ctx := cmd.Context()
	db, err := openStore(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	runs, err := db.Runs(ctx, inspectFlags.runs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nStored runs (%d):\n", len(runs))
	for _, run := range runs {
		digest := run.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(out, "  - #%d %s %s layout=%s furnace=%d crafting=%d items=%d tags=%d\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04"), digest, run.Layout,
			run.FurnaceRecipes, run.CraftingRecipes, run.Items, run.Tags)
	}
	return nil
}

func checkDocument(out io.Writer, path string, doc *document.Document) error {
	report, err := validate.Run(doc)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nDocument: %s\n", path)
	errorIssues := report.Errors()
	warnIssues := report.Warnings()
	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(errorIssues))
		printIssues(out, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "Warnings (%d):\n", len(warnIssues))
		printIssues(out, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("document check found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.Location
		if issue.Subject != "" {
			location = fmt.Sprintf("%s (%s)", issue.Subject, issue.Location)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
