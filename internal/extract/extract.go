package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"recipegen/internal/archive"
	"recipegen/internal/config"
	"recipegen/internal/document"
	"recipegen/internal/recipe"
	"recipegen/internal/record"
	"recipegen/internal/tags"
)

var ErrNoLayout = errors.New("no layout matches the archive contents")

// Source is an opened archive: it lists entry paths under a prefix and
// reads single entries.
type Source interface {
	Entries(prefix string) []string
	Read(name string) ([]byte, error)
}

type Options struct {
	Fields record.Fields
	Tags   tags.Options
	Logger *slog.Logger
}

type Result struct {
	Layout   string
	Document *document.Document

	EntriesProcessed int
	EntriesSkipped   int
	TagsProcessed    int
	TagsSkipped      int
	Tags             tags.Stats
}

func (r *Result) FurnaceRecipes() int  { return len(r.Document.Recipes.Furnace) }
func (r *Result) CraftingRecipes() int { return len(r.Document.Recipes.Crafting) }
func (r *Result) Items() int           { return len(r.Document.ItemLookup) }

// DetectLayout returns the first layout whose recipe prefix holds at least
// one JSON entry.
func DetectLayout(src Source, layouts []config.Layout) (config.Layout, error) {
	for _, layout := range layouts {
		for _, name := range src.Entries(layout.Recipes) {
			if isJSON(name) {
				return layout, nil
			}
		}
	}
	return config.Layout{}, ErrNoLayout
}

// Run extracts recipes and tags from src using the prefixes of layout and
// assembles the output document. Unusable entries are counted and logged
// at debug level; only cancellation aborts the run.
func Run(ctx context.Context, src Source, layout config.Layout, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fields := opts.Fields.WithDefaults()

	recipeEntries, recipeReadSkips, err := readEntries(ctx, src, layout.Recipes, logger)
	if err != nil {
		return nil, err
	}
	extracted := recipe.Extract(recipeEntries, fields)
	for _, skip := range extracted.Skipped {
		logger.Debug("skipping recipe entry", "path", skip.Path, "error", skip.Err)
	}

	tagEntries, tagReadSkips, err := readEntries(ctx, src, layout.Tags, logger)
	if err != nil {
		return nil, err
	}
	raw, tagSkips := tags.Load(tagEntries, layout.Tags, fields.TagValue)
	for _, skip := range tagSkips {
		logger.Debug("skipping tag entry", "path", skip.Path, "error", skip.Err)
	}

	resolved, stats := tags.Resolve(raw, opts.Tags)
	if !stats.Converged {
		logger.Warn("tag resolution stopped before reaching a fixed point", "rounds", stats.Rounds)
	}
	if stats.Unresolved > 0 {
		logger.Debug("unresolved tag references kept as literals", "count", stats.Unresolved)
	}

	index := document.AssignIndex(extracted.Outputs)
	doc := document.Assemble(extracted.Smelting, extracted.Crafting, index, resolved)

	return &Result{
		Layout:           layout.Name,
		Document:         doc,
		EntriesProcessed: extracted.Processed,
		EntriesSkipped:   len(extracted.Skipped) + recipeReadSkips,
		TagsProcessed:    stats.Tags,
		TagsSkipped:      len(tagSkips) + tagReadSkips,
		Tags:             stats,
	}, nil
}

func readEntries(ctx context.Context, src Source, prefix string, logger *slog.Logger) ([]archive.Entry, int, error) {
	var entries []archive.Entry
	skipped := 0
	for _, name := range src.Entries(prefix) {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", prefix, err)
		}
		if !isJSON(name) {
			continue
		}
		data, err := src.Read(name)
		if err != nil {
			logger.Debug("skipping unreadable entry", "path", name, "error", err)
			skipped++
			continue
		}
		entries = append(entries, archive.Entry{Path: name, Data: data})
	}
	return entries, skipped, nil
}

func isJSON(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".json")
}
