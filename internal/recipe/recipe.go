// Package recipe classifies decoded recipe records into furnace
// (smelting-class) and crafting-grid (crafting-class) transformations.
package recipe

import (
	"sort"
	"strings"

	"recipegen/internal/archive"
	"recipegen/internal/record"
)

const (
	TypeSmelting  = "minecraft:smelting"
	TypeBlasting  = "minecraft:blasting"
	TypeShaped    = "minecraft:crafting_shaped"
	TypeShapeless = "minecraft:crafting_shapeless"
)

// Smelting is a single input to single output furnace transformation.
type Smelting struct {
	Source     string
	Ingredient string
	Result     string
}

// Crafting is a shaped or shapeless grid recipe. Pattern and Key are set
// for shaped recipes, Ingredients for shapeless ones; all are copied
// verbatim from the source record.
type Crafting struct {
	Source      string
	Type        string
	Result      string
	Count       int
	Pattern     []string
	Key         map[string]any
	Ingredients []any
}

// Skip records an entry that could not be used.
type Skip struct {
	Path string
	Err  error
}

type Result struct {
	Smelting []Smelting
	Crafting []Crafting
	// Outputs holds every crafting-class result, including kinds that are
	// not emitted as full recipes.
	Outputs   map[string]struct{}
	Processed int
	Skipped   []Skip
}

// Extract decodes and classifies entries. Entries that fail to decode, or
// carry a field of the wrong type, are reported in Skipped and emit no
// recipe; every other entry counts as processed. A crafting entry with a
// readable result still lists it in Outputs when its grid is malformed.
func Extract(entries []archive.Entry, fields record.Fields) Result {
	result := Result{Outputs: make(map[string]struct{})}
	for _, entry := range entries {
		rec, err := record.Decode(entry.Data)
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{Path: entry.Path, Err: err})
			continue
		}
		if err := result.add(entry.Path, rec, fields); err != nil {
			result.Skipped = append(result.Skipped, Skip{Path: entry.Path, Err: err})
			continue
		}
		result.Processed++
	}

	sort.SliceStable(result.Smelting, func(i, j int) bool {
		return result.Smelting[i].Source < result.Smelting[j].Source
	})
	sort.SliceStable(result.Crafting, func(i, j int) bool {
		return result.Crafting[i].Source < result.Crafting[j].Source
	})
	return result
}

func (r *Result) add(path string, rec record.Record, fields record.Fields) error {
	recipeType, err := rec.Type()
	if err != nil {
		return err
	}

	switch {
	case IsSmelting(recipeType):
		ingredient, okIn := rec.Lookup(fields.Ingredient)
		result, okOut := rec.Lookup(fields.Result)
		if okIn && okOut {
			r.Smelting = append(r.Smelting, Smelting{Source: path, Ingredient: ingredient, Result: result})
		}
	case IsCrafting(recipeType):
		result, ok := rec.Lookup(fields.Result)
		if !ok {
			return nil
		}
		// The output is indexed even when the grid itself is unusable.
		r.Outputs[result] = struct{}{}
		if recipeType != TypeShaped && recipeType != TypeShapeless {
			return nil
		}
		crafting, err := readCrafting(rec, recipeType, fields)
		if err != nil {
			return err
		}
		crafting.Source = path
		crafting.Result = result
		r.Crafting = append(r.Crafting, crafting)
	}
	return nil
}

func readCrafting(rec record.Record, recipeType string, fields record.Fields) (Crafting, error) {
	count, found, err := rec.Int(fields.Count)
	if err != nil {
		return Crafting{}, err
	}
	if !found || count < 1 {
		count = 1
	}
	crafting := Crafting{Type: recipeType, Count: count}

	if recipeType == TypeShaped {
		pattern, _, err := rec.Strings("pattern")
		if err != nil {
			return Crafting{}, err
		}
		key, _, err := rec.Object("key")
		if err != nil {
			return Crafting{}, err
		}
		if pattern == nil {
			pattern = []string{}
		}
		if key == nil {
			key = map[string]any{}
		}
		crafting.Pattern = pattern
		crafting.Key = key
		return crafting, nil
	}

	ingredients, _, err := rec.List("ingredients")
	if err != nil {
		return Crafting{}, err
	}
	if ingredients == nil {
		ingredients = []any{}
	}
	crafting.Ingredients = ingredients
	return crafting, nil
}

func IsSmelting(recipeType string) bool {
	return recipeType == TypeSmelting || recipeType == TypeBlasting
}

func IsCrafting(recipeType string) bool {
	return strings.Contains(recipeType, "crafting")
}
