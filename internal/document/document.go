// Package document assembles the normalized recipe document consumed by
// the downstream application.
package document

import (
	"encoding/json"
	"sort"

	"recipegen/internal/recipe"
	"recipegen/internal/tags"
)

const (
	// FurnaceType is written for every furnace recipe, blasting included.
	FurnaceType = "minecraft:smelting"
	Experience  = 0.7
	CookingTime = 200
)

type Document struct {
	Recipes    Recipes             `json:"recipes"`
	ItemLookup Index               `json:"itemLookup"`
	Aliases    map[string][]string `json:"aliases"`
}

type Recipes struct {
	Furnace  []Furnace  `json:"furnace"`
	Crafting []Crafting `json:"crafting"`
}

type Furnace struct {
	Type        string  `json:"type"`
	Ingredient  string  `json:"ingredient"`
	Result      string  `json:"result"`
	Experience  float64 `json:"experience"`
	CookingTime int     `json:"cookingtime"`
}

type Result struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type Crafting struct {
	Type        string         `json:"type"`
	Result      Result         `json:"result"`
	Pattern     []string       `json:"pattern,omitempty"`
	Key         map[string]any `json:"key,omitempty"`
	Ingredients []any          `json:"ingredients,omitempty"`
}

type shapedRecipe struct {
	Type    string         `json:"type"`
	Result  Result         `json:"result"`
	Pattern []string       `json:"pattern"`
	Key     map[string]any `json:"key"`
}

type shapelessRecipe struct {
	Type        string `json:"type"`
	Result      Result `json:"result"`
	Ingredients []any  `json:"ingredients"`
}

// wire picks the per-kind shape so shaped recipes always carry pattern and
// key, and shapeless ones always carry ingredients, even when empty.
func (c Crafting) wire() any {
	if c.Type == recipe.TypeShaped {
		pattern := c.Pattern
		if pattern == nil {
			pattern = []string{}
		}
		key := c.Key
		if key == nil {
			key = map[string]any{}
		}
		return shapedRecipe{Type: c.Type, Result: c.Result, Pattern: pattern, Key: key}
	}
	ingredients := c.Ingredients
	if ingredients == nil {
		ingredients = []any{}
	}
	return shapelessRecipe{Type: c.Type, Result: c.Result, Ingredients: ingredients}
}

func (c Crafting) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.wire())
}

func (c Crafting) MarshalCBOR() ([]byte, error) {
	return cborEncMode.Marshal(c.wire())
}

// Index numbers crafting results densely from 1.
type Index map[string]int

// AssignIndex numbers outputs in ascending lexical order starting at 1.
func AssignIndex(outputs map[string]struct{}) Index {
	items := make([]string, 0, len(outputs))
	for item := range outputs {
		items = append(items, item)
	}
	sort.Strings(items)

	index := make(Index, len(items))
	for i, item := range items {
		index[item] = i + 1
	}
	return index
}

// Assemble builds the output document. It never filters or reorders what
// it is given; every collection is present, possibly empty.
func Assemble(smelting []recipe.Smelting, crafting []recipe.Crafting, index Index, aliases tags.Table) *Document {
	doc := &Document{
		Recipes: Recipes{
			Furnace:  make([]Furnace, 0, len(smelting)),
			Crafting: make([]Crafting, 0, len(crafting)),
		},
		ItemLookup: make(Index, len(index)),
		Aliases:    make(map[string][]string, len(aliases)),
	}

	for _, s := range smelting {
		doc.Recipes.Furnace = append(doc.Recipes.Furnace, Furnace{
			Type:        FurnaceType,
			Ingredient:  s.Ingredient,
			Result:      s.Result,
			Experience:  Experience,
			CookingTime: CookingTime,
		})
	}

	for _, c := range crafting {
		doc.Recipes.Crafting = append(doc.Recipes.Crafting, Crafting{
			Type:        c.Type,
			Result:      Result{Item: c.Result, Count: c.Count},
			Pattern:     c.Pattern,
			Key:         c.Key,
			Ingredients: c.Ingredients,
		})
	}

	for item, n := range index {
		doc.ItemLookup[item] = n
	}

	for key, values := range aliases {
		members := make([]string, len(values))
		copy(members, values)
		doc.Aliases[key] = members
	}

	return doc
}
