package store

import (
	"encoding/json"
	"fmt"

	"recipegen/internal/document"
	"recipegen/internal/recipe"
	"recipegen/internal/tags"
)

// CraftingRow is a crafting recipe with its grid fields encoded as JSON.
// Fields that do not apply to the recipe kind are nil.
type CraftingRow struct {
	Position    int
	Type        string
	Item        string
	Count       int
	Pattern     []byte
	Key         []byte
	Ingredients []byte
}

// AliasRow holds one tag with its members encoded as a JSON array.
type AliasRow struct {
	Tag     string
	Members []byte
}

func EncodeCrafting(position int, c document.Crafting) (CraftingRow, error) {
	row := CraftingRow{Position: position, Type: c.Type, Item: c.Result.Item, Count: c.Result.Count}
	var err error
	if c.Type == recipe.TypeShaped {
		pattern := c.Pattern
		if pattern == nil {
			pattern = []string{}
		}
		key := c.Key
		if key == nil {
			key = map[string]any{}
		}
		if row.Pattern, err = json.Marshal(pattern); err != nil {
			return CraftingRow{}, fmt.Errorf("marshaling pattern: %w", err)
		}
		if row.Key, err = json.Marshal(key); err != nil {
			return CraftingRow{}, fmt.Errorf("marshaling key: %w", err)
		}
		return row, nil
	}
	ingredients := c.Ingredients
	if ingredients == nil {
		ingredients = []any{}
	}
	if row.Ingredients, err = json.Marshal(ingredients); err != nil {
		return CraftingRow{}, fmt.Errorf("marshaling ingredients: %w", err)
	}
	return row, nil
}

func DecodeCrafting(row CraftingRow) (document.Crafting, error) {
	c := document.Crafting{Type: row.Type, Result: document.Result{Item: row.Item, Count: row.Count}}
	if len(row.Pattern) > 0 {
		if err := json.Unmarshal(row.Pattern, &c.Pattern); err != nil {
			return document.Crafting{}, fmt.Errorf("unmarshaling pattern: %w", err)
		}
	}
	if len(row.Key) > 0 {
		if err := json.Unmarshal(row.Key, &c.Key); err != nil {
			return document.Crafting{}, fmt.Errorf("unmarshaling key: %w", err)
		}
	}
	if len(row.Ingredients) > 0 {
		if err := json.Unmarshal(row.Ingredients, &c.Ingredients); err != nil {
			return document.Crafting{}, fmt.Errorf("unmarshaling ingredients: %w", err)
		}
	}
	return c, nil
}

// EncodeAliases returns one row per tag in lexical order.
func EncodeAliases(aliases map[string][]string) ([]AliasRow, error) {
	keys := tags.Table(aliases).Keys()
	rows := make([]AliasRow, 0, len(keys))
	for _, key := range keys {
		members := aliases[key]
		if members == nil {
			members = []string{}
		}
		data, err := json.Marshal(members)
		if err != nil {
			return nil, fmt.Errorf("marshaling members of %s: %w", key, err)
		}
		rows = append(rows, AliasRow{Tag: key, Members: data})
	}
	return rows, nil
}

func DecodeMembers(data []byte) ([]string, error) {
	members := []string{}
	if len(data) == 0 {
		return members, nil
	}
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("unmarshaling members: %w", err)
	}
	return members, nil
}

// NewRun summarizes doc for the runs table.
func NewRun(in RunInput, doc *document.Document) Run {
	return Run{
		Digest:          in.Digest,
		Archive:         in.Archive,
		Inner:           in.Inner,
		Layout:          in.Layout,
		FurnaceRecipes:  len(doc.Recipes.Furnace),
		CraftingRecipes: len(doc.Recipes.Crafting),
		Items:           len(doc.ItemLookup),
		Tags:            len(doc.Aliases),
	}
}

// EmptyDocument returns a document with every collection allocated.
func EmptyDocument() *document.Document {
	return document.Assemble(nil, nil, nil, nil)
}
