package mcp

import (
	"sort"
	"strings"

	"recipegen/internal/document"
	"recipegen/internal/record"
)

// catalog indexes a document for item and tag queries.
type catalog struct {
	doc *document.Document
	// memberOf maps an item to the tags listing it.
	memberOf map[string][]string
}

func newCatalog(doc *document.Document) *catalog {
	c := &catalog{doc: doc, memberOf: make(map[string][]string)}
	for tag, members := range doc.Aliases {
		for _, member := range members {
			c.memberOf[member] = append(c.memberOf[member], tag)
		}
	}
	for item := range c.memberOf {
		sort.Strings(c.memberOf[item])
	}
	return c
}

func tagKey(name string) string {
	if strings.HasPrefix(name, record.TagMarker) {
		return name
	}
	return record.TagMarker + name
}

// refs returns item together with every tag reference that covers it.
func (c *catalog) refs(item string) map[string]struct{} {
	out := map[string]struct{}{item: {}}
	for _, tag := range c.memberOf[item] {
		out[tag] = struct{}{}
	}
	return out
}

// mentions reports whether v, an ingredient value copied from a recipe,
// names one of refs. Strings, {"item": ...} and {"tag": ...} objects and
// lists of those are understood.
func mentions(v any, refs map[string]struct{}) bool {
	switch value := v.(type) {
	case string:
		_, ok := refs[value]
		return ok
	case []any:
		for _, elem := range value {
			if mentions(elem, refs) {
				return true
			}
		}
	case map[string]any:
		if item, ok := value["item"].(string); ok {
			if _, hit := refs[item]; hit {
				return true
			}
		}
		if id, ok := value["id"].(string); ok {
			if _, hit := refs[id]; hit {
				return true
			}
		}
		if tag, ok := value["tag"].(string); ok {
			if _, hit := refs[tagKey(tag)]; hit {
				return true
			}
		}
	}
	return false
}

func (c *catalog) furnaceFor(item string, asIngredient bool) []document.Furnace {
	var out []document.Furnace
	refs := c.refs(item)
	for _, f := range c.doc.Recipes.Furnace {
		if asIngredient {
			if _, ok := refs[f.Ingredient]; ok {
				out = append(out, f)
			}
			continue
		}
		if f.Result == item {
			out = append(out, f)
		}
	}
	return out
}

func (c *catalog) craftingFor(item string, asIngredient bool) []document.Crafting {
	var out []document.Crafting
	refs := c.refs(item)
	for _, recipe := range c.doc.Recipes.Crafting {
		if !asIngredient {
			if recipe.Result.Item == item {
				out = append(out, recipe)
			}
			continue
		}
		hit := mentions(recipe.Ingredients, refs)
		for _, v := range recipe.Key {
			if hit {
				break
			}
			hit = mentions(v, refs)
		}
		if hit {
			out = append(out, recipe)
		}
	}
	return out
}
