package mcp

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"recipegen/internal/document"
	"recipegen/internal/recipe"
)

type mockLoader struct {
	doc   *document.Document
	err   error
	calls int
}

func (m *mockLoader) LoadDocument(ctx context.Context) (*document.Document, error) {
	m.calls++
	return m.doc, m.err
}

func testDocument() *document.Document {
	smelting := []recipe.Smelting{
		{Source: "a.json", Ingredient: "#minecraft:logs", Result: "minecraft:charcoal"},
		{Source: "b.json", Ingredient: "minecraft:iron_ore", Result: "minecraft:iron_ingot"},
	}
	crafting := []recipe.Crafting{
		{Source: "c.json", Type: recipe.TypeShaped, Result: "minecraft:crafting_table", Count: 1,
			Pattern: []string{"##", "##"}, Key: map[string]any{"#": map[string]any{"tag": "minecraft:planks"}}},
		{Source: "d.json", Type: recipe.TypeShapeless, Result: "minecraft:oak_planks", Count: 4,
			Ingredients: []any{map[string]any{"item": "minecraft:oak_log"}}},
		{Source: "e.json", Type: recipe.TypeShapeless, Result: "minecraft:torch", Count: 4,
			Ingredients: []any{"minecraft:stick", []any{"minecraft:coal", "minecraft:charcoal"}}},
	}
	index := document.AssignIndex(map[string]struct{}{
		"minecraft:crafting_table": {}, "minecraft:oak_planks": {}, "minecraft:torch": {},
	})
	aliases := map[string][]string{
		"#minecraft:logs":   {"minecraft:birch_log", "minecraft:oak_log"},
		"#minecraft:planks": {"minecraft:oak_planks"},
	}
	return document.Assemble(smelting, crafting, index, aliases)
}

func TestLookupItem(t *testing.T) {
	server := NewServer(&mockLoader{doc: testDocument()}, "test")

	_, output, err := server.handleLookupItem(context.Background(), nil, LookupItemInput{Item: "minecraft:oak_planks"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := LookupItemOutput{Item: "minecraft:oak_planks", Found: true, Index: 2, Tags: []string{"#minecraft:planks"}}
	if !reflect.DeepEqual(output, want) {
		t.Fatalf("unexpected output: %+v", output)
	}

	_, output, err = server.handleLookupItem(context.Background(), nil, LookupItemInput{Item: "minecraft:dirt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Found || output.Index != 0 || len(output.Tags) != 0 {
		t.Fatalf("expected missing item, got %+v", output)
	}

	if _, _, err := server.handleLookupItem(context.Background(), nil, LookupItemInput{Item: " "}); err == nil {
		t.Fatalf("expected error for empty item")
	}
}

func TestGetTag(t *testing.T) {
	server := NewServer(&mockLoader{doc: testDocument()}, "test")

	for _, name := range []string{"minecraft:logs", "#minecraft:logs"} {
		_, output, err := server.handleGetTag(context.Background(), nil, GetTagInput{Tag: name})
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", name, err)
		}
		if output.Tag != "#minecraft:logs" || !reflect.DeepEqual(output.Members, []string{"minecraft:birch_log", "minecraft:oak_log"}) {
			t.Fatalf("unexpected output: %+v", output)
		}
	}

	if _, _, err := server.handleGetTag(context.Background(), nil, GetTagInput{Tag: "minecraft:missing"}); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
}

func TestFindRecipes(t *testing.T) {
	server := NewServer(&mockLoader{doc: testDocument()}, "test")

	tests := []struct {
		name     string
		input    FindRecipesInput
		furnace  []string
		crafting []string
	}{
		{
			name:    "furnace result",
			input:   FindRecipesInput{Item: "minecraft:charcoal"},
			furnace: []string{"minecraft:charcoal"},
		},
		{
			name:     "crafting result",
			input:    FindRecipesInput{Item: "minecraft:torch", Role: "RESULT"},
			crafting: []string{"minecraft:torch"},
		},
		{
			name:     "ingredient through tag",
			input:    FindRecipesInput{Item: "minecraft:oak_log", Role: "ingredient"},
			furnace:  []string{"minecraft:charcoal"},
			crafting: []string{"minecraft:oak_planks"},
		},
		{
			name:     "ingredient in shaped key tag",
			input:    FindRecipesInput{Item: "minecraft:oak_planks", Role: "ingredient"},
			crafting: []string{"minecraft:crafting_table"},
		},
		{
			name:     "ingredient in alternatives",
			input:    FindRecipesInput{Item: "minecraft:charcoal", Role: "ingredient"},
			crafting: []string{"minecraft:torch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleFindRecipes(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var furnace, crafting []string
			for _, f := range output.Furnace {
				furnace = append(furnace, f.Result)
			}
			for _, c := range output.Crafting {
				crafting = append(crafting, c.Item)
			}
			if !reflect.DeepEqual(furnace, tt.furnace) || !reflect.DeepEqual(crafting, tt.crafting) {
				t.Fatalf("unexpected recipes: furnace=%v crafting=%v", furnace, crafting)
			}
		})
	}

	if _, _, err := server.handleFindRecipes(context.Background(), nil, FindRecipesInput{Item: "x", Role: "both"}); err == nil {
		t.Fatalf("expected error for invalid role")
	}
}

func TestSummary(t *testing.T) {
	loader := &mockLoader{doc: testDocument()}
	server := NewServer(loader, "test")

	for i := 0; i < 2; i++ {
		_, output, err := server.handleSummary(context.Background(), nil, SummaryInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := SummaryOutput{FurnaceRecipes: 2, CraftingRecipes: 3, Items: 3, Tags: 2}
		if output != want {
			t.Fatalf("unexpected summary: %+v", output)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected document loaded once, got %d loads", loader.calls)
	}
}

func TestLoadError(t *testing.T) {
	loader := &mockLoader{err: errors.New("boom")}
	server := NewServer(loader, "test")

	if _, _, err := server.handleSummary(context.Background(), nil, SummaryInput{}); err == nil {
		t.Fatalf("expected error")
	}
	loader.err = nil
	loader.doc = testDocument()
	if _, _, err := server.handleSummary(context.Background(), nil, SummaryInput{}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	if err := document.WriteFile(path, testDocument(), document.FormatJSON); err != nil {
		t.Fatalf("writing document: %v", err)
	}
	doc, err := FileLoader{Path: path}.LoadDocument(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Recipes.Crafting) != 3 {
		t.Fatalf("expected 3 crafting recipes, got %d", len(doc.Recipes.Crafting))
	}

	if _, err := (FileLoader{Path: filepath.Join(t.TempDir(), "missing.json")}).LoadDocument(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
