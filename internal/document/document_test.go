package document

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"recipegen/internal/recipe"
	"recipegen/internal/tags"
)

func TestAssignIndex(t *testing.T) {
	t.Run("example", func(t *testing.T) {
		got := AssignIndex(map[string]struct{}{"ns:z": {}, "ns:a": {}})
		want := Index{"ns:a": 1, "ns:z": 2}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("unexpected index %#v", got)
		}
	})

	t.Run("bijective and ordered", func(t *testing.T) {
		outputs := map[string]struct{}{
			"minecraft:stick": {}, "minecraft:acacia_boat": {}, "mod:zinc": {},
			"minecraft:torch": {}, "a:b": {}, "minecraft:stick_2": {},
		}
		index := AssignIndex(outputs)
		if len(index) != len(outputs) {
			t.Fatalf("expected %d entries, got %d", len(outputs), len(index))
		}
		seen := make(map[int]bool)
		for item, n := range index {
			if n < 1 || n > len(outputs) {
				t.Fatalf("index %d for %s out of range", n, item)
			}
			if seen[n] {
				t.Fatalf("index %d assigned twice", n)
			}
			seen[n] = true
		}
		for a, ia := range index {
			for b, ib := range index {
				if a < b && ia >= ib {
					t.Fatalf("%s sorts before %s but got %d >= %d", a, b, ia, ib)
				}
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := AssignIndex(nil); len(got) != 0 {
			t.Fatalf("expected empty index, got %#v", got)
		}
	})
}

func sampleDocument() *Document {
	smelting := []recipe.Smelting{
		{Source: "r/ingot.json", Ingredient: "x:ore", Result: "x:ingot"},
		{Source: "r/charcoal.json", Ingredient: "#x:logs", Result: "x:charcoal"},
	}
	crafting := []recipe.Crafting{
		{
			Source:  "r/table.json",
			Type:    recipe.TypeShaped,
			Result:  "x:table",
			Count:   1,
			Pattern: []string{"##", "##"},
			Key:     map[string]any{"#": map[string]any{"tag": "x:planks"}},
		},
		{
			Source:      "r/dye.json",
			Type:        recipe.TypeShapeless,
			Result:      "x:dye",
			Count:       2,
			Ingredients: []any{"x:flower"},
		},
	}
	index := AssignIndex(map[string]struct{}{"x:table": {}, "x:dye": {}})
	aliases := tags.Table{"#x:logs": {"x:birch_log", "x:oak_log"}}
	return Assemble(smelting, crafting, index, aliases)
}

func TestAssemble(t *testing.T) {
	doc := sampleDocument()

	want := Furnace{Type: FurnaceType, Ingredient: "x:ore", Result: "x:ingot", Experience: 0.7, CookingTime: 200}
	if doc.Recipes.Furnace[0] != want {
		t.Fatalf("unexpected furnace recipe %#v", doc.Recipes.Furnace[0])
	}
	if len(doc.Recipes.Crafting) != 2 {
		t.Fatalf("expected 2 crafting recipes, got %d", len(doc.Recipes.Crafting))
	}
	if doc.Recipes.Crafting[1].Result != (Result{Item: "x:dye", Count: 2}) {
		t.Fatalf("unexpected crafting result %#v", doc.Recipes.Crafting[1].Result)
	}
	if !reflect.DeepEqual(doc.ItemLookup, Index{"x:dye": 1, "x:table": 2}) {
		t.Fatalf("unexpected item lookup %#v", doc.ItemLookup)
	}
	if !reflect.DeepEqual(doc.Aliases["#x:logs"], []string{"x:birch_log", "x:oak_log"}) {
		t.Fatalf("unexpected aliases %#v", doc.Aliases)
	}
}

func TestAssemble_EmptyInputsKeepEveryKey(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Assemble(nil, nil, nil, nil), FormatJSON); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	recipes, ok := generic["recipes"].(map[string]any)
	if !ok {
		t.Fatalf("expected recipes object, got %#v", generic["recipes"])
	}
	if _, ok := recipes["furnace"].([]any); !ok {
		t.Fatalf("expected furnace list, got %#v", recipes["furnace"])
	}
	if _, ok := recipes["crafting"].([]any); !ok {
		t.Fatalf("expected crafting list, got %#v", recipes["crafting"])
	}
	if _, ok := generic["itemLookup"].(map[string]any); !ok {
		t.Fatalf("expected itemLookup object")
	}
	if _, ok := generic["aliases"].(map[string]any); !ok {
		t.Fatalf("expected aliases object")
	}
}

func TestEncode_JSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleDocument(), FormatJSON); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := buf.String()
	for _, fragment := range []string{
		`"cookingtime": 200`,
		`"experience": 0.7`,
		`"type": "minecraft:smelting"`,
		`"itemLookup"`,
		`"#x:logs"`,
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %s in output:\n%s", fragment, out)
		}
	}

	var generic struct {
		Recipes struct {
			Crafting []map[string]any `json:"crafting"`
		} `json:"recipes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	shaped := generic.Recipes.Crafting[0]
	if _, ok := shaped["pattern"]; !ok {
		t.Fatalf("expected pattern on shaped recipe")
	}
	if _, ok := shaped["ingredients"]; ok {
		t.Fatalf("unexpected ingredients on shaped recipe")
	}
	shapeless := generic.Recipes.Crafting[1]
	if _, ok := shapeless["ingredients"]; !ok {
		t.Fatalf("expected ingredients on shapeless recipe")
	}
	if _, ok := shapeless["key"]; ok {
		t.Fatalf("unexpected key on shapeless recipe")
	}
}

func TestEncode_EmptyShapedPattern(t *testing.T) {
	doc := Assemble(nil, []recipe.Crafting{{Type: recipe.TypeShaped, Result: "x:a", Count: 1}}, Index{"x:a": 1}, nil)
	var buf bytes.Buffer
	if err := Encode(&buf, doc, FormatJSON); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), `"pattern": []`) || !strings.Contains(buf.String(), `"key": {}`) {
		t.Fatalf("expected empty pattern and key, got:\n%s", buf.String())
	}
}

func TestEncode_Deterministic(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatCBOR} {
		var first, second bytes.Buffer
		if err := Encode(&first, sampleDocument(), format); err != nil {
			t.Fatalf("encode %s: %v", format, err)
		}
		if err := Encode(&second, sampleDocument(), format); err != nil {
			t.Fatalf("encode %s: %v", format, err)
		}
		if !bytes.Equal(first.Bytes(), second.Bytes()) {
			t.Fatalf("%s encoding not deterministic", format)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		format Format
	}{
		{name: "json", file: "recipes.json", format: FormatJSON},
		{name: "cbor", file: "recipes.cbor", format: FormatCBOR},
		{name: "json zstd", file: "recipes.json.zst", format: FormatJSON},
		{name: "cbor lz4", file: "recipes.cbor.lz4", format: FormatCBOR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out", tt.file)
			doc := sampleDocument()
			if err := WriteFile(path, doc, tt.format); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !reflect.DeepEqual(got.ItemLookup, doc.ItemLookup) {
				t.Fatalf("item lookup mismatch: %#v", got.ItemLookup)
			}
			if !reflect.DeepEqual(got.Aliases, doc.Aliases) {
				t.Fatalf("aliases mismatch: %#v", got.Aliases)
			}
			if len(got.Recipes.Furnace) != 2 || len(got.Recipes.Crafting) != 2 {
				t.Fatalf("recipe count mismatch: %#v", got.Recipes)
			}
			if got.Recipes.Crafting[0].Key["#"] == nil {
				t.Fatalf("expected shaped key to survive, got %#v", got.Recipes.Crafting[0])
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("CBOR"); err != nil || f != FormatCBOR {
		t.Fatalf("expected cbor, got %q %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Fatalf("expected json default, got %q %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error")
	}
}
