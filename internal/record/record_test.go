package record

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func TestDecode(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		rec, err := Decode([]byte(`{"type": "minecraft:smelting"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		typ, err := rec.Type()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if typ != "minecraft:smelting" {
			t.Fatalf("unexpected type %q", typ)
		}
	})

	t.Run("comments and trailing commas", func(t *testing.T) {
		content := []byte("{\n  // furnace\n  \"type\": \"minecraft:blasting\", /* ore */\n  \"result\": \"x:ingot\",\n}\n")
		rec, err := Decode(content)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out, ok := rec.Lookup(DefaultFields().Result)
		if !ok || out != "x:ingot" {
			t.Fatalf("unexpected result %q (%v)", out, ok)
		}
	})

	t.Run("byte order mark", func(t *testing.T) {
		if _, err := Decode([]byte("\ufeff{\"type\": \"a\"}")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"type": `))
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := Decode([]byte(`["a", "b"]`))
		if !errors.Is(err, ErrNotObject) {
			t.Fatalf("expected ErrNotObject, got %v", err)
		}
	})

	t.Run("type must be a string", func(t *testing.T) {
		rec, err := Decode([]byte(`{"type": 3}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := rec.Type(); !errors.Is(err, ErrFieldType) {
			t.Fatalf("expected ErrFieldType, got %v", err)
		}
	})

	t.Run("missing type", func(t *testing.T) {
		rec, err := Decode([]byte(`{}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		typ, err := rec.Type()
		if err != nil || typ != "" {
			t.Fatalf("expected empty type, got %q %v", typ, err)
		}
	})
}

func TestFieldLookup(t *testing.T) {
	fields := DefaultFields()

	tests := []struct {
		name   string
		field  Field
		input  string
		want   string
		wantOK bool
	}{
		{name: "result id", field: fields.Result, input: `{"result": {"id": "x:new", "item": "x:old"}}`, want: "x:new", wantOK: true},
		{name: "result item", field: fields.Result, input: `{"result": {"item": "x:old"}}`, want: "x:old", wantOK: true},
		{name: "result bare", field: fields.Result, input: `{"result": "x:bare"}`, want: "x:bare", wantOK: true},
		{name: "result missing", field: fields.Result, input: `{"other": 1}`, wantOK: false},
		{name: "result object without id", field: fields.Result, input: `{"result": {"count": 2}}`, wantOK: false},
		{name: "result empty string", field: fields.Result, input: `{"result": ""}`, wantOK: false},
		{name: "ingredient item", field: fields.Ingredient, input: `{"ingredient": {"item": "x:ore"}}`, want: "x:ore", wantOK: true},
		{name: "ingredient tag", field: fields.Ingredient, input: `{"ingredient": {"tag": "x:logs"}}`, want: "#x:logs", wantOK: true},
		{name: "ingredient tag wins over item", field: fields.Ingredient, input: `{"ingredient": {"item": "x:a", "tag": "x:logs"}}`, want: "#x:logs", wantOK: true},
		{name: "ingredient list of objects", field: fields.Ingredient, input: `{"ingredient": [{"item": "x:first"}, {"item": "x:second"}]}`, want: "x:first", wantOK: true},
		{name: "ingredient list of tags", field: fields.Ingredient, input: `{"ingredient": [{"tag": "x:logs"}]}`, want: "#x:logs", wantOK: true},
		{name: "ingredient list of strings", field: fields.Ingredient, input: `{"ingredient": ["x:one", "x:two"]}`, want: "x:one", wantOK: true},
		{name: "ingredient bare", field: fields.Ingredient, input: `{"ingredient": "x:ore"}`, want: "x:ore", wantOK: true},
		{name: "ingredient bare tag", field: fields.Ingredient, input: `{"ingredient": "#x:logs"}`, want: "#x:logs", wantOK: true},
		{name: "ingredient missing", field: fields.Ingredient, input: `{}`, wantOK: false},
		{name: "tag value string", field: fields.TagValue, input: `"x:stone"`, want: "x:stone", wantOK: true},
		{name: "tag value object", field: fields.TagValue, input: `{"id": "x:stone", "required": false}`, want: "x:stone", wantOK: true},
		{name: "tag value object without id", field: fields.TagValue, input: `{"required": false}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.field.Lookup(gjson.Parse(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v (%q)", tt.wantOK, ok, got)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFieldInt(t *testing.T) {
	count := DefaultFields().Count

	n, found, err := count.Int(gjson.Parse(`{"result": {"count": 4}}`))
	if err != nil || !found || n != 4 {
		t.Fatalf("expected 4, got %d %v %v", n, found, err)
	}

	_, found, err = count.Int(gjson.Parse(`{"result": {"id": "x:a"}}`))
	if err != nil || found {
		t.Fatalf("expected not found, got %v %v", found, err)
	}

	_, _, err = count.Int(gjson.Parse(`{"result": {"count": "four"}}`))
	if !errors.Is(err, ErrFieldType) {
		t.Fatalf("expected ErrFieldType, got %v", err)
	}
}

func TestRecordCollections(t *testing.T) {
	rec, err := Decode([]byte(`{
		"pattern": ["##", "# "],
		"key": {"#": {"item": "x:plank"}},
		"ingredients": ["x:a", {"tag": "x:b"}, [{"item": "x:c"}]],
		"bad_pattern": [1, 2]
	}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	pattern, found, err := rec.Strings("pattern")
	if err != nil || !found {
		t.Fatalf("expected pattern, got %v %v", found, err)
	}
	if !reflect.DeepEqual(pattern, []string{"##", "# "}) {
		t.Fatalf("unexpected pattern %#v", pattern)
	}

	key, found, err := rec.Object("key")
	if err != nil || !found {
		t.Fatalf("expected key, got %v %v", found, err)
	}
	want := map[string]any{"#": map[string]any{"item": "x:plank"}}
	if !reflect.DeepEqual(key, want) {
		t.Fatalf("unexpected key %#v", key)
	}

	ingredients, found, err := rec.List("ingredients")
	if err != nil || !found || len(ingredients) != 3 {
		t.Fatalf("unexpected ingredients %#v %v %v", ingredients, found, err)
	}

	if _, _, err := rec.Strings("bad_pattern"); !errors.Is(err, ErrFieldType) {
		t.Fatalf("expected ErrFieldType, got %v", err)
	}
	if _, _, err := rec.Object("pattern"); !errors.Is(err, ErrFieldType) {
		t.Fatalf("expected ErrFieldType, got %v", err)
	}
	if _, found, err := rec.List("missing"); found || err != nil {
		t.Fatalf("expected missing list, got %v %v", found, err)
	}
}

func TestFieldsWithDefaults(t *testing.T) {
	custom := Fields{Result: Field{{Path: "output"}}}
	merged := custom.WithDefaults()
	if !reflect.DeepEqual(merged.Result, Field{{Path: "output"}}) {
		t.Fatalf("expected custom result field kept, got %#v", merged.Result)
	}
	if !reflect.DeepEqual(merged.Ingredient, DefaultFields().Ingredient) {
		t.Fatalf("expected default ingredient field")
	}
	if err := (Fields{Count: Field{{Path: " "}}}).Validate(); err == nil {
		t.Fatalf("expected error for empty candidate path")
	}
}
