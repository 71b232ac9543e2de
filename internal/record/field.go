package record

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Candidate is one location a semantic value may live at. Path uses gjson
// syntax relative to the record root (or to a list element for TagValue).
// Tag candidates produce tag references.
type Candidate struct {
	Path string `yaml:"path"`
	Tag  bool   `yaml:"tag,omitempty"`
}

// Field lists candidates in priority order. Newer schema revisions go first.
type Field []Candidate

// Lookup returns the first candidate holding a non-empty string.
func (f Field) Lookup(value gjson.Result) (string, bool) {
	for _, candidate := range f {
		found := value.Get(candidate.Path)
		if found.Type != gjson.String || found.Str == "" {
			continue
		}
		if candidate.Tag && !strings.HasPrefix(found.Str, TagMarker) {
			return TagMarker + found.Str, true
		}
		return found.Str, true
	}
	return "", false
}

// Int returns the first candidate that exists. It must be a number.
func (f Field) Int(value gjson.Result) (int, bool, error) {
	for _, candidate := range f {
		found := value.Get(candidate.Path)
		if !found.Exists() {
			continue
		}
		if found.Type != gjson.Number {
			return 0, true, fieldTypeError(candidate.Path, "number")
		}
		return int(found.Int()), true, nil
	}
	return 0, false, nil
}

// Fields is the field table shared by the recipe and tag readers.
type Fields struct {
	Result     Field `yaml:"result"`
	Ingredient Field `yaml:"ingredient"`
	Count      Field `yaml:"count"`
	TagValue   Field `yaml:"tag_value"`
}

// DefaultFields covers the pre-1.20.5 layout ("item" keys, ingredient
// objects) and the current one ("id" keys, bare or listed ingredients).
func DefaultFields() Fields {
	return Fields{
		Result: Field{
			{Path: "result.id"},
			{Path: "result.item"},
			{Path: "result"},
		},
		Ingredient: Field{
			{Path: "ingredient.0.tag", Tag: true},
			{Path: "ingredient.0.item"},
			{Path: "ingredient.0"},
			{Path: "ingredient.tag", Tag: true},
			{Path: "ingredient.item"},
			{Path: "ingredient"},
		},
		Count: Field{
			{Path: "result.count"},
		},
		TagValue: Field{
			{Path: "id"},
			{Path: "@this"},
		},
	}
}

// WithDefaults fills every empty field from DefaultFields.
func (f Fields) WithDefaults() Fields {
	defaults := DefaultFields()
	if len(f.Result) == 0 {
		f.Result = defaults.Result
	}
	if len(f.Ingredient) == 0 {
		f.Ingredient = defaults.Ingredient
	}
	if len(f.Count) == 0 {
		f.Count = defaults.Count
	}
	if len(f.TagValue) == 0 {
		f.TagValue = defaults.TagValue
	}
	return f
}

func (f Fields) Validate() error {
	named := map[string]Field{
		"result":     f.Result,
		"ingredient": f.Ingredient,
		"count":      f.Count,
		"tag_value":  f.TagValue,
	}
	for name, field := range named {
		for i, candidate := range field {
			if strings.TrimSpace(candidate.Path) == "" {
				return fmt.Errorf("field %s candidate %d path is required", name, i)
			}
		}
	}
	return nil
}
