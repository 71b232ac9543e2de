// Package record decodes recipe and tag definitions stored as JSON (with
// optional comments and trailing commas) and reads fields out of them
// through ordered candidate lists, so several schema revisions of the same
// definition can be read by one code path.
package record

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// TagMarker prefixes item references that name a tag instead of an item.
const TagMarker = "#"

var (
	ErrMalformed = errors.New("malformed record")
	ErrNotObject = errors.New("record is not an object")
	ErrFieldType = errors.New("unexpected field type")
)

type Record struct {
	root gjson.Result
}

func Decode(data []byte) (Record, error) {
	trimmed := bytes.TrimPrefix(data, []byte("\ufeff"))
	clean := jsonc.ToJSON(trimmed)
	if !gjson.ValidBytes(clean) {
		return Record{}, ErrMalformed
	}
	root := gjson.ParseBytes(clean)
	if !root.IsObject() {
		return Record{}, ErrNotObject
	}
	return Record{root: root}, nil
}

// Type returns the declared "type" of the record, or "" when absent.
func (r Record) Type() (string, error) {
	value := r.root.Get("type")
	if !value.Exists() {
		return "", nil
	}
	if value.Type != gjson.String {
		return "", fieldTypeError("type", "string")
	}
	return value.Str, nil
}

func (r Record) Lookup(field Field) (string, bool) {
	return field.Lookup(r.root)
}

func (r Record) Int(field Field) (int, bool, error) {
	return field.Int(r.root)
}

// Strings returns the string list at path. A missing path reports found=false.
func (r Record) Strings(path string) ([]string, bool, error) {
	value := r.root.Get(path)
	if !value.Exists() {
		return nil, false, nil
	}
	if !value.IsArray() {
		return nil, true, fieldTypeError(path, "list")
	}
	items := value.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, true, fieldTypeError(path, "list of strings")
		}
		out = append(out, item.Str)
	}
	return out, true, nil
}

// Object returns the mapping at path decoded into plain Go values.
func (r Record) Object(path string) (map[string]any, bool, error) {
	value := r.root.Get(path)
	if !value.Exists() {
		return nil, false, nil
	}
	if !value.IsObject() {
		return nil, true, fieldTypeError(path, "object")
	}
	out, ok := value.Value().(map[string]any)
	if !ok {
		return nil, true, fieldTypeError(path, "object")
	}
	return out, true, nil
}

// List returns the list at path decoded into plain Go values.
func (r Record) List(path string) ([]any, bool, error) {
	value := r.root.Get(path)
	if !value.Exists() {
		return nil, false, nil
	}
	if !value.IsArray() {
		return nil, true, fieldTypeError(path, "list")
	}
	out, ok := value.Value().([]any)
	if !ok {
		return nil, true, fieldTypeError(path, "list")
	}
	return out, true, nil
}

// Elements returns the raw elements of the list at path so callers can run
// a Field over each of them.
func (r Record) Elements(path string) ([]gjson.Result, bool, error) {
	value := r.root.Get(path)
	if !value.Exists() {
		return nil, false, nil
	}
	if !value.IsArray() {
		return nil, true, fieldTypeError(path, "list")
	}
	return value.Array(), true, nil
}

func fieldTypeError(path, want string) error {
	return fmt.Errorf("%w: %s must be a %s", ErrFieldType, path, want)
}
