// Package tags loads item tag definitions and flattens tag-of-tag
// references into plain item sets.
//
// Tag names keep the full path below the tag directory, so a nested
// file such as data/c/tags/item/ores/iron.json is #c:ores/iron rather
// than #c:iron. Recipes reference nested tags by that full name.
package tags

import (
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"

	"recipegen/internal/archive"
	"recipegen/internal/record"
)

// Table maps a tag reference ("#namespace:name") to its members.
type Table map[string][]string

// Skip records a tag entry that could not be used.
type Skip struct {
	Path string
	Err  error
}

// Key derives the table key for a tag file. The namespace is the second
// path segment (data/<namespace>/...) and the name is the path below
// prefix without its extension, so data/c/tags/item/ores/iron.json under
// data/*/tags/item/ becomes #c:ores/iron.
func Key(entryPath, prefix string) (string, bool) {
	segments := strings.Split(entryPath, "/")
	depth := archive.PrefixDepth(prefix)
	if len(segments) < 2 || len(segments) <= depth {
		return "", false
	}
	namespace := segments[1]
	rel := strings.Join(segments[depth:], "/")
	name := strings.TrimSuffix(rel, path.Ext(rel))
	if namespace == "" || name == "" {
		return "", false
	}
	return record.TagMarker + namespace + ":" + name, true
}

// Load builds the unresolved table from tag entries found under prefix.
// Each element of "values" is read through valueField; elements that
// yield nothing are ignored.
func Load(entries []archive.Entry, prefix string, valueField record.Field) (Table, []Skip) {
	table := make(Table)
	var skipped []Skip
	for _, entry := range entries {
		key, ok := Key(entry.Path, prefix)
		if !ok {
			skipped = append(skipped, Skip{Path: entry.Path, Err: fmt.Errorf("cannot derive tag name from path")})
			continue
		}
		rec, err := record.Decode(entry.Data)
		if err != nil {
			skipped = append(skipped, Skip{Path: entry.Path, Err: err})
			continue
		}
		elements, _, err := rec.Elements("values")
		if err != nil {
			skipped = append(skipped, Skip{Path: entry.Path, Err: err})
			continue
		}
		values := table[key]
		if values == nil {
			values = []string{}
		}
		for _, element := range elements {
			if value, ok := valueField.Lookup(element); ok {
				values = append(values, value)
			}
		}
		table[key] = values
	}
	return table, skipped
}

// Unresolved counts tag references left in member lists.
func (t Table) Unresolved() int {
	n := 0
	for _, values := range t {
		for _, value := range values {
			if IsRef(value) {
				n++
			}
		}
	}
	return n
}

func (t Table) Equal(other Table) bool {
	if len(t) != len(other) {
		return false
	}
	for key, values := range t {
		otherValues, ok := other[key]
		if !ok || !slices.Equal(values, otherValues) {
			return false
		}
	}
	return true
}

// Keys returns the tag references in lexical order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func IsRef(value string) bool {
	return strings.HasPrefix(value, record.TagMarker)
}

// normalize returns a copy with every member list sorted and deduplicated.
func normalize(t Table) Table {
	out := make(Table, len(t))
	for key, values := range t {
		out[key] = uniqueSorted(values)
	}
	return out
}

func uniqueSorted(values []string) []string {
	out := slices.Clone(values)
	if out == nil {
		out = []string{}
	}
	sort.Strings(out)
	return slices.Compact(out)
}
