// Package validate checks a produced document for internal consistency.
package validate

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"recipegen/internal/document"
	"recipegen/internal/record"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeUnresolvedAlias  = "unresolved_tag_reference"
	codeUnknownTag       = "unknown_tag_ingredient"
	codeMissingIndex     = "missing_item_index"
	codeIndexNotDense    = "item_index_not_dense"
	codeInvalidCount     = "invalid_result_count"
	codeMissingGrid      = "missing_grid"
	codeMissingFurnaceIO = "missing_furnace_item"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	// Subject is the item or tag the issue is about.
	Subject string
	// Location points into the document, e.g. recipes.crafting[3].
	Location string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() []Issue { return r.filter(SeverityError) }
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarn) }

func (r *Report) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

func Run(doc *document.Document) (*Report, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}

	issues := make([]Issue, 0)
	issues = append(issues, validateAliases(doc.Aliases)...)
	issues = append(issues, validateFurnace(doc)...)
	issues = append(issues, validateCrafting(doc)...)
	issues = append(issues, validateIndex(doc.ItemLookup)...)

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity == SeverityError
		}
		if issues[i].Code != issues[j].Code {
			return issues[i].Code < issues[j].Code
		}
		return issues[i].Location < issues[j].Location
	})
	return &Report{Issues: issues}, nil
}

func validateAliases(aliases map[string][]string) []Issue {
	var issues []Issue
	for tag, members := range aliases {
		for _, member := range members {
			if !strings.HasPrefix(member, record.TagMarker) {
				continue
			}
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeUnresolvedAlias,
				Message:  fmt.Sprintf("member %s was not flattened", member),
				Subject:  tag,
				Location: fmt.Sprintf("aliases[%s]", tag),
			})
		}
	}
	return issues
}

func validateFurnace(doc *document.Document) []Issue {
	var issues []Issue
	for i, f := range doc.Recipes.Furnace {
		location := fmt.Sprintf("recipes.furnace[%d]", i)
		if f.Ingredient == "" || f.Result == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeMissingFurnaceIO,
				Message:  "furnace recipe without ingredient or result",
				Subject:  f.Result,
				Location: location,
			})
		}
		if tag := tagRef(f.Ingredient); tag != "" && !hasTag(doc, tag) {
			issues = append(issues, unknownTag(tag, location))
		}
	}
	return issues
}

func validateCrafting(doc *document.Document) []Issue {
	var issues []Issue
	for i, c := range doc.Recipes.Crafting {
		location := fmt.Sprintf("recipes.crafting[%d]", i)
		if _, ok := doc.ItemLookup[c.Result.Item]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeMissingIndex,
				Message:  "crafting result has no item index",
				Subject:  c.Result.Item,
				Location: location,
			})
		}
		if c.Result.Count < 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeInvalidCount,
				Message:  fmt.Sprintf("result count %d is below 1", c.Result.Count),
				Subject:  c.Result.Item,
				Location: location,
			})
		}
		if len(c.Pattern) == 0 && len(c.Ingredients) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeMissingGrid,
				Message:  "crafting recipe has neither pattern nor ingredients",
				Subject:  c.Result.Item,
				Location: location,
			})
		}

		var refs []string
		for _, v := range c.Key {
			refs = collectTags(v, refs)
		}
		for _, v := range c.Ingredients {
			refs = collectTags(v, refs)
		}
		sort.Strings(refs)
		for _, tag := range slices.Compact(refs) {
			if !hasTag(doc, tag) {
				issues = append(issues, unknownTag(tag, location))
			}
		}
	}
	return issues
}

// validateIndex checks that item indices are exactly 1..n.
func validateIndex(index document.Index) []Issue {
	seen := make(map[int]string, len(index))
	var issues []Issue
	items := make([]string, 0, len(index))
	for item := range index {
		items = append(items, item)
	}
	sort.Strings(items)

	for _, item := range items {
		n := index[item]
		other, duplicate := seen[n]
		if n < 1 || n > len(index) || duplicate {
			message := fmt.Sprintf("index %d is outside 1..%d", n, len(index))
			if duplicate {
				message = fmt.Sprintf("index %d is shared with %s", n, other)
			}
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeIndexNotDense,
				Message:  message,
				Subject:  item,
				Location: fmt.Sprintf("itemLookup[%s]", item),
			})
			continue
		}
		seen[n] = item
	}
	return issues
}

func unknownTag(tag, location string) Issue {
	return Issue{
		Severity: SeverityWarn,
		Code:     codeUnknownTag,
		Message:  fmt.Sprintf("ingredient references unknown tag %s", tag),
		Subject:  tag,
		Location: location,
	}
}

func hasTag(doc *document.Document, tag string) bool {
	_, ok := doc.Aliases[tag]
	return ok
}

func tagRef(value string) string {
	if strings.HasPrefix(value, record.TagMarker) {
		return value
	}
	return ""
}

// collectTags appends every tag referenced by an ingredient value.
func collectTags(v any, out []string) []string {
	switch value := v.(type) {
	case string:
		if tag := tagRef(value); tag != "" {
			out = append(out, tag)
		}
	case []any:
		for _, elem := range value {
			out = collectTags(elem, out)
		}
	case map[string]any:
		if tag, ok := value["tag"].(string); ok && tag != "" {
			if !strings.HasPrefix(tag, record.TagMarker) {
				tag = record.TagMarker + tag
			}
			out = append(out, tag)
		}
	}
	return out
}
