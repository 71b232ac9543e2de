package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"recipegen/internal/document"
)

type LookupItemInput struct {
	Item string `json:"item" jsonschema:"namespaced item id, e.g. minecraft:stick"`
}

type GetTagInput struct {
	Tag string `json:"tag" jsonschema:"tag name with or without the leading #"`
}

type FindRecipesInput struct {
	Item string `json:"item" jsonschema:"namespaced item id"`
	Role string `json:"role,omitempty" jsonschema:"result (default) or ingredient"`
}

type SummaryInput struct{}

type LookupItemOutput struct {
	Item  string   `json:"item"`
	Found bool     `json:"found"`
	Index int      `json:"index,omitempty"`
	Tags  []string `json:"tags"`
}

type GetTagOutput struct {
	Tag     string   `json:"tag"`
	Members []string `json:"members"`
}

type FurnaceOutput struct {
	Type        string  `json:"type"`
	Ingredient  string  `json:"ingredient"`
	Result      string  `json:"result"`
	Experience  float64 `json:"experience"`
	CookingTime int     `json:"cookingtime"`
}

type CraftingOutput struct {
	Type        string         `json:"type"`
	Item        string         `json:"item"`
	Count       int            `json:"count"`
	Pattern     []string       `json:"pattern,omitempty"`
	Key         map[string]any `json:"key,omitempty"`
	Ingredients []any          `json:"ingredients,omitempty"`
}

type FindRecipesOutput struct {
	Furnace  []FurnaceOutput  `json:"furnace"`
	Crafting []CraftingOutput `json:"crafting"`
}

type SummaryOutput struct {
	FurnaceRecipes  int `json:"furnace_recipes"`
	CraftingRecipes int `json:"crafting_recipes"`
	Items           int `json:"items"`
	Tags            int `json:"tags"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "lookup_item",
		Description: "Return the numeric index of a crafted item and the tags that list it",
	}, s.handleLookupItem)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_tag",
		Description: "Return the flattened members of an item tag",
	}, s.handleGetTag)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "find_recipes",
		Description: "Find furnace and crafting recipes that produce or consume an item",
	}, s.handleFindRecipes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "summary",
		Description: "Count recipes, items and tags in the document",
	}, s.handleSummary)
}

func (s *Server) handleLookupItem(ctx context.Context, req *sdk.CallToolRequest, input LookupItemInput) (*sdk.CallToolResult, LookupItemOutput, error) {
	item := strings.TrimSpace(input.Item)
	if item == "" {
		return nil, LookupItemOutput{}, fmt.Errorf("item is required")
	}
	c, err := s.load(ctx)
	if err != nil {
		return nil, LookupItemOutput{}, err
	}

	index, found := c.doc.ItemLookup[item]
	tags := c.memberOf[item]
	if tags == nil {
		tags = []string{}
	}
	return nil, LookupItemOutput{Item: item, Found: found, Index: index, Tags: tags}, nil
}

func (s *Server) handleGetTag(ctx context.Context, req *sdk.CallToolRequest, input GetTagInput) (*sdk.CallToolResult, GetTagOutput, error) {
	name := strings.TrimSpace(input.Tag)
	if name == "" {
		return nil, GetTagOutput{}, fmt.Errorf("tag is required")
	}
	c, err := s.load(ctx)
	if err != nil {
		return nil, GetTagOutput{}, err
	}

	key := tagKey(name)
	members, ok := c.doc.Aliases[key]
	if !ok {
		return nil, GetTagOutput{}, fmt.Errorf("tag not found: %s", key)
	}
	out := make([]string, len(members))
	copy(out, members)
	return nil, GetTagOutput{Tag: key, Members: out}, nil
}

func (s *Server) handleFindRecipes(ctx context.Context, req *sdk.CallToolRequest, input FindRecipesInput) (*sdk.CallToolResult, FindRecipesOutput, error) {
	item := strings.TrimSpace(input.Item)
	if item == "" {
		return nil, FindRecipesOutput{}, fmt.Errorf("item is required")
	}
	var asIngredient bool
	switch strings.ToLower(input.Role) {
	case "", "result":
	case "ingredient":
		asIngredient = true
	default:
		return nil, FindRecipesOutput{}, fmt.Errorf("invalid role: %s", input.Role)
	}
	c, err := s.load(ctx)
	if err != nil {
		return nil, FindRecipesOutput{}, err
	}

	output := FindRecipesOutput{Furnace: []FurnaceOutput{}, Crafting: []CraftingOutput{}}
	for _, f := range c.furnaceFor(item, asIngredient) {
		output.Furnace = append(output.Furnace, toFurnaceOutput(f))
	}
	for _, recipe := range c.craftingFor(item, asIngredient) {
		output.Crafting = append(output.Crafting, toCraftingOutput(recipe))
	}
	return nil, output, nil
}

func (s *Server) handleSummary(ctx context.Context, req *sdk.CallToolRequest, input SummaryInput) (*sdk.CallToolResult, SummaryOutput, error) {
	c, err := s.load(ctx)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{
		FurnaceRecipes:  len(c.doc.Recipes.Furnace),
		CraftingRecipes: len(c.doc.Recipes.Crafting),
		Items:           len(c.doc.ItemLookup),
		Tags:            len(c.doc.Aliases),
	}, nil
}

func toFurnaceOutput(f document.Furnace) FurnaceOutput {
	return FurnaceOutput{
		Type:        f.Type,
		Ingredient:  f.Ingredient,
		Result:      f.Result,
		Experience:  f.Experience,
		CookingTime: f.CookingTime,
	}
}

func toCraftingOutput(c document.Crafting) CraftingOutput {
	return CraftingOutput{
		Type:        c.Type,
		Item:        c.Result.Item,
		Count:       c.Result.Count,
		Pattern:     c.Pattern,
		Key:         c.Key,
		Ingredients: c.Ingredients,
	}
}
