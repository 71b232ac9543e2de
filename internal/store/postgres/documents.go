package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"recipegen/internal/document"
	"recipegen/internal/store"
)

func (c *Client) LastDigest(ctx context.Context) (string, error) {
	var digest string
	err := c.pool.QueryRow(ctx, "SELECT digest FROM runs ORDER BY id DESC LIMIT 1").Scan(&digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading last digest: %w", err)
	}
	return digest, nil
}

// SaveDocument truncates the document tables and bulk loads doc with COPY,
// appending a run record in the same transaction.
func (c *Client) SaveDocument(ctx context.Context, in store.RunInput, doc *document.Document) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE furnace_recipes, crafting_recipes, item_lookup, aliases"); err != nil {
		return fmt.Errorf("truncating document tables: %w", err)
	}

	furnace := make([][]any, 0, len(doc.Recipes.Furnace))
	for i, f := range doc.Recipes.Furnace {
		furnace = append(furnace, []any{i, f.Type, f.Ingredient, f.Result, f.Experience, f.CookingTime})
	}
	if err := copyRows(ctx, tx, "furnace_recipes",
		[]string{"position", "type", "ingredient", "result", "experience", "cookingtime"}, furnace); err != nil {
		return err
	}

	crafting := make([][]any, 0, len(doc.Recipes.Crafting))
	for i, recipe := range doc.Recipes.Crafting {
		row, err := store.EncodeCrafting(i, recipe)
		if err != nil {
			return fmt.Errorf("encoding crafting recipe %d: %w", i, err)
		}
		crafting = append(crafting, []any{row.Position, row.Type, row.Item, row.Count, row.Pattern, row.Key, row.Ingredients})
	}
	if err := copyRows(ctx, tx, "crafting_recipes",
		[]string{"position", "type", "result_item", "result_count", "pattern", "grid_key", "ingredients"}, crafting); err != nil {
		return err
	}

	items := make([][]any, 0, len(doc.ItemLookup))
	for item, n := range doc.ItemLookup {
		items = append(items, []any{item, n})
	}
	if err := copyRows(ctx, tx, "item_lookup", []string{"item", "idx"}, items); err != nil {
		return err
	}

	aliasRows, err := store.EncodeAliases(doc.Aliases)
	if err != nil {
		return err
	}
	aliases := make([][]any, 0, len(aliasRows))
	for _, row := range aliasRows {
		aliases = append(aliases, []any{row.Tag, row.Members})
	}
	if err := copyRows(ctx, tx, "aliases", []string{"tag", "members"}, aliases); err != nil {
		return err
	}

	run := store.NewRun(in, doc)
	_, err = tx.Exec(ctx, `
INSERT INTO runs (digest, archive, inner_archive, layout, furnace_recipes, crafting_recipes, items, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, run.Digest, run.Archive, run.Inner, run.Layout, run.FurnaceRecipes, run.CraftingRecipes, run.Items, run.Tags)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing document: %w", err)
	}
	return nil
}

func copyRows(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copying into %s: %w", table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copying into %s: wrote %d of %d rows", table, n, len(rows))
	}
	return nil
}

func (c *Client) LoadDocument(ctx context.Context) (*document.Document, error) {
	doc := store.EmptyDocument()

	furnace, err := c.pool.Query(ctx, `
SELECT type, ingredient, result, experience, cookingtime
FROM furnace_recipes ORDER BY position
`)
	if err != nil {
		return nil, fmt.Errorf("querying furnace recipes: %w", err)
	}
	for furnace.Next() {
		var f document.Furnace
		if err := furnace.Scan(&f.Type, &f.Ingredient, &f.Result, &f.Experience, &f.CookingTime); err != nil {
			furnace.Close()
			return nil, fmt.Errorf("scanning furnace recipe: %w", err)
		}
		doc.Recipes.Furnace = append(doc.Recipes.Furnace, f)
	}
	furnace.Close()
	if err := furnace.Err(); err != nil {
		return nil, fmt.Errorf("iterating furnace recipes: %w", err)
	}

	crafting, err := c.pool.Query(ctx, `
SELECT position, type, result_item, result_count, pattern, grid_key, ingredients
FROM crafting_recipes ORDER BY position
`)
	if err != nil {
		return nil, fmt.Errorf("querying crafting recipes: %w", err)
	}
	for crafting.Next() {
		var row store.CraftingRow
		if err := crafting.Scan(&row.Position, &row.Type, &row.Item, &row.Count, &row.Pattern, &row.Key, &row.Ingredients); err != nil {
			crafting.Close()
			return nil, fmt.Errorf("scanning crafting recipe: %w", err)
		}
		recipe, err := store.DecodeCrafting(row)
		if err != nil {
			crafting.Close()
			return nil, fmt.Errorf("crafting recipe %d: %w", row.Position, err)
		}
		doc.Recipes.Crafting = append(doc.Recipes.Crafting, recipe)
	}
	crafting.Close()
	if err := crafting.Err(); err != nil {
		return nil, fmt.Errorf("iterating crafting recipes: %w", err)
	}

	items, err := c.pool.Query(ctx, "SELECT item, idx FROM item_lookup")
	if err != nil {
		return nil, fmt.Errorf("querying item lookup: %w", err)
	}
	for items.Next() {
		var item string
		var n int
		if err := items.Scan(&item, &n); err != nil {
			items.Close()
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		doc.ItemLookup[item] = n
	}
	items.Close()
	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("iterating item lookup: %w", err)
	}

	aliases, err := c.pool.Query(ctx, "SELECT tag, members FROM aliases")
	if err != nil {
		return nil, fmt.Errorf("querying aliases: %w", err)
	}
	for aliases.Next() {
		var tag string
		var members []byte
		if err := aliases.Scan(&tag, &members); err != nil {
			aliases.Close()
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		decoded, err := store.DecodeMembers(members)
		if err != nil {
			aliases.Close()
			return nil, fmt.Errorf("tag %s: %w", tag, err)
		}
		doc.Aliases[tag] = decoded
	}
	aliases.Close()
	if err := aliases.Err(); err != nil {
		return nil, fmt.Errorf("iterating aliases: %w", err)
	}

	return doc, nil
}

func (c *Client) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := c.pool.Query(ctx, `
SELECT id, digest, archive, inner_archive, layout, furnace_recipes, crafting_recipes, items, tags, created_at
FROM runs ORDER BY id DESC LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var r store.Run
		err := rows.Scan(&r.ID, &r.Digest, &r.Archive, &r.Inner, &r.Layout,
			&r.FurnaceRecipes, &r.CraftingRecipes, &r.Items, &r.Tags, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}
