package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recipegen/internal/document"
	"recipegen/internal/store"
)

func (c *Client) LastDigest(ctx context.Context) (string, error) {
	var digest string
	err := c.db.QueryRowContext(ctx, "SELECT digest FROM runs ORDER BY id DESC LIMIT 1").Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading last digest: %w", err)
	}
	return digest, nil
}

// SaveDocument replaces the stored document and appends a run record in a
// single transaction.
func (c *Client) SaveDocument(ctx context.Context, in store.RunInput, doc *document.Document) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"furnace_recipes", "crafting_recipes", "item_lookup", "aliases"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertFurnace(ctx, tx, doc.Recipes.Furnace); err != nil {
		return err
	}
	if err := insertCrafting(ctx, tx, doc.Recipes.Crafting); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, doc.ItemLookup); err != nil {
		return err
	}
	if err := insertAliases(ctx, tx, doc.Aliases); err != nil {
		return err
	}

	run := store.NewRun(in, doc)
	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (digest, archive, inner_archive, layout, furnace_recipes, crafting_recipes, items, tags)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Digest, run.Archive, run.Inner, run.Layout, run.FurnaceRecipes, run.CraftingRecipes, run.Items, run.Tags)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document: %w", err)
	}
	return nil
}

func insertFurnace(ctx context.Context, tx *sql.Tx, recipes []document.Furnace) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO furnace_recipes (position, type, ingredient, result, experience, cookingtime)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing furnace insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range recipes {
		if _, err := stmt.ExecContext(ctx, i, f.Type, f.Ingredient, f.Result, f.Experience, f.CookingTime); err != nil {
			return fmt.Errorf("inserting furnace recipe %d: %w", i, err)
		}
	}
	return nil
}

func insertCrafting(ctx context.Context, tx *sql.Tx, recipes []document.Crafting) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO crafting_recipes (position, type, result_item, result_count, pattern, grid_key, ingredients)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing crafting insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range recipes {
		row, err := store.EncodeCrafting(i, c)
		if err != nil {
			return fmt.Errorf("encoding crafting recipe %d: %w", i, err)
		}
		_, err = stmt.ExecContext(ctx, row.Position, row.Type, row.Item, row.Count,
			nullText(row.Pattern), nullText(row.Key), nullText(row.Ingredients))
		if err != nil {
			return fmt.Errorf("inserting crafting recipe %d: %w", i, err)
		}
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, index document.Index) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO item_lookup (item, idx) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()

	for item, n := range index {
		if _, err := stmt.ExecContext(ctx, item, n); err != nil {
			return fmt.Errorf("inserting item %s: %w", item, err)
		}
	}
	return nil
}

func insertAliases(ctx context.Context, tx *sql.Tx, aliases map[string][]string) error {
	rows, err := store.EncodeAliases(aliases)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO aliases (tag, members) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing alias insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Tag, string(row.Members)); err != nil {
			return fmt.Errorf("inserting tag %s: %w", row.Tag, err)
		}
	}
	return nil
}

func nullText(data []byte) sql.NullString {
	if data == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

// LoadDocument reads the stored document back. An empty database yields an
// empty document.
func (c *Client) LoadDocument(ctx context.Context) (*document.Document, error) {
	doc := store.EmptyDocument()
	loaders := []func(context.Context, *document.Document) error{
		c.loadFurnace,
		c.loadCrafting,
		c.loadItems,
		c.loadAliases,
	}
	for _, load := range loaders {
		if err := load(ctx, doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (c *Client) loadFurnace(ctx context.Context, doc *document.Document) error {
	rows, err := c.db.QueryContext(ctx, `
	SELECT type, ingredient, result, experience, cookingtime
	FROM furnace_recipes ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("querying furnace recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f document.Furnace
		if err := rows.Scan(&f.Type, &f.Ingredient, &f.Result, &f.Experience, &f.CookingTime); err != nil {
			return fmt.Errorf("scanning furnace recipe: %w", err)
		}
		doc.Recipes.Furnace = append(doc.Recipes.Furnace, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating furnace recipes: %w", err)
	}
	return nil
}

func (c *Client) loadCrafting(ctx context.Context, doc *document.Document) error {
	rows, err := c.db.QueryContext(ctx, `
	SELECT position, type, result_item, result_count, pattern, grid_key, ingredients
	FROM crafting_recipes ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("querying crafting recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row store.CraftingRow
		var pattern, key, ingredients sql.NullString
		if err := rows.Scan(&row.Position, &row.Type, &row.Item, &row.Count, &pattern, &key, &ingredients); err != nil {
			return fmt.Errorf("scanning crafting recipe: %w", err)
		}
		row.Pattern = textBytes(pattern)
		row.Key = textBytes(key)
		row.Ingredients = textBytes(ingredients)
		crafting, err := store.DecodeCrafting(row)
		if err != nil {
			return fmt.Errorf("crafting recipe %d: %w", row.Position, err)
		}
		doc.Recipes.Crafting = append(doc.Recipes.Crafting, crafting)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating crafting recipes: %w", err)
	}
	return nil
}

func (c *Client) loadItems(ctx context.Context, doc *document.Document) error {
	rows, err := c.db.QueryContext(ctx, "SELECT item, idx FROM item_lookup")
	if err != nil {
		return fmt.Errorf("querying item lookup: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item string
		var n int
		if err := rows.Scan(&item, &n); err != nil {
			return fmt.Errorf("scanning item: %w", err)
		}
		doc.ItemLookup[item] = n
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating item lookup: %w", err)
	}
	return nil
}

func (c *Client) loadAliases(ctx context.Context, doc *document.Document) error {
	rows, err := c.db.QueryContext(ctx, "SELECT tag, members FROM aliases")
	if err != nil {
		return fmt.Errorf("querying aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag, members string
		if err := rows.Scan(&tag, &members); err != nil {
			return fmt.Errorf("scanning tag: %w", err)
		}
		decoded, err := store.DecodeMembers([]byte(members))
		if err != nil {
			return fmt.Errorf("tag %s: %w", tag, err)
		}
		doc.Aliases[tag] = decoded
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating aliases: %w", err)
	}
	return nil
}

func textBytes(s sql.NullString) []byte {
	if !s.Valid {
		return nil
	}
	return []byte(s.String)
}

// Runs lists the latest runs, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := c.db.QueryContext(ctx, `
	SELECT id, digest, archive, inner_archive, layout, furnace_recipes, crafting_recipes, items, tags, created_at
	FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var r store.Run
		var created string
		err := rows.Scan(&r.ID, &r.Digest, &r.Archive, &r.Inner, &r.Layout,
			&r.FurnaceRecipes, &r.CraftingRecipes, &r.Items, &r.Tags, &created)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}
