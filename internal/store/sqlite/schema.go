package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS runs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		digest           TEXT NOT NULL,
		archive          TEXT NOT NULL DEFAULT '',
		inner_archive    TEXT NOT NULL DEFAULT '',
		layout           TEXT NOT NULL DEFAULT '',
		furnace_recipes  INTEGER NOT NULL DEFAULT 0,
		crafting_recipes INTEGER NOT NULL DEFAULT 0,
		items            INTEGER NOT NULL DEFAULT 0,
		tags             INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS furnace_recipes (
		position    INTEGER PRIMARY KEY,
		type        TEXT NOT NULL,
		ingredient  TEXT NOT NULL,
		result      TEXT NOT NULL,
		experience  REAL NOT NULL,
		cookingtime INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS crafting_recipes (
		position     INTEGER PRIMARY KEY,
		type         TEXT NOT NULL,
		result_item  TEXT NOT NULL,
		result_count INTEGER NOT NULL,
		pattern      TEXT,
		grid_key     TEXT,
		ingredients  TEXT
	);

	CREATE TABLE IF NOT EXISTS item_lookup (
		item  TEXT PRIMARY KEY,
		idx   INTEGER NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS aliases (
		tag     TEXT PRIMARY KEY,
		members TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs (digest);
	CREATE INDEX IF NOT EXISTS idx_furnace_result ON furnace_recipes (result);
	CREATE INDEX IF NOT EXISTS idx_crafting_result ON crafting_recipes (result_item);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
