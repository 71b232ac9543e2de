package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS runs (
    id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    digest           TEXT NOT NULL,
    archive          TEXT NOT NULL DEFAULT '',
    inner_archive    TEXT NOT NULL DEFAULT '',
    layout           TEXT NOT NULL DEFAULT '',
    furnace_recipes  INTEGER NOT NULL DEFAULT 0,
    crafting_recipes INTEGER NOT NULL DEFAULT 0,
    items            INTEGER NOT NULL DEFAULT 0,
    tags             INTEGER NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS furnace_recipes (
    position    INTEGER PRIMARY KEY,
    type        TEXT NOT NULL,
    ingredient  TEXT NOT NULL,
    result      TEXT NOT NULL,
    experience  DOUBLE PRECISION NOT NULL,
    cookingtime INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS crafting_recipes (
    position     INTEGER PRIMARY KEY,
    type         TEXT NOT NULL,
    result_item  TEXT NOT NULL,
    result_count INTEGER NOT NULL,
    pattern      JSONB,
    grid_key     JSONB,
    ingredients  JSONB
);

CREATE TABLE IF NOT EXISTS item_lookup (
    item TEXT PRIMARY KEY,
    idx  INTEGER NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS aliases (
    tag     TEXT PRIMARY KEY,
    members JSONB NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs (digest);
CREATE INDEX IF NOT EXISTS idx_furnace_result ON furnace_recipes (result);
CREATE INDEX IF NOT EXISTS idx_crafting_result ON crafting_recipes (result_item);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
