package main

import (
	"context"
	"fmt"
	"strings"

	"recipegen/internal/store"
	"recipegen/internal/store/postgres"
	"recipegen/internal/store/sqlite"
)

// openStore picks the backend from the DSN scheme.
func openStore(ctx context.Context, dsn string) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		db, err = sqlite.New(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err = postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database DSN %q: expected sqlite:// or postgres://", dsn)
	}
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}
