package store

import (
	"context"
	"time"

	"recipegen/internal/document"
)

// Store persists the most recent document along with a history of runs.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	// LastDigest returns the archive digest of the latest run, or "" when
	// nothing has been saved yet.
	LastDigest(ctx context.Context) (string, error)
	SaveDocument(ctx context.Context, run RunInput, doc *document.Document) error
	LoadDocument(ctx context.Context) (*document.Document, error)
	Runs(ctx context.Context, limit int) ([]Run, error)
}

type RunInput struct {
	Digest  string
	Archive string
	Inner   string
	Layout  string
}

type Run struct {
	ID              int64
	Digest          string
	Archive         string
	Inner           string
	Layout          string
	FurnaceRecipes  int
	CraftingRecipes int
	Items           int
	Tags            int
	CreatedAt       time.Time
}
