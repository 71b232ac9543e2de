package mcp

import (
	"context"
	"fmt"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"recipegen/internal/document"
)

// DocumentLoader supplies the document the tools answer from. store.Store
// implementations satisfy it, as does FileLoader.
type DocumentLoader interface {
	LoadDocument(ctx context.Context) (*document.Document, error)
}

// FileLoader reads a document written by the extract command.
type FileLoader struct {
	Path string
}

func (f FileLoader) LoadDocument(ctx context.Context) (*document.Document, error) {
	doc, err := document.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", f.Path, err)
	}
	return doc, nil
}

type Server struct {
	loader DocumentLoader
	mcp    *sdk.Server

	mu      sync.Mutex
	catalog *catalog
}

func NewServer(loader DocumentLoader, version string) *Server {
	s := &Server{
		loader: loader,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "recipegen",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

// load returns the catalog, reading the document on first use. A failed
// load is retried on the next call.
func (s *Server) load(ctx context.Context) (*catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog != nil {
		return s.catalog, nil
	}
	doc, err := s.loader.LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	s.catalog = newCatalog(doc)
	return s.catalog, nil
}
