// Package vectorstore provides interfaces and implementations for vector similarity search.
package vectorstore

import (
	"context"
)

// Document is a retrieved unit of context. Identity for deduplication
// purposes is the exact Content string; Metadata carries source details
// (file name, page number) and plays no part in identity.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Chunk represents a document chunk with its embedding, as stored
type Chunk struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]string
}

// VectorStore defines the interface for vector storage operations
type VectorStore interface {
	// CreateCollection creates the backing collection with the given vector dimension
	CreateCollection(ctx context.Context, dimension int) error

	// CollectionExists checks if the backing collection exists
	CollectionExists(ctx context.Context) (bool, error)

	// Upsert inserts or updates chunks in the vector store
	Upsert(ctx context.Context, chunks []Chunk) error

	// Search performs similarity search and returns up to k documents
	// ordered by descending similarity
	Search(ctx context.Context, vector []float32, k int) ([]Document, error)

	// TextSearch performs a lexical full-text search over document content
	// and returns up to k documents
	TextSearch(ctx context.Context, query string, k int) ([]Document, error)

	// DeleteBySource removes all chunks whose source metadata matches
	DeleteBySource(ctx context.Context, source string) error
}
