package retriever

import (
	"context"
	"fmt"

	"github.com/jlacunza/udcito/internal/embedder"
	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

// Direct embeds the query and runs a single similarity search.
type Direct struct {
	embedder embedder.Embedder
	store    vectorstore.VectorStore
	k        int
}

// NewDirect creates a direct retrieval strategy requesting k candidates.
func NewDirect(emb embedder.Embedder, store vectorstore.VectorStore, k int) *Direct {
	return &Direct{
		embedder: emb,
		store:    store,
		k:        k,
	}
}

// Retrieve returns up to k documents ordered by descending similarity.
// History is not used by this strategy.
func (d *Direct) Retrieve(ctx context.Context, query string, _ []llm.Message) ([]vectorstore.Document, error) {
	vector, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	docs, err := d.store.Search(ctx, vector, d.k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	return docs, nil
}

var _ Retriever = (*Direct)(nil)
