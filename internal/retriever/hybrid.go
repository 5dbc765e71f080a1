package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/jlacunza/udcito/internal/embedder"
	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

// textSearchLimit is how many candidates the lexical search contributes.
const textSearchLimit = 5

// Hybrid combines semantic similarity search with lexical full-text search
// over a history-enriched query, merging both result sets with content
// deduplication.
type Hybrid struct {
	embedder embedder.Embedder
	store    vectorstore.VectorStore
	k        int
}

// NewHybrid creates a hybrid strategy requesting k similarity candidates.
func NewHybrid(emb embedder.Embedder, store vectorstore.VectorStore, k int) *Hybrid {
	return &Hybrid{
		embedder: emb,
		store:    store,
		k:        k,
	}
}

// Retrieve prefixes the query with the text of the last three history turns,
// then issues both searches against the enriched query. Similarity results
// come first in the merged set.
func (h *Hybrid) Retrieve(ctx context.Context, query string, history []llm.Message) ([]vectorstore.Document, error) {
	enriched := strings.TrimSpace(historyText(history, historyContextTurns) + " " + query)

	vector, err := h.embedder.Embed(ctx, enriched)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	semantic, err := h.store.Search(ctx, vector, h.k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	lexical, err := h.store.TextSearch(ctx, enriched, textSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	merged := make([]vectorstore.Document, 0, len(semantic)+len(lexical))
	merged = append(merged, semantic...)
	merged = append(merged, lexical...)

	return Dedupe(merged), nil
}

var _ Retriever = (*Hybrid)(nil)
