// Package reranker provides re-ranking of retrieved documents by model-judged
// relevance.
//
// # Trade-offs
//
// The LLM reranker issues one chat completion per document, O(n) provider
// calls per query. Acceptable only for small retrieval depths; it is
// disabled by default and enabled via RERANKER_ENABLED.
package reranker

import (
	"context"

	"github.com/jlacunza/udcito/internal/vectorstore"
)

// Reranker defines the interface for re-ranking retrieved documents.
type Reranker interface {
	// Rerank returns the documents reordered by descending relevance to the
	// query. On any failure it returns the input unchanged; re-ranking is
	// never the reason a query fails.
	Rerank(ctx context.Context, query string, docs []vectorstore.Document) []vectorstore.Document
}
