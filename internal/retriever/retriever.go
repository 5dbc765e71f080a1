// Package retriever implements the document retrieval strategies used by the
// query pipeline: direct similarity search, LLM-expanded multi-query search,
// and hybrid semantic+lexical search.
//
// Exactly one strategy is active per process, selected by configuration.
// Strategies report provider failures as errors; the orchestrator absorbs
// them into an empty document set so retrieval never visibly fails.
package retriever

import (
	"context"
	"strings"

	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

// historyContextTurns is how many trailing history turns enrich a query.
const historyContextTurns = 3

// Retriever defines the interface for a retrieval strategy.
type Retriever interface {
	// Retrieve returns the candidate documents for a query. Strategies that
	// do not use conversation history ignore it.
	Retrieve(ctx context.Context, query string, history []llm.Message) ([]vectorstore.Document, error)
}

// lastTurns returns up to n trailing messages from history.
func lastTurns(history []llm.Message, n int) []llm.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// historyText joins the content of the last n history turns with single spaces.
// Returns an empty string for empty history.
func historyText(history []llm.Message, n int) string {
	turns := lastTurns(history, n)
	parts := make([]string, 0, len(turns))
	for _, m := range turns {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, " ")
}
