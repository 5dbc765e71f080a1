package reranker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

const judgeInstruction = "Evaluate the relevance of the document to the query."

// LLMReranker asks the model to judge each document's relevance to the query
// and sorts documents by the raw textual judgment, descending.
type LLMReranker struct {
	chat   llm.LLM
	opts   llm.CompleteOptions
	logger *slog.Logger
}

// Option is a functional option for configuring LLMReranker.
type Option func(*LLMReranker)

// WithLogger sets the logger for the stage.
func WithLogger(logger *slog.Logger) Option {
	return func(r *LLMReranker) {
		r.logger = logger
	}
}

// NewLLMReranker creates a new LLM-based reranker.
func NewLLMReranker(chat llm.LLM, opts llm.CompleteOptions, options ...Option) *LLMReranker {
	r := &LLMReranker{
		chat:   chat,
		opts:   opts,
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Rerank issues one relevance judgment per document and sorts by the judgment
// text, descending. If any judgment call fails the original order is returned.
func (r *LLMReranker) Rerank(ctx context.Context, query string, docs []vectorstore.Document) []vectorstore.Document {
	if len(docs) <= 1 {
		return docs
	}

	judgments := make([]string, len(docs))
	for i, doc := range docs {
		judgment, err := r.judge(ctx, query, doc)
		if err != nil {
			r.logger.Warn("reranking failed, keeping original order", "error", err)
			return docs
		}
		judgments[i] = judgment
	}

	ranked := make([]vectorstore.Document, len(docs))
	indices := make([]int, len(docs))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return judgments[indices[a]] > judgments[indices[b]]
	})
	for i, idx := range indices {
		ranked[i] = docs[idx]
	}

	return ranked
}

func (r *LLMReranker) judge(ctx context.Context, query string, doc vectorstore.Document) (string, error) {
	return r.chat.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: judgeInstruction},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Query: %s", query)},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Document: %s", doc.Content)},
	}, r.opts)
}

// Ensure LLMReranker implements Reranker interface.
var _ Reranker = (*LLMReranker)(nil)
