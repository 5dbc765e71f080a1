package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

const (
	// defaultVariants is how many alternative phrasings the model is asked for.
	defaultVariants = 3

	// subQueryConcurrency bounds parallel sub-retrievals.
	subQueryConcurrency = 4
)

const multiQueryInstruction = "You are an AI language model assistant. Your task is to generate " +
	"alternative versions of the given user question to retrieve relevant documents from a " +
	"vector database. By generating multiple perspectives on the user question, your goal is " +
	"to help overcome some of the limitations of distance-based similarity search. " +
	"Provide the alternative questions only, one per line, with no numbering."

// MultiQuery expands the query into several alternative phrasings via one
// chat completion, retrieves each phrasing independently, and merges the
// result sets with content deduplication. The original query is always one
// of the sub-queries.
type MultiQuery struct {
	chat     llm.LLM
	inner    Retriever
	opts     llm.CompleteOptions
	variants int
	logger   *slog.Logger
}

// MultiQueryOption is a functional option for configuring MultiQuery.
type MultiQueryOption func(*MultiQuery)

// WithVariants sets how many alternative phrasings are requested.
func WithVariants(n int) MultiQueryOption {
	return func(m *MultiQuery) {
		if n > 0 {
			m.variants = n
		}
	}
}

// WithLogger sets the logger for the strategy.
func WithLogger(logger *slog.Logger) MultiQueryOption {
	return func(m *MultiQuery) {
		m.logger = logger
	}
}

// NewMultiQuery creates a multi-query strategy. inner performs the per-phrasing
// retrieval, normally a *Direct.
func NewMultiQuery(chat llm.LLM, inner Retriever, opts llm.CompleteOptions, options ...MultiQueryOption) *MultiQuery {
	m := &MultiQuery{
		chat:     chat,
		inner:    inner,
		opts:     opts,
		variants: defaultVariants,
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(m)
	}

	return m
}

// Retrieve runs one retrieval per phrasing and concatenates the result sets
// in sub-query order before deduplicating. There is no global relevance
// ordering across sub-queries.
func (m *MultiQuery) Retrieve(ctx context.Context, query string, history []llm.Message) ([]vectorstore.Document, error) {
	queries, err := m.expandQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	resultSets := make([][]vectorstore.Document, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, subQueryConcurrency)

	for i, q := range queries {
		wg.Add(1)
		go func(idx int, subQuery string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}

			docs, err := m.inner.Retrieve(ctx, subQuery, history)
			if err != nil {
				errs[idx] = fmt.Errorf("sub-query %d: %w", idx, err)
				return
			}
			resultSets[idx] = docs
		}(i, q)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Concatenation in sub-query order keeps dedup output stable regardless
	// of goroutine completion order.
	var merged []vectorstore.Document
	for _, docs := range resultSets {
		merged = append(merged, docs...)
	}

	return Dedupe(merged), nil
}

// expandQuery asks the model for alternative phrasings. The original query is
// always first in the returned list.
func (m *MultiQuery) expandQuery(ctx context.Context, query string) ([]string, error) {
	response, err := m.chat.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf("%s Generate %d alternative versions.", multiQueryInstruction, m.variants)},
		{Role: llm.RoleUser, Content: query},
	}, m.opts)
	if err != nil {
		return nil, fmt.Errorf("expanding query: %w", err)
	}

	queries := []string{query}
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == query {
			continue
		}
		queries = append(queries, line)
	}

	m.logger.Debug("expanded query", "sub_queries", len(queries))
	return queries, nil
}

var _ Retriever = (*MultiQuery)(nil)
