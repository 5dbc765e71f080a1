// Package service implements the application services: the assistant query
// pipeline and user management.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/reformulator"
	"github.com/jlacunza/udcito/internal/reranker"
	"github.com/jlacunza/udcito/internal/retriever"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

const systemPromptTemplate = "You are the virtual assistant of %s. " +
	"Answer using only the information from the following context, also taking the " +
	"conversation history into account. " +
	"Use a formal and professional tone. " +
	"Do not invent information and answer only with verified data. " +
	"If the information is not sufficient, say so. " +
	"Context: %s"

// Assistant orchestrates the retrieval-augmented query pipeline:
// reformulation, retrieval, re-ranking, and grounded answer generation.
//
// Both public operations never return an error: each internal stage absorbs
// provider failures into its documented fallback value.
type Assistant struct {
	retriever    retriever.Retriever
	chat         llm.LLM
	opts         llm.CompleteOptions
	reformulator *reformulator.Reformulator // nil disables reformulation
	reranker     reranker.Reranker          // nil disables re-ranking
	university   string
	logger       *slog.Logger
}

// AssistantOption is a functional option for configuring Assistant.
type AssistantOption func(*Assistant)

// WithReformulator enables question reformulation before retrieval.
func WithReformulator(r *reformulator.Reformulator) AssistantOption {
	return func(a *Assistant) {
		a.reformulator = r
	}
}

// WithReranker enables re-ranking of retrieved documents.
func WithReranker(r reranker.Reranker) AssistantOption {
	return func(a *Assistant) {
		a.reranker = r
	}
}

// WithUniversityName sets the institution name used in the grounding prompt.
func WithUniversityName(name string) AssistantOption {
	return func(a *Assistant) {
		a.university = name
	}
}

// WithLogger sets the logger for the assistant.
func WithLogger(logger *slog.Logger) AssistantOption {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// NewAssistant creates the pipeline orchestrator.
func NewAssistant(ret retriever.Retriever, chat llm.LLM, opts llm.CompleteOptions, options ...AssistantOption) *Assistant {
	a := &Assistant{
		retriever:  ret,
		chat:       chat,
		opts:       opts,
		university: "Universidad del Chubut",
		logger:     slog.Default(),
	}

	for _, opt := range options {
		opt(a)
	}

	return a
}

// RetrieveDocuments returns the grounding documents for a question, applying
// reformulation and re-ranking when enabled. It never fails: any internal
// error yields an empty set, and callers must treat that as "no grounding
// available" rather than as an error.
func (a *Assistant) RetrieveDocuments(ctx context.Context, question string, history []llm.Message) []vectorstore.Document {
	query := question
	if a.reformulator != nil {
		query = a.reformulator.Reformulate(ctx, history, question)
	}

	docs, err := a.retriever.Retrieve(ctx, query, history)
	if err != nil {
		a.logger.Error("retrieval failed", "error", err)
		return nil
	}

	for _, doc := range docs {
		a.logger.Debug("retrieved document", "metadata", doc.Metadata)
	}

	if a.reranker != nil && len(docs) > 0 {
		docs = a.reranker.Rerank(ctx, query, docs)
	}

	return docs
}

// Answer generates a grounded reply to the question from the supplied
// documents and conversation history. On provider failure it returns an
// apology message embedding the error detail instead of failing; the caller
// always receives a usable reply body.
func (a *Assistant) Answer(ctx context.Context, docs []vectorstore.Document, question string, history []llm.Message) string {
	contents := make([]string, len(docs))
	for i, doc := range docs {
		contents[i] = doc.Content
	}
	contextBlock := strings.Join(contents, "\n")

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf(systemPromptTemplate, a.university, contextBlock),
	})

	for _, m := range history {
		// Only user and assistant turns are replayed to the model.
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		messages = append(messages, m)
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	a.logger.Debug("sending query to LLM", "messages", len(messages), "documents", len(docs))
	reply, err := a.chat.Complete(ctx, messages, a.opts)
	if err != nil {
		a.logger.Error("answer generation failed", "error", err)
		return fmt.Sprintf("I'm sorry, an error occurred: %v", err)
	}

	return reply
}
