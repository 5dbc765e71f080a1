// Package reformulator rewrites user questions for retrieval using recent
// conversation history.
//
// Reformulation is a best-effort improvement: it must never be the reason an
// end-to-end query fails. Any provider failure falls back to the original
// question, logged but not surfaced.
package reformulator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jlacunza/udcito/internal/llm"
)

// historyContextTurns is how many trailing history turns are shown to the model.
const historyContextTurns = 3

const rewriteInstruction = "Rewrite the user's question taking the conversation history into " +
	"account. Your answer will be used to retrieve information from a vector database and to " +
	"answer the user's question. Reply with the rewritten question only."

// Reformulator rewrites questions via a single chat completion.
type Reformulator struct {
	chat   llm.LLM
	opts   llm.CompleteOptions
	logger *slog.Logger
}

// Option is a functional option for configuring Reformulator.
type Option func(*Reformulator)

// WithLogger sets the logger for the stage.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reformulator) {
		r.logger = logger
	}
}

// New creates a reformulator backed by the given chat client.
func New(chat llm.LLM, opts llm.CompleteOptions, options ...Option) *Reformulator {
	r := &Reformulator{
		chat:   chat,
		opts:   opts,
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Reformulate returns the model's rewrite of question given the last three
// history turns. The rewrite is passed through verbatim, with no validation
// of its content. On any failure the original question is returned unchanged;
// no retry is attempted.
func (r *Reformulator) Reformulate(ctx context.Context, history []llm.Message, question string) string {
	turns := history
	if len(turns) > historyContextTurns {
		turns = turns[len(turns)-historyContextTurns:]
	}

	rewritten, err := r.chat.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: rewriteInstruction},
		{Role: llm.RoleUser, Content: fmt.Sprintf("History: %s", formatHistory(turns))},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Question: %s", question)},
	}, r.opts)
	if err != nil {
		r.logger.Warn("reformulation failed, using original question", "error", err)
		return question
	}

	r.logger.Debug("reformulated question", "rewritten", rewritten)
	return rewritten
}

func formatHistory(turns []llm.Message) string {
	if len(turns) == 0 {
		return ""
	}
	out := ""
	for _, m := range turns {
		out += fmt.Sprintf("[%s] %s ", m.Role, m.Content)
	}
	return out
}
