package reranker

import (
	"context"
	"errors"
	"testing"

	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

// scriptedLLM returns one canned judgment per call, in order.
type scriptedLLM struct {
	judgments []string
	err       error
	calls     int
}

func (f *scriptedLLM) Complete(_ context.Context, _ []llm.Message, _ llm.CompleteOptions) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.judgments[f.calls-1], nil
}

func docs(contents ...string) []vectorstore.Document {
	out := make([]vectorstore.Document, len(contents))
	for i, c := range contents {
		out[i] = vectorstore.Document{Content: c}
	}
	return out
}

func TestRerank_SortsByJudgmentDescending(t *testing.T) {
	chat := &scriptedLLM{judgments: []string{"3", "9", "5"}}
	r := NewLLMReranker(chat, llm.CompleteOptions{})

	out := r.Rerank(context.Background(), "query", docs("a", "b", "c"))

	want := []string{"b", "c", "a"}
	for i := range want {
		if out[i].Content != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], out[i].Content)
		}
	}
}

func TestRerank_StableForEqualJudgments(t *testing.T) {
	chat := &scriptedLLM{judgments: []string{"5", "5", "5"}}
	r := NewLLMReranker(chat, llm.CompleteOptions{})

	out := r.Rerank(context.Background(), "query", docs("a", "b", "c"))

	want := []string{"a", "b", "c"}
	for i := range want {
		if out[i].Content != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], out[i].Content)
		}
	}
}

func TestRerank_FallsBackOnError(t *testing.T) {
	chat := &scriptedLLM{err: errors.New("provider down")}
	r := NewLLMReranker(chat, llm.CompleteOptions{})

	in := docs("a", "b", "c")
	out := r.Rerank(context.Background(), "query", in)

	for i := range in {
		if out[i].Content != in[i].Content {
			t.Errorf("expected original order on failure, got %v", out)
		}
	}
}

func TestRerank_SingleDocumentPassthrough(t *testing.T) {
	chat := &scriptedLLM{}
	r := NewLLMReranker(chat, llm.CompleteOptions{})

	out := r.Rerank(context.Background(), "query", docs("only"))

	if chat.calls != 0 {
		t.Errorf("expected no LLM calls for a single document, got %d", chat.calls)
	}
	if len(out) != 1 || out[0].Content != "only" {
		t.Errorf("unexpected output: %v", out)
	}
}

func TestRerank_OneCallPerDocument(t *testing.T) {
	chat := &scriptedLLM{judgments: []string{"1", "2", "3", "4"}}
	r := NewLLMReranker(chat, llm.CompleteOptions{})

	r.Rerank(context.Background(), "query", docs("a", "b", "c", "d"))

	if chat.calls != 4 {
		t.Errorf("expected 4 judgment calls, got %d", chat.calls)
	}
}
