package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embeddingsServer(t *testing.T, handler func(input []string) any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(handler(req.Input))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEmbed_OK(t *testing.T) {
	server := embeddingsServer(t, func(input []string) any {
		return map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float64{0.1, 0.2, 0.3}},
			},
		}
	})

	e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: server.URL, APIKey: "sk-test"})

	vec, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(vec))
	}
	if vec[0] != 0.1 {
		t.Errorf("unexpected first component: %v", vec[0])
	}
}

func TestEmbedBatch_RestoresInputOrder(t *testing.T) {
	server := embeddingsServer(t, func(input []string) any {
		// Return data out of order; the client must sort by index.
		return map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float64{1.0}},
				{"index": 0, "embedding": []float64{0.0}},
			},
		}
	})

	e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: server.URL, APIKey: "sk-test"})

	vecs, err := e.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs[0][0] != 0.0 || vecs[1][0] != 1.0 {
		t.Errorf("embeddings not in input order: %v", vecs)
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: "http://unused", APIKey: "sk-test"})

	vecs, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 0 {
		t.Errorf("expected empty result, got %v", vecs)
	}
}

func TestEmbed_CountMismatch(t *testing.T) {
	server := embeddingsServer(t, func(input []string) any {
		return map[string]any{"data": []any{}}
	})

	e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: server.URL, APIKey: "sk-test"})

	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for embedding count mismatch")
	}
}

func TestModelDimension(t *testing.T) {
	if got := ModelDimension("text-embedding-3-small"); got != 1536 {
		t.Errorf("expected 1536, got %d", got)
	}
	if got := ModelDimension("text-embedding-3-large"); got != 3072 {
		t.Errorf("expected 3072, got %d", got)
	}
	// Unknown models fall back to the common dimension.
	if got := ModelDimension("mystery-model"); got != 1536 {
		t.Errorf("expected fallback 1536, got %d", got)
	}
}

func TestDimensionOverride(t *testing.T) {
	e := NewOpenAIEmbedder(OpenAIConfig{APIKey: "sk-test", Dimension: 256})
	if e.Dimension() != 256 {
		t.Errorf("expected configured dimension 256, got %d", e.Dimension())
	}
}
