package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultOpenAIBaseURL is the default OpenAI API base URL.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultOpenAIModel is the default embedding model.
	DefaultOpenAIModel = "text-embedding-3-small"

	// maxBatchSize is the maximum number of inputs sent in one embeddings request.
	maxBatchSize = 100
)

// OpenAIConfig holds configuration for the OpenAI embedder.
type OpenAIConfig struct {
	// BaseURL is the OpenAI API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// APIKey is the OpenAI API key.
	APIKey string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Dimension overrides the embedding dimension (default: per KnownModels).
	Dimension int

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// OpenAIEmbedder implements the Embedder interface using the OpenAI embeddings API.
type OpenAIEmbedder struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

// openaiRequest represents the request body for the embeddings API.
type openaiRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// openaiResponse represents the response from the embeddings API.
type openaiResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewOpenAIEmbedder creates a new OpenAI embedder with the given configuration.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = ModelDimension(model)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	return &OpenAIEmbedder{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     model,
		dimension: dimension,
		client:    client,
	}
}

// Embed generates an embedding vector for a single text input.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embedding vectors for multiple text inputs.
// Inputs are sent in batches to stay under the API request limits.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch embedding failed at offset %d: %w", start, err)
		}
		results = append(results, embeddings...)
	}

	return results, nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, input []string) ([][]float32, error) {
	reqBody := openaiRequest{
		Model: e.model,
		Input: input,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(body))
	}

	var openaiResp openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(openaiResp.Data) != len(input) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(input), len(openaiResp.Data))
	}

	// Response order is not guaranteed to match input order.
	sort.Slice(openaiResp.Data, func(i, j int) bool {
		return openaiResp.Data[i].Index < openaiResp.Data[j].Index
	})

	embeddings := make([][]float32, len(openaiResp.Data))
	for i, d := range openaiResp.Data {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding returned at index %d", i)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		embeddings[i] = vec
	}

	return embeddings, nil
}

// Dimension returns the dimensionality of the embedding vectors.
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model being used.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// Ensure OpenAIEmbedder implements Embedder interface.
var _ Embedder = (*OpenAIEmbedder)(nil)
