package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jlacunza/udcito/internal/embedder"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

// indexable file extensions
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// PipelineConfig holds configuration for the indexing pipeline
type PipelineConfig struct {
	Chunker ChunkerConfig

	// Additional metadata attached to every indexed chunk
	DefaultMetadata map[string]string

	Logger *slog.Logger
}

// FileResult holds the outcome of indexing one file
type FileResult struct {
	Source     string
	ChunkCount int
	WordCount  int
	Duration   time.Duration
}

// Pipeline reads documents, chunks them and writes vectors to the store
type Pipeline struct {
	config   PipelineConfig
	chunker  *Chunker
	embedder embedder.Embedder
	store    vectorstore.VectorStore
	logger   *slog.Logger
}

// NewPipeline creates an indexing pipeline
func NewPipeline(config PipelineConfig, emb embedder.Embedder, store vectorstore.VectorStore) *Pipeline {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		config:   config,
		chunker:  NewChunker(config.Chunker),
		embedder: emb,
		store:    store,
		logger:   logger,
	}
}

// IndexDirectory walks a directory and indexes every supported file.
// Unsupported files are skipped; a failing file aborts the run.
func (p *Pipeline) IndexDirectory(ctx context.Context, dir string) ([]FileResult, error) {
	var results []FileResult

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := p.IndexFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", path, err)
		}
		results = append(results, *result)
		return nil
	})
	if err != nil {
		return results, err
	}

	return results, nil
}

// IndexFile reads, chunks, embeds and upserts a single file. Existing
// vectors for the same source are removed first so reindexing replaces
// rather than duplicates.
func (p *Pipeline) IndexFile(ctx context.Context, path string) (*FileResult, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, fmt.Errorf("file is empty")
	}

	source := filepath.Base(path)
	chunks := p.chunker.Chunk(content)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(chunks))
	}

	if err := p.store.DeleteBySource(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to remove previous vectors: %w", err)
	}

	storeChunks := make([]vectorstore.Chunk, len(chunks))
	for i, chunk := range chunks {
		metadata := map[string]string{
			"source":      source,
			"chunk_index": fmt.Sprintf("%d", chunk.Index),
		}
		for k, v := range p.config.DefaultMetadata {
			if _, exists := metadata[k]; !exists {
				metadata[k] = v
			}
		}
		for k, v := range chunk.Metadata {
			if _, exists := metadata[k]; !exists {
				metadata[k] = v
			}
		}

		storeChunks[i] = vectorstore.Chunk{
			ID:       uuid.New().String(),
			Content:  chunk.Content,
			Vector:   vectors[i],
			Metadata: metadata,
		}
	}

	if err := p.store.Upsert(ctx, storeChunks); err != nil {
		return nil, fmt.Errorf("failed to upsert chunks: %w", err)
	}

	result := &FileResult{
		Source:     source,
		ChunkCount: len(chunks),
		WordCount:  len(strings.Fields(content)),
		Duration:   time.Since(start),
	}

	p.logger.Info("indexed file",
		"source", result.Source,
		"chunks", result.ChunkCount,
		"words", result.WordCount,
		"duration", result.Duration,
	)

	return result, nil
}
