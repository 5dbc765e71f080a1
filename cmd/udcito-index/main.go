// Command udcito-index loads institutional documents from a directory into
// the vector store used by the assistant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jlacunza/udcito/internal/config"
	"github.com/jlacunza/udcito/internal/embedder"
	"github.com/jlacunza/udcito/internal/ingestion"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("indexing failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dir          = flag.String("dir", "", "directory of .txt/.md files to index (defaults to DATA_PATH)")
		chunkMethod  = flag.String("chunk-method", "sentence", "chunking method: fixed or sentence")
		chunkSize    = flag.Int("chunk-size", 512, "target chunk size in words")
		chunkOverlap = flag.Int("chunk-overlap", 50, "overlap between chunks in words")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := *dir
	if path == "" {
		path = cfg.DataPath
	}
	if path == "" {
		return fmt.Errorf("no directory given: pass -dir or set DATA_PATH")
	}

	ctx := context.Background()

	store, err := vectorstore.NewQdrantStore(ctx, cfg.QdrantGRPCURL, cfg.QdrantCollection)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer store.Close()

	emb := embedder.NewOpenAIEmbedder(embedder.OpenAIConfig{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.EmbeddingModel,
	})

	exists, err := store.CollectionExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		if err := store.CreateCollection(ctx, emb.Dimension()); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		slog.Info("created collection",
			"collection", cfg.QdrantCollection,
			"dimension", emb.Dimension(),
		)
	}

	pipeline := ingestion.NewPipeline(ingestion.PipelineConfig{
		Chunker: ingestion.ChunkerConfig{
			Method:     *chunkMethod,
			TargetSize: *chunkSize,
			Overlap:    *chunkOverlap,
		},
		Logger: slog.Default(),
	}, emb, store)

	results, err := pipeline.IndexDirectory(ctx, path)
	if err != nil {
		return err
	}

	totalChunks := 0
	for _, result := range results {
		totalChunks += result.ChunkCount
	}
	slog.Info("indexing complete", "files", len(results), "chunks", totalChunks)

	return nil
}
