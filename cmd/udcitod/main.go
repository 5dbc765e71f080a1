package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jlacunza/udcito/internal/auth"
	"github.com/jlacunza/udcito/internal/config"
	"github.com/jlacunza/udcito/internal/embedder"
	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/memory"
	"github.com/jlacunza/udcito/internal/reformulator"
	"github.com/jlacunza/udcito/internal/repository"
	"github.com/jlacunza/udcito/internal/repository/postgres"
	"github.com/jlacunza/udcito/internal/reranker"
	"github.com/jlacunza/udcito/internal/retriever"
	"github.com/jlacunza/udcito/internal/server"
	"github.com/jlacunza/udcito/internal/service"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

func main() {
	// Set up structured logging
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("starting assistant service",
		"http_port", cfg.HTTPPort,
		"environment", cfg.Environment,
		"retrieval_strategy", cfg.RetrievalStrategy,
	)

	// Initialize PostgreSQL
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	slog.Info("connected to PostgreSQL")

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	activityRepo := postgres.NewActivityRepo(db)

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(ctx, cfg.QdrantGRPCURL, cfg.QdrantCollection)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer vectorStore.Close()
	slog.Info("connected to Qdrant", "collection", cfg.QdrantCollection)

	// Initialize OpenAI embedder
	embed := embedder.NewOpenAIEmbedder(embedder.OpenAIConfig{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.EmbeddingModel,
	})
	slog.Info("initialized embedder", "model", cfg.EmbeddingModel)

	// Initialize OpenAI chat client
	chatClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey,
		llm.WithBaseURL(cfg.OpenAIBaseURL),
		llm.WithModel(cfg.ChatModel),
	)
	slog.Info("initialized chat model", "model", cfg.ChatModel)

	completeOpts := llm.CompleteOptions{
		Model:       cfg.ChatModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	// Build the retrieval strategy
	direct := retriever.NewDirect(embed, vectorStore, cfg.RetrieverK)
	var ret retriever.Retriever
	switch cfg.RetrievalStrategy {
	case config.StrategyDirect:
		ret = direct
	case config.StrategyHybrid:
		ret = retriever.NewHybrid(embed, vectorStore, cfg.RetrieverK)
	default:
		ret = retriever.NewMultiQuery(chatClient, direct, completeOpts)
	}

	// Build the assistant
	assistantOpts := []service.AssistantOption{
		service.WithUniversityName(cfg.UniversityName),
	}
	if cfg.ReformulationEnabled {
		assistantOpts = append(assistantOpts,
			service.WithReformulator(reformulator.New(chatClient, completeOpts)))
	}
	if cfg.RerankerEnabled {
		assistantOpts = append(assistantOpts,
			service.WithReranker(reranker.NewLLMReranker(chatClient, completeOpts)))
	}
	assistant := service.NewAssistant(ret, chatClient, completeOpts, assistantOpts...)

	// Auth and user management
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.Expiry = cfg.JWTExpiry
	jwtManager := auth.NewJWTManager(jwtConfig)
	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)
	userSvc := service.NewUserService(userRepo, activityRepo, slog.Default())

	// HTTP layer
	metrics := server.NewMetrics()
	handlers := server.NewHandlers(server.HandlersConfig{
		Pipeline: assistant,
		Sessions: memory.DefaultStore(),
		Users:    userSvc,
		Verifier: verifier,
		JWT:      jwtManager,
		Metrics:  metrics,
		Logger:   slog.Default(),
		ReadyFunc: func(ctx context.Context) error {
			return db.Pool.Ping(ctx)
		},
	})

	httpServer, err := server.NewHTTPServer(server.HTTPServerConfig{
		Port:           cfg.HTTPPort,
		Logger:         slog.Default(),
		AllowedOrigins: []string{"*"}, // Configure in production
		Metrics:        metrics,
		Handlers:       handlers,
		JWTManager:     jwtManager,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	// Start server
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown HTTP server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// Ensure interfaces are satisfied at compile time
var (
	_ repository.UserRepository     = (*postgres.UserRepo)(nil)
	_ repository.ActivityRepository = (*postgres.ActivityRepo)(nil)
	_ vectorstore.VectorStore       = (*vectorstore.QdrantStore)(nil)
	_ embedder.Embedder             = (*embedder.OpenAIEmbedder)(nil)
	_ llm.LLM                       = (*llm.OpenAIClient)(nil)
	_ server.Pipeline               = (*service.Assistant)(nil)
)
