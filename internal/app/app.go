// Package app wires configuration into the ingestion and answering components
// shared by the API server and the ingest command.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"docqa/internal/config"
	"docqa/internal/fallback"
	"docqa/internal/indexer"
	"docqa/internal/llm"
	"docqa/internal/rag"
	"docqa/internal/storage"
	"docqa/internal/textnorm"
	"docqa/internal/vectorstore"
)

// collectionStore is a vector store that can create its collection up front.
type collectionStore interface {
	vectorstore.VectorStore
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error
}

// App holds the long-lived components built from a Config.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Runs     *storage.RunRepo
	Index    *vectorstore.Index
	Pipeline *indexer.Pipeline

	closers []func() error
}

// New opens the database, connects the configured vector backend, validates the
// embedding endpoint and builds the ingestion pipeline.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a := &App{Config: cfg, DB: db, closers: []func() error{db.Close}}

	if err := storage.Migrate(db); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.InfoContext(ctx, "Database initialized", "path", cfg.DBPath)

	store, err := a.openStore()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := store.EnsureCollection(ctx, cfg.Collection, cfg.VectorSize); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	slog.InfoContext(ctx, "Vector collection ready", "backend", cfg.VectorBackend, "collection", cfg.Collection, "vector_size", cfg.VectorSize)

	// fail fast on a misconfigured embedding endpoint
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	if _, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to validate embedding client: %w", err)
	}
	slog.InfoContext(ctx, "Embedding client validated", "model", cfg.EmbeddingModelName)

	if cfg.PDFLicenseKey != "" {
		if err := indexer.SetPDFLicense(cfg.PDFLicenseKey); err != nil {
			slog.WarnContext(ctx, "PDF files will be skipped", "error", err)
		}
	}

	a.Runs = storage.NewRunRepo(db)
	a.Index = vectorstore.NewIndex(embedder, store, cfg.Collection)
	a.Pipeline = indexer.NewPipeline(a.Index, a.Runs, indexer.Options{
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		BatchSize:      cfg.BatchSize,
		Workers:        cfg.IngestWorkers,
		Normalize:      textnorm.Options{FootnoteDigits: cfg.StripFootnotes},
		EmbeddingModel: cfg.EmbeddingModelName,
	})
	return a, nil
}

func (a *App) openStore() (collectionStore, error) {
	cfg := a.Config
	switch cfg.VectorBackend {
	case config.BackendQdrant:
		s, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.BackendChroma:
		s, err := vectorstore.NewChromaStore(cfg.ChromaURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.BackendSQLite:
		return storage.NewPointStore(a.DB), nil
	}
	return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
}

// Engine builds the answering engine over the app's index.
func (a *App) Engine(ctx context.Context, msgs config.Messages) (*rag.Engine, error) {
	cfg := a.Config

	var generator rag.Generator
	switch cfg.GeneratorBackend {
	case config.GeneratorGemini:
		g, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		generator = g
	default:
		c := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
		c.Temperature = cfg.Temperature
		c.MaxTokens = cfg.MaxTokens
		generator = c
	}

	var scorer rag.Scorer = rag.LexicalScorer{}
	if cfg.RerankBackend == config.RerankHTTP {
		scorer = llm.NewRerankClient(cfg.RerankBaseURL, cfg.RerankAPIKey, cfg.RerankModel)
	}
	slog.InfoContext(ctx, "RAG engine configured", "generator", cfg.GeneratorBackend, "reranker", cfg.RerankBackend)

	retriever := rag.NewRetriever(a.Index, rag.RetrieveOptions{
		K:         cfg.RetrieveK,
		FetchK:    cfg.RetrieveFetchK,
		Diversity: cfg.Diversity,
	})
	gate := rag.NewGate(scorer, cfg.RerankTopN, cfg.RerankThreshold, rag.OutagePolicy(cfg.RerankOutage))
	selector := fallback.NewSelector(msgs.FallbackMessages, msgs.RefineHints, msgs.ContactSentence())

	return rag.NewEngine(retriever, gate, generator, selector, rag.Replies{
		ContactLine:     msgs.ContactLine,
		ContactSentence: msgs.ContactSentence(),
		Greeting:        msgs.GreetingReply,
		Thanks:          msgs.ThanksReply,
		Goodbye:         msgs.GoodbyeReply,
	}), nil
}

// Close releases the vector store client and the database.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
