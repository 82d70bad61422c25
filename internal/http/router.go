package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docqa/internal/handlers"
	"docqa/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Answerer handlers.Answerer
	Ingester handlers.DocumentIngester
	Indexer  handlers.CorpusIndexer
	Runs     storage.RunStore
	// CorpusDir is the root ingested by POST /api/v1/index.
	CorpusDir string
	// Health maps check names to dependencies probed by GET /api/health.
	Health map[string]handlers.HealthChecker
	// RequestTimeout cancels request contexts; zero disables it.
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.Route("/api", func(r chi.Router) {
		r.Handle("/health", handlers.NewHealthHandler(deps.Health))

		r.Route("/v1", func(r chi.Router) {
			r.Handle("/chat", handlers.NewChatHandler(deps.Answerer))
			r.Handle("/ingest", handlers.NewIngestHandler(deps.Ingester))
			r.Handle("/index", handlers.NewIndexHandler(deps.Indexer, deps.CorpusDir))
			r.Handle("/index/stats", handlers.NewStatsHandler(deps.Runs))
			r.Handle("/export", handlers.NewExportHandler())
		})
	})

	return r
}
