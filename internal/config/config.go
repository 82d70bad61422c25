package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vector store backends.
const (
	BackendQdrant = "qdrant"
	BackendChroma = "chroma"
	BackendSQLite = "sqlite"
)

// Generator backends.
const (
	GeneratorOpenAI = "openai"
	GeneratorGemini = "gemini"
)

// Rerank backends.
const (
	RerankHTTP    = "http"
	RerankLexical = "lexical"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL       string
	LLMModelName     string
	LLMAPIKey        string
	GeneratorBackend string
	GeminiAPIKey     string
	GeminiModel      string
	Temperature      float32
	MaxTokens        int

	EmbeddingBaseURL   string
	EmbeddingModelName string
	VectorSize         int

	RerankBackend string
	RerankBaseURL string
	RerankModel   string
	RerankAPIKey  string

	VectorBackend   string
	QdrantURL       string
	ChromaURL       string
	Collection      string
	DBPath          string
	CorpusDir       string
	PDFLicenseKey   string
	MessagesPath    string
	APIPort         string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	LogLevel        slog.Level
	LogFormat       string
	StripFootnotes  bool
	IngestWorkers   int
	ChunkSize       int
	ChunkOverlap    int
	BatchSize       int
	RetrieveK       int
	RetrieveFetchK  int
	Diversity       float64
	RerankTopN      int
	RerankThreshold float64
	RerankOutage    string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// A .env file in the current directory or any of its parents is loaded first;
// variables already present in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		GeneratorBackend:   strings.ToLower(getEnv("GENERATOR_BACKEND", GeneratorOpenAI)),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		RerankBackend:      strings.ToLower(getEnv("RERANK_BACKEND", RerankHTTP)),
		RerankBaseURL:      getEnv("RERANK_BASE_URL", "http://localhost:8082"),
		RerankModel:        getEnv("RERANK_MODEL", "bge-reranker-v2-m3"),
		RerankAPIKey:       getEnv("RERANK_API_KEY", ""),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", BackendQdrant)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		ChromaURL:          getEnv("CHROMA_URL", "http://localhost:8000"),
		Collection:         getEnv("COLLECTION", "docqa"),
		DBPath:             getEnv("DB_PATH", "./data/docqa.db"),
		PDFLicenseKey:      getEnv("UNIDOC_LICENSE_KEY", ""),
		CorpusDir:          getEnv("CORPUS_DIR", ""),
		MessagesPath:       getEnv("MESSAGES_PATH", ""),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		RerankOutage:       strings.ToLower(getEnv("RERANK_OUTAGE_POLICY", "pass_through")),
	}

	vectorSizeStr := getEnv("EMBEDDING_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}
	cfg.VectorSize = vectorSize

	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	ints := []struct {
		key string
		def int
		dst *int
		min int
	}{
		{"GENERATION_MAX_TOKENS", 500, &cfg.MaxTokens, 1},
		{"INGEST_WORKERS", 4, &cfg.IngestWorkers, 1},
		{"CHUNK_SIZE", 1200, &cfg.ChunkSize, 1},
		{"CHUNK_OVERLAP", 180, &cfg.ChunkOverlap, 0},
		{"BATCH_SIZE", 64, &cfg.BatchSize, 1},
		{"RETRIEVE_K", 40, &cfg.RetrieveK, 1},
		{"RETRIEVE_FETCH_K", 80, &cfg.RetrieveFetchK, 1},
		{"RERANK_TOP_N", 6, &cfg.RerankTopN, 1},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, v.def)
		if err != nil {
			return nil, err
		}
		if n < v.min {
			return nil, fmt.Errorf("%s must be at least %d", v.key, v.min)
		}
		*v.dst = n
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	if cfg.RetrieveFetchK < cfg.RetrieveK {
		return nil, fmt.Errorf("RETRIEVE_FETCH_K must be at least RETRIEVE_K")
	}

	if cfg.Diversity, err = getEnvFloat("RETRIEVE_DIVERSITY", 0.8); err != nil {
		return nil, err
	}
	if cfg.Diversity < 0 || cfg.Diversity > 1 {
		return nil, fmt.Errorf("RETRIEVE_DIVERSITY must be between 0 and 1")
	}
	if cfg.RerankThreshold, err = getEnvFloat("RERANK_THRESHOLD", 0.35); err != nil {
		return nil, err
	}
	temperature, err := getEnvFloat("GENERATION_TEMPERATURE", 0.1)
	if err != nil {
		return nil, err
	}
	cfg.Temperature = float32(temperature)

	if cfg.StripFootnotes, err = getEnvBool("STRIP_FOOTNOTE_DIGITS", false); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	timeout := getEnv("REQUEST_TIMEOUT", "60s")
	if cfg.RequestTimeout, err = time.ParseDuration(timeout); err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be a valid duration: %w", err)
	}

	switch cfg.VectorBackend {
	case BackendQdrant, BackendChroma, BackendSQLite:
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be one of qdrant, chroma, sqlite (got %q)", cfg.VectorBackend)
	}
	switch cfg.GeneratorBackend {
	case GeneratorOpenAI:
	case GeneratorGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when GENERATOR_BACKEND=gemini")
		}
	default:
		return nil, fmt.Errorf("GENERATOR_BACKEND must be openai or gemini (got %q)", cfg.GeneratorBackend)
	}
	switch cfg.RerankBackend {
	case RerankHTTP, RerankLexical:
	default:
		return nil, fmt.Errorf("RERANK_BACKEND must be http or lexical (got %q)", cfg.RerankBackend)
	}
	switch cfg.RerankOutage {
	case "pass_through", "fallback":
	default:
		return nil, fmt.Errorf("RERANK_OUTAGE_POLICY must be pass_through or fallback (got %q)", cfg.RerankOutage)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or text (got %q)", cfg.LogFormat)
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", s)
}
