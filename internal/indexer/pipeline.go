package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docqa/internal/contextutil"
	"docqa/internal/corpus"
	"docqa/internal/document"
	"docqa/internal/retry"
	"docqa/internal/storage"
	"docqa/internal/textnorm"
)

// MinDocumentRunes is the shortest normalized document worth indexing.
const MinDocumentRunes = 60

var (
	// ErrEmptySourceKey is returned when a document has no source key.
	ErrEmptySourceKey = errors.New("source key is required")
	// ErrTooShort is returned for documents under MinDocumentRunes after normalization.
	ErrTooShort = errors.New("document text too short")
)

// ExtractError marks a file that could not be read or parsed.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Options configures a Pipeline. A zero ChunkSize, BatchSize or Workers falls back to the package default.
type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	BatchSize      int
	Workers        int
	Normalize      textnorm.Options
	EmbeddingModel string
	// Retry overrides retry.DefaultPolicy when MaxAttempts is set.
	Retry retry.Policy
}

// IngestResult reports the outcome of ingesting one document.
type IngestResult struct {
	Chunks int
	ReconcileResult
	tokens []int
}

// Pipeline turns raw documents into chunks and reconciles them into the index.
type Pipeline struct {
	reconciler *Reconciler
	extractor  *Extractor
	runs       storage.RunStore
	opts       Options
	locks      keyedMutex
}

// NewPipeline creates a new ingestion pipeline. runs may be nil, in which case
// corpus run statistics are not persisted.
func NewPipeline(index Index, runs storage.RunStore, opts Options) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	policy := opts.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}

	return &Pipeline{
		reconciler: NewReconciler(index, opts.BatchSize, policy),
		extractor:  NewExtractor(),
		runs:       runs,
		opts:       opts,
	}
}

// Chunks computes the identified chunks of raw text for sourceKey without touching the index.
func (p *Pipeline) Chunks(sourceKey, raw string) []document.Chunk {
	text := textnorm.Apply(raw, p.opts.Normalize)

	var bounded []Piece
	for _, piece := range ChunkStructure(text, document.ForSource(sourceKey)) {
		bounded = append(bounded, Bound(piece.Text, piece.Meta, p.opts.ChunkSize, p.opts.ChunkOverlap)...)
	}
	return AssignIDs(sourceKey, bounded)
}

// Ingest normalizes, chunks and reconciles one document. Concurrent calls for the
// same source key are serialized; different keys proceed in parallel.
func (p *Pipeline) Ingest(ctx context.Context, sourceKey, raw string) (IngestResult, error) {
	if sourceKey == "" {
		return IngestResult{}, ErrEmptySourceKey
	}

	chunks := p.Chunks(sourceKey, raw)
	res := IngestResult{Chunks: len(chunks), tokens: make([]int, len(chunks))}
	for i, c := range chunks {
		res.tokens[i] = estimateTokens(c.Text)
	}

	unlock := p.locks.Lock(sourceKey)
	defer unlock()

	rec, err := p.reconciler.Reconcile(ctx, sourceKey, chunks)
	res.ReconcileResult = rec
	if err != nil {
		return res, fmt.Errorf("failed to reconcile %s: %w", sourceKey, err)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "ingested document",
		"source", sourceKey, "chunks", res.Chunks, "added", rec.Added, "removed", rec.Removed)
	return res, nil
}

// IngestFile extracts the file at path and ingests it under sourceKey.
// Unreadable files return an *ExtractError and short documents ErrTooShort;
// neither touches the index.
func (p *Pipeline) IngestFile(ctx context.Context, sourceKey, path string) (IngestResult, error) {
	text, err := p.extractor.ExtractFile(path)
	if err != nil {
		return IngestResult{}, &ExtractError{Path: path, Err: err}
	}
	if utf8.RuneCountInString(textnorm.Normalize(text)) < MinDocumentRunes {
		return IngestResult{}, fmt.Errorf("%s: %w", sourceKey, ErrTooShort)
	}
	return p.Ingest(ctx, sourceKey, text)
}

// Remove deletes every chunk of sourceKey from the index.
func (p *Pipeline) Remove(ctx context.Context, sourceKey string) (ReconcileResult, error) {
	if sourceKey == "" {
		return ReconcileResult{}, ErrEmptySourceKey
	}

	unlock := p.locks.Lock(sourceKey)
	defer unlock()

	res, err := p.reconciler.Reconcile(ctx, sourceKey, nil)
	if err != nil {
		return res, fmt.Errorf("failed to remove %s: %w", sourceKey, err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "removed document", "source", sourceKey, "removed", res.Removed)
	return res, nil
}

// IngestDir ingests every supported file under root in parallel. Files that cannot be
// extracted or are too short are skipped; files whose reconciliation fails are counted
// and the run continues. Only cancellation of ctx aborts the run.
func (p *Pipeline) IngestDir(ctx context.Context, root string) (*RunStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	stats := &RunStats{
		RunID:          uuid.New().String(),
		StartedAt:      time.Now().UTC(),
		SkippedReasons: make(map[string]int),
		ChunkerVersion: ChunkerVersion,
		IndexVersion:   IndexVersion(p.opts.EmbeddingModel, p.opts.ChunkSize, p.opts.ChunkOverlap),
	}

	files, err := corpus.NewScanner(root, SupportedExtensions).Scan(ctx)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "starting ingestion", "root", root, "total_files", len(files), "workers", p.opts.Workers)

	var (
		mu     sync.Mutex
		tokens []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.IngestFile(gctx, f.Key, f.AbsPath)

			mu.Lock()
			defer mu.Unlock()

			var extractErr *ExtractError
			switch {
			case errors.As(err, &extractErr):
				stats.FilesSkipped++
				stats.SkippedReasons[SkipExtractError]++
				logger.WarnContext(gctx, "skipping unreadable file", "source", f.Key, "error", err)
				return nil
			case errors.Is(err, ErrTooShort):
				stats.FilesSkipped++
				stats.SkippedReasons[SkipTooShort]++
				logger.DebugContext(gctx, "skipping short file", "source", f.Key)
				return nil
			}

			stats.FilesProcessed++
			stats.ChunksTotal += res.Chunks
			stats.ChunksAdded += res.Added
			stats.ChunksRemoved += res.Removed
			stats.FailedBatches += res.FailedBatches
			tokens = append(tokens, res.tokens...)
			if err != nil {
				stats.FilesFailed++
				logger.ErrorContext(gctx, "failed to ingest file", "source", f.Key, "error", err)
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
			}
			return nil
		})
	}

	runErr := g.Wait()

	stats.FinishedAt = time.Now().UTC()
	stats.ChunkTokenStats = computeTokenStats(tokens)

	logger.InfoContext(ctx, "ingestion completed",
		"run_id", stats.RunID,
		"processed", stats.FilesProcessed,
		"skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed,
		"added", stats.ChunksAdded,
		"removed", stats.ChunksRemoved,
	)

	if runErr != nil {
		return stats, fmt.Errorf("ingestion interrupted: %w", runErr)
	}

	if p.runs != nil {
		if err := p.recordRun(ctx, stats); err != nil {
			logger.WarnContext(ctx, "failed to record ingestion run", "run_id", stats.RunID, "error", err)
		}
	}
	return stats, nil
}

func (p *Pipeline) recordRun(ctx context.Context, stats *RunStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode run stats: %w", err)
	}
	return p.runs.Insert(ctx, &storage.RunRecord{
		ID:             stats.RunID,
		StartedAt:      stats.StartedAt,
		FinishedAt:     stats.FinishedAt,
		IndexVersion:   stats.IndexVersion,
		FilesProcessed: stats.FilesProcessed,
		FilesSkipped:   stats.FilesSkipped,
		FilesFailed:    stats.FilesFailed,
		ChunksAdded:    stats.ChunksAdded,
		ChunksRemoved:  stats.ChunksRemoved,
		Stats:          data,
	})
}

// keyedMutex serializes work per key. Entries are dropped once no holder or waiter remains.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
