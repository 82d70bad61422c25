package indexer

import (
	"context"
	"errors"
	"fmt"

	"docqa/internal/contextutil"
	"docqa/internal/document"
	"docqa/internal/retry"
	"docqa/internal/vectorstore"
)

// DefaultBatchSize is the number of chunks written per index call.
const DefaultBatchSize = 64

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks docqa/internal/indexer Index

// Index is the part of the vector index the reconciler needs.
type Index interface {
	IDs(ctx context.Context, field, value string) (map[string]struct{}, error)
	Delete(ctx context.Context, ids []string) error
	Upsert(ctx context.Context, entries []vectorstore.Entry) error
}

// ReconcileResult reports what a reconciliation changed.
type ReconcileResult struct {
	Added         int
	Removed       int
	FailedBatches int
}

// Reconciler brings the index contents for one source in line with a freshly computed chunk set.
type Reconciler struct {
	index     Index
	batchSize int
	policy    retry.Policy
}

// NewReconciler creates a reconciler writing batchSize chunks at a time under policy.
func NewReconciler(index Index, batchSize int, policy retry.Policy) *Reconciler {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Reconciler{index: index, batchSize: batchSize, policy: policy}
}

// Reconcile deletes stored chunks of sourceKey that are no longer produced and inserts the
// new ones. A failed batch is reported in the result and the returned error, and the
// remaining batches are still attempted. Nothing is rolled back.
func (r *Reconciler) Reconcile(ctx context.Context, sourceKey string, chunks []document.Chunk) (ReconcileResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	var res ReconcileResult

	existing, err := r.index.IDs(ctx, document.KeySource, sourceKey)
	if err != nil {
		logger.WarnContext(ctx, "failed to list existing chunks, assuming none", "source", sourceKey, "error", err)
		existing = map[string]struct{}{}
	}

	computed := make(map[string]struct{}, len(chunks))
	var toAdd []document.Chunk
	for _, c := range chunks {
		if _, dup := computed[c.ID]; dup {
			continue
		}
		computed[c.ID] = struct{}{}
		if _, ok := existing[c.ID]; !ok {
			toAdd = append(toAdd, c)
		}
	}

	var stale []string
	for id := range existing {
		if _, ok := computed[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := r.index.Delete(ctx, stale); err != nil {
			logger.WarnContext(ctx, "failed to delete stale chunks", "source", sourceKey, "count", len(stale), "error", err)
		} else {
			res.Removed = len(stale)
		}
	}

	var errs []error
	for start := 0; start < len(toAdd); start += r.batchSize {
		batch := toAdd[start:min(start+r.batchSize, len(toAdd))]
		entries := make([]vectorstore.Entry, len(batch))
		for i, c := range batch {
			entries[i] = vectorstore.Entry{ID: c.ID, Text: c.Text, Meta: c.Meta.Payload()}
		}

		err := retry.Do(ctx, r.policy, func(ctx context.Context) error {
			return r.index.Upsert(ctx, entries)
		})
		if err != nil {
			res.FailedBatches++
			logger.ErrorContext(ctx, "failed to write chunk batch", "source", sourceKey, "offset", start, "size", len(batch), "error", err)
			errs = append(errs, fmt.Errorf("batch at %d: %w", start, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		res.Added += len(batch)
	}

	logger.DebugContext(ctx, "reconciled source", "source", sourceKey, "added", res.Added, "removed", res.Removed, "failed_batches", res.FailedBatches)
	return res, errors.Join(errs...)
}
