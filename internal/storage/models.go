package storage

import "time"

// RunRecord is one persisted ingestion run.
type RunRecord struct {
	ID             string    // UUID
	StartedAt      time.Time
	FinishedAt     time.Time
	IndexVersion   string
	FilesProcessed int
	FilesSkipped   int
	FilesFailed    int
	ChunksAdded    int
	ChunksRemoved  int
	Stats          []byte // full run stats as JSON
}
