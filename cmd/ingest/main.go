// Command ingest indexes a corpus directory once, or keeps it in sync with -watch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"docqa/internal/app"
	"docqa/internal/config"
	"docqa/internal/corpus"
	"docqa/internal/indexer"
)

func main() {
	dir := flag.String("dir", "", "corpus directory (defaults to CORPUS_DIR)")
	watch := flag.Bool("watch", false, "keep watching the directory after the initial run")
	debounce := flag.Duration("debounce", indexer.DefaultDebounce, "quiet period before a changed file is re-ingested")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	root := *dir
	if root == "" {
		root = cfg.CorpusDir
	}
	if root == "" {
		log.Fatal("No corpus directory: pass -dir or set CORPUS_DIR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()

	stats, err := a.Pipeline.IngestDir(ctx, root)
	if err != nil {
		slog.Error("Ingestion failed", "error", err)
		if !*watch {
			_ = a.Close()
			os.Exit(1)
		}
	}
	if stats != nil {
		fmt.Printf("run %s: processed=%d skipped=%d failed=%d added=%d removed=%d\n",
			stats.RunID, stats.FilesProcessed, stats.FilesSkipped, stats.FilesFailed, stats.ChunksAdded, stats.ChunksRemoved)
	}

	if !*watch {
		return
	}
	w := indexer.NewWatcher(a.Pipeline, corpus.NewScanner(root, indexer.SupportedExtensions), *debounce)
	if err := w.Run(ctx); err != nil {
		slog.Error("Watcher stopped", "error", err)
	}
}
