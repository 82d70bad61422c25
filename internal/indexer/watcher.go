package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"docqa/internal/contextutil"
	"docqa/internal/corpus"
)

// DefaultDebounce is how long a file must stay quiet before it is re-ingested.
const DefaultDebounce = 500 * time.Millisecond

// SourceIngester is what the watcher drives. *Pipeline implements it.
type SourceIngester interface {
	IngestFile(ctx context.Context, sourceKey, path string) (IngestResult, error)
	Remove(ctx context.Context, sourceKey string) (ReconcileResult, error)
}

// Watcher keeps the index in sync with a corpus directory while it runs.
type Watcher struct {
	ingester SourceIngester
	scanner  *corpus.Scanner
	debounce time.Duration
}

// NewWatcher creates a watcher over the scanner's root.
func NewWatcher(ingester SourceIngester, scanner *corpus.Scanner, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{ingester: ingester, scanner: scanner, debounce: debounce}
}

// Run watches until ctx is done. Written files are re-ingested once they have been
// quiet for the debounce period; removed or renamed files are removed from the index.
func (w *Watcher) Run(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		_ = fsw.Close()
	}()

	if err := w.addTree(fsw, w.scanner.Root(), nil); err != nil {
		return err
	}
	logger.InfoContext(ctx, "watching corpus", "root", w.scanner.Root(), "debounce", w.debounce)

	deb := newDebouncer(ctx, w.debounce)
	defer deb.stopAll()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && w.isWatchableDir(ev.Name) {
				// files may land in a new directory before it is watched
				if err := w.addTree(fsw, ev.Name, deb.schedule); err != nil {
					logger.WarnContext(ctx, "failed to watch new directory", "path", ev.Name, "error", err)
				}
				continue
			}
			if !w.scanner.Matches(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				deb.cancel(ev.Name)
				w.remove(ctx, ev.Name)
			case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
				deb.schedule(ev.Name)
			}

		case fired := <-deb.ready:
			if !deb.claim(fired) {
				continue
			}
			path := fired.path
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				w.remove(ctx, path)
				continue
			}
			w.ingest(ctx, path)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "file watcher error", "error", err)
		}
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	logger := contextutil.LoggerFromContext(ctx)
	key, err := w.scanner.Key(path)
	if err != nil {
		logger.WarnContext(ctx, "ignoring file outside corpus", "path", path, "error", err)
		return
	}

	_, err = w.ingester.IngestFile(ctx, key, path)
	switch {
	case errors.Is(err, ErrTooShort):
		logger.DebugContext(ctx, "skipping short file", "source", key)
	case err != nil:
		logger.ErrorContext(ctx, "failed to re-ingest file", "source", key, "error", err)
	}
}

func (w *Watcher) remove(ctx context.Context, path string) {
	logger := contextutil.LoggerFromContext(ctx)
	key, err := w.scanner.Key(path)
	if err != nil {
		logger.WarnContext(ctx, "ignoring file outside corpus", "path", path, "error", err)
		return
	}
	if _, err := w.ingester.Remove(ctx, key); err != nil {
		logger.ErrorContext(ctx, "failed to remove file from index", "source", key, "error", err)
	}
}

func (w *Watcher) isWatchableDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	return !strings.HasPrefix(filepath.Base(path), ".")
}

// addTree watches dir and every non-hidden directory below it. onFile, if set,
// receives each matching file found on the way.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string, onFile func(string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if !d.IsDir() {
			if onFile != nil && w.scanner.Matches(path) {
				onFile(path)
			}
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// debounced is one scheduled re-ingest of path.
type debounced struct {
	path  string
	timer *time.Timer
}

// debouncer tracks the latest pending timer per path. All methods except the
// timer callbacks run on the watcher goroutine.
type debouncer struct {
	ctx     context.Context
	delay   time.Duration
	ready   chan *debounced
	pending map[string]*debounced
}

func newDebouncer(ctx context.Context, delay time.Duration) *debouncer {
	return &debouncer{
		ctx:     ctx,
		delay:   delay,
		ready:   make(chan *debounced),
		pending: make(map[string]*debounced),
	}
}

func (d *debouncer) schedule(path string) {
	if old, ok := d.pending[path]; ok {
		old.timer.Stop()
	}
	e := &debounced{path: path}
	e.timer = time.AfterFunc(d.delay, func() {
		select {
		case d.ready <- e:
		case <-d.ctx.Done():
		}
	})
	d.pending[path] = e
}

func (d *debouncer) cancel(path string) {
	if e, ok := d.pending[path]; ok {
		e.timer.Stop()
		delete(d.pending, path)
	}
}

// claim reports whether e is still the pending timer for its path and clears it.
// A timer replaced or cancelled after it already fired is stale and returns false.
func (d *debouncer) claim(e *debounced) bool {
	if d.pending[e.path] != e {
		return false
	}
	delete(d.pending, e.path)
	return true
}

func (d *debouncer) stopAll() {
	for _, e := range d.pending {
		e.timer.Stop()
	}
}
