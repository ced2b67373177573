// Package watch synthesizes audio for text files as they are written to a
// directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Synthesizer turns one text into a saved audio file at dest. dest carries no
// extension; the implementation appends one for the audio format it produces.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dest string) error
}

// Watcher watches a directory for written .txt files and synthesizes each one
// into an output directory.
type Watcher struct {
	dir      string
	outDir   string
	synth    Synthesizer
	debounce time.Duration

	mu        sync.Mutex
	timers    map[string]*time.Timer
	processed atomic.Uint32
	failed    atomic.Uint32
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before it is synthesized.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher over dir that writes audio into outDir.
func New(dir, outDir string, synth Synthesizer, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", dir)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("watch: failed to create output directory: %w", err)
	}

	w := &Watcher{
		dir:      dir,
		outDir:   outDir,
		synth:    synth,
		debounce: defaultDebounce,
		timers:   make(map[string]*time.Timer),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Run watches the directory until ctx is canceled. Writes to the same file
// are debounced so a file is synthesized once per burst of writes.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch: failed to watch %s: %w", w.dir, err)
	}

	slog.Info("Watching for text files", "dir", w.dir, "out_dir", w.outDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".txt") {
				continue
			}

			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			slog.Error("Watcher error", "error", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for one file.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		w.handle(ctx, path)
	})
}

// handle synthesizes one text file.
func (w *Watcher) handle(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read text file", "path", path, "error", err)
		w.failed.Add(1)
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		slog.Warn("Skipping empty text file", "path", path)
		return
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dest := filepath.Join(w.outDir, name)

	if err := w.synth.Synthesize(ctx, text, dest); err != nil {
		slog.Error("Failed to synthesize text file", "path", path, "error", err)
		w.failed.Add(1)
		return
	}

	count := w.processed.Add(1)
	slog.Info("Synthesized text file", "path", path, "dest", dest, "count", count)
}

// ProcessedCount returns the number of files synthesized successfully.
func (w *Watcher) ProcessedCount() uint32 {
	return w.processed.Load()
}

// FailedCount returns the number of files that could not be synthesized.
func (w *Watcher) FailedCount() uint32 {
	return w.failed.Load()
}
