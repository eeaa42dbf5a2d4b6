package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a file must stay untouched before it is
// analyzed. Copies and DAW exports write in many small bursts.
const DefaultSettleDelay = 750 * time.Millisecond

// WatchEvent reports one file handled by the watcher
type WatchEvent struct {
	Path     string
	Analysis *sample.Analysis
	Removed  bool
	Err      error
}

// Watcher analyzes audio files as they appear or change below a folder
type Watcher struct {
	analyzer   FileAnalyzer
	cache      *Cache
	extensions []string
	settle     time.Duration
	logger     logging.Logger
}

// NewWatcher creates a folder watcher. cache may be nil.
func NewWatcher(analyzer FileAnalyzer, cache *Cache, extensions []string, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Watcher{
		analyzer:   analyzer,
		cache:      cache,
		extensions: extensions,
		settle:     settle,
		logger: logging.WithFields(logging.Fields{
			"component": "library_watcher",
		}),
	}
}

// Watch starts following root. Watches are registered before it returns,
// so files written afterwards are seen. The returned channel is closed once
// ctx is done.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan WatchEvent, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := w.addTree(fsw, root); err != nil {
		fsw.Close()
		return nil, err
	}

	events := make(chan WatchEvent, 16)
	go w.loop(ctx, fsw, root, events)
	return events, nil
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, root string, events chan<- WatchEvent) {
	defer close(events)
	defer fsw.Close()

	logger := w.logger.WithFields(logging.Fields{
		"function": "Watch",
		"root":     root,
	})
	logger.Info("Watching folder for new samples", logging.Fields{
		"settle_ms": w.settle.Milliseconds(),
	})

	pending := map[string]time.Time{}
	ticker := time.NewTicker(max(w.settle/2, time.Millisecond))
	defer ticker.Stop()

	emit := func(ev WatchEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			switch {
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				info, err := os.Stat(event.Name)
				if err != nil {
					continue
				}
				if info.IsDir() {
					// new folders are watched and their existing files queued
					if err := w.addTree(fsw, event.Name); err != nil {
						logger.Warn("Failed to watch new folder", logging.Fields{
							"path":  event.Name,
							"error": err.Error(),
						})
					}
					files, _ := CollectAudioFiles(event.Name, w.extensions, false)
					for _, f := range files {
						pending[f] = time.Now()
					}
					continue
				}
				if IsAudioFile(event.Name, w.extensions) && !strings.HasPrefix(filepath.Base(event.Name), ".") {
					pending[event.Name] = time.Now()
				}

			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				delete(pending, event.Name)
				if !IsAudioFile(event.Name, w.extensions) {
					continue
				}
				if w.cache != nil {
					if err := w.cache.Invalidate(event.Name); err != nil {
						logger.Warn("Failed to invalidate cache entry", logging.Fields{
							"path":  event.Name,
							"error": err.Error(),
						})
					}
				}
				if !emit(WatchEvent{Path: event.Name, Removed: true}) {
					return
				}
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error", logging.Fields{
				"error": err.Error(),
			})

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				if !emit(w.process(ctx, root, path)) {
					return
				}
			}
		}
	}
}

func (w *Watcher) process(ctx context.Context, root, path string) WatchEvent {
	analysis, err := w.analyzer.AnalyzeFile(ctx, root, path)
	if err != nil {
		w.logger.Warn("Failed to analyze new file", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return WatchEvent{Path: path, Err: err}
	}

	if w.cache != nil {
		if err := w.cache.Put(analysis, w.analyzer.Options().Fingerprint()); err != nil {
			w.logger.Warn("Failed to cache analysis", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	w.logger.Debug("Analyzed new file", logging.Fields{
		"path":        path,
		"sample_type": analysis.Type,
	})
	return WatchEvent{Path: path, Analysis: analysis}
}
