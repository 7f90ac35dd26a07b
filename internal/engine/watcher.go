package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/berkana/internal/storage"
)

// Watch starts an fsnotify watcher on the site root and enriches documents
// as the generator writes them, until ctx is cancelled.
//
// New directories created at runtime are added to the watch list. Content
// the engine wrote itself is recognized by checksum and skipped, otherwise
// every enrichment write would trigger a second pass (harmless thanks to
// idempotence, but wasteful). Hard failures in a single document are
// logged and do not stop the watcher.
func (e *Engine) Watch(ctx context.Context, root string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: add to watcher and sweep for documents
			// the generator may already have placed inside.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					e.sweepDir(ctx, root, absPath, logger)
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil || !e.store.Eligible(rel) {
				continue
			}
			e.handleDocument(ctx, rel, logger)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handleDocument processes one changed document, skipping content the
// engine produced itself.
func (e *Engine) handleDocument(ctx context.Context, rel string, logger *slog.Logger) {
	data, err := e.store.Read(rel)
	if err != nil {
		logger.Warn("watcher: read failed",
			slog.String("path", rel),
			slog.String("error", err.Error()))
		return
	}
	if e.wroteChecksum(rel, storage.Checksum(data)) {
		logger.Debug("watcher: own write, skipping", slog.String("path", rel))
		return
	}
	if err := e.ProcessFile(ctx, rel); err != nil {
		logger.Error("watcher: document failed",
			slog.String("path", rel),
			slog.String("error", err.Error()))
	}
}

// sweepDir processes eligible documents found in a newly created directory.
func (e *Engine) sweepDir(ctx context.Context, root, dirPath string, logger *slog.Logger) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || !e.store.Eligible(rel) {
			return nil
		}
		e.handleDocument(ctx, rel, logger)
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
