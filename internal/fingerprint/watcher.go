package fingerprint

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/jasminestrone/tachylite/internal/vault"
)

// Watch invalidates cache whenever something inside the vault changes on
// disk, so edits made outside the API become visible to pollers before the
// TTL expires. New directories created at runtime are added to the watch
// list. Excluded directories are never watched.
//
// The watcher is best-effort: if it cannot start, the cache simply degrades
// to pure TTL behaviour.
func Watch(ctx context.Context, cache *Cache, v *vault.Vault, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, v, v.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", v.Root()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			// Atomic writes go through a temp file; its create/rename
			// churn is covered by the rename event on the real path.
			if strings.HasPrefix(name, ".tachylite-tmp-") {
				continue
			}
			if v.ExcludedDir(name) || v.ExcludedFile(name) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, v, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
			}

			cache.Invalidate()
			logger.Debug("watcher: invalidated", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its non-excluded subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, v *vault.Vault, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && v.ExcludedDir(d.Name()) {
			return fs.SkipDir
		}
		return w.Add(path)
	})
}
