package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch imports path once, then re-imports it whenever it is created or
// written, until ctx ends. The parent directory is watched so editors that
// replace the file atomically are still seen.
func (i *Importer) Watch(ctx context.Context, path string) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	if _, err := i.ImportFile(ctx, target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			i.log.Warn("initial context import failed", "path", target, "err", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if _, err := i.ImportFile(ctx, target); err != nil {
				i.log.Warn("context re-import failed", "path", target, "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			i.log.Warn("context watcher error", "path", target, "err", err)
		}
	}
}
