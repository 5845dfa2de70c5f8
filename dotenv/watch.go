package dotenv

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch loads the .env file at path, calls fn with the result, and calls fn
// again with a freshly loaded resolver every time the file is written,
// created, renamed or removed. It blocks until ctx is done and returns nil,
// or returns an error if the watcher itself fails.
//
// The directory is watched rather than the file so editors that replace the
// file on save are still seen. Resolvers passed to fn are never modified.
func Watch(ctx context.Context, path string, fn func(*DotEnv, error), opts ...Option) error {
	o := buildOptions(opts)
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	fn(loadFile(abs, o))

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Op.Has(relevant) {
				continue
			}
			o.logger.Debug("dotenv file changed", "path", abs, "op", ev.Op.String())
			fn(loadFile(abs, o))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", abs, err)
		}
	}
}
