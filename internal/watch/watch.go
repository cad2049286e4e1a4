// Package watch reruns a function whenever a directory tree changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	xlog "shireesh.com/firenext/internal/log"
)

// DefaultDebounce is the quiet period used when Watch gets a zero debounce.
const DefaultDebounce = 500 * time.Millisecond

// Watch watches dir and all of its subdirectories and calls fn once events
// have stopped arriving for debounce. Calls to fn never overlap; an error
// from fn is logged and watching continues. Watch blocks until ctx is done.
func Watch(ctx context.Context, dir string, debounce time.Duration, fn func(context.Context) error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := xlog.WithComponent("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info().Str("dir", dir).Msg("watching for changes")

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn().Err(err).Str("dir", event.Name).Msg("cannot watch new directory")
					}
				}
			}
			logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("changed")
			timer.Reset(debounce)

		case <-timer.C:
			if err := fn(ctx); err != nil {
				logger.Error().Err(err).Msg("rerun failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		switch d.Name() {
		case "node_modules", ".git":
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
