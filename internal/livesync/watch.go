package livesync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/logger"
)

// WatchFormFile calls onChange with the parsed form every time the file is
// written, until ctx is done. The directory is watched rather than the file
// so editors that save by rename keep working. Unparseable saves are logged
// and skipped.
func WatchFormFile(ctx context.Context, path string, onChange func(content.Form)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			form, err := readFormFile(abs)
			if err != nil {
				logger.Warnf("[livesync] skip %s: %v", abs, err)
				continue
			}
			onChange(form)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("[livesync] watcher: %v", err)
		}
	}
}

func readFormFile(path string) (content.Form, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFormFile(f)
}
