package images

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs the localizer continuously: an initial full pass over dir,
// then an fsnotify watcher that schedules another pass whenever Markdown
// files are created or rewritten. Passes are debounced so a burst of
// writes (a sync run finishing, an editor save) triggers one pass.
//
// New directories created at runtime are added to the watch list.
func (l *Localizer) Watch(ctx context.Context, dir string) error {
	if err := l.Run(dir); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, dir); err != nil {
		return err
	}

	l.logger.Info("images: watching", slog.String("dir", dir))

	// passTimer debounces full localization passes.
	var passTimer *time.Timer
	var passCh <-chan time.Time

	schedulePass := func() {
		if passTimer == nil {
			passTimer = time.NewTimer(500 * time.Millisecond)
			passCh = passTimer.C
		} else {
			passTimer.Reset(500 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if passTimer != nil {
				passTimer.Stop()
			}
			l.logger.Info("images: watcher stopped")
			return nil

		case <-passCh:
			if err := l.Run(dir); err != nil {
				l.logger.Warn("images: pass failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						l.logger.Warn("images: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedulePass()
					continue
				}
			}
			if filepath.Ext(ev.Name) != ".md" {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedulePass()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("images: watcher error", slog.String("error", err.Error()))
		}
	}
}

// addDirsRecursive registers root and every subdirectory with the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
