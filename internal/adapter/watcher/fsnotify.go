// Package watcher reloads the catalog when its files change on disk.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	catalogfs "chatsearch/internal/adapter/fs"
	"chatsearch/internal/observability"
)

// DefaultDebounce collapses bursts of writes into one reload.
const DefaultDebounce = 300 * time.Millisecond

// CatalogWatcher watches a catalog directory tree with fsnotify.
type CatalogWatcher struct {
	watcher  *fsnotify.Watcher
	walker   *catalogfs.Walker
	root     string
	debounce time.Duration
	logger   *observability.Logger
}

// NewCatalogWatcher watches root and every non-excluded directory below it.
func NewCatalogWatcher(root string, walker *catalogfs.Walker, debounce time.Duration, logger *observability.Logger) (*CatalogWatcher, error) {
	if walker == nil {
		walker = catalogfs.NewWalker(nil, nil)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cw := &CatalogWatcher{watcher: w, walker: walker, root: root, debounce: debounce, logger: logger}
	if err := cw.addTree(root); err != nil {
		w.Close()
		return nil, err
	}
	return cw, nil
}

func (cw *CatalogWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != cw.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return cw.watcher.Add(path)
	})
}

// Run blocks until ctx is done, calling onChange after each settled burst
// of catalog file changes.
func (cw *CatalogWatcher) Run(ctx context.Context, onChange func()) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if isDir(event.Name) {
					if err := cw.addTree(event.Name); err != nil {
						cw.logger.Warn().Str("path", event.Name).Err(err).Msg("cannot watch new directory")
					}
					continue
				}
			}
			if !cw.relevant(event) {
				continue
			}
			cw.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("catalog file changed")
			if timer == nil {
				timer = time.NewTimer(cw.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(cw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			cw.logger.Warn().Err(err).Msg("catalog watcher error")
		}
	}
}

func (cw *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	rel, err := filepath.Rel(cw.root, event.Name)
	if err != nil {
		return false
	}
	return cw.walker.Matches(rel)
}

// Close stops the watcher.
func (cw *CatalogWatcher) Close() error {
	return cw.watcher.Close()
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
