// Package watch re-renders usage whenever a provider log directory
// changes.
package watch

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Run watches the given roots recursively and calls render after each
// burst of filesystem activity. Bursts are debounced: after the first
// event, further events within interval fold into the same render. render
// runs once up front. Blocks until the watcher fails or is closed.
func Run(roots []string, interval time.Duration, render func() error) error {
	if len(roots) == 0 {
		return errors.New("watch: no provider directories found to watch")
	}

	if err := render(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range roots {
		addRecursive(watcher, root)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			handleCreate(watcher, event)

			// Debounce window: fold follow-up events into this render.
			deadline := time.NewTimer(interval)
		drain:
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						deadline.Stop()
						return nil
					}
					handleCreate(watcher, event)
				case <-deadline.C:
					break drain
				}
			}

			if err := render(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("tku: watch error: %v", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Create|fsnotify.Write) != 0
}

// handleCreate keeps the recursive illusion alive: fsnotify only watches
// single directories, so new directories must be added as they appear.
func handleCreate(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&fsnotify.Create == 0 {
		return
	}
	info, err := os.Stat(event.Name)
	if err == nil && info.IsDir() {
		addRecursive(watcher, event.Name)
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			log.Printf("tku: watching %s: %v", path, err)
		}
		return nil
	})
}
