package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source yields candidate paths for conversion. Implementations deliver a
// path whenever a file under the watched root is created or modified; the
// same path may be delivered repeatedly (debouncing absorbs redundancy).
// Directories and ineligible filenames are filtered out before delivery.
type Source interface {
	// Start begins emitting paths. It returns once the source is running;
	// emission stops when ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Paths returns the channel of candidate paths. Closed after Stop.
	Paths() <-chan string

	// Errors returns the channel of non-fatal source errors. Closed after Stop.
	Errors() <-chan error

	// Stop shuts the source down and waits for its goroutines to exit.
	Stop() error
}

// NewSource selects an event source for the root directory by capability:
// native fsnotify notifications when a watcher can be created, otherwise a
// periodic polling scan. forcePoll skips the native attempt entirely.
func NewSource(root string, recursive bool, forcePoll bool, pollInterval time.Duration, logger *log.Logger) Source {
	if !forcePoll {
		if w, err := fsnotify.NewWatcher(); err == nil {
			return newNotifySource(w, root, recursive, logger)
		} else if logger != nil {
			logger.Printf("native watcher unavailable (%v); falling back to polling", err)
		}
	}
	return newPollSource(root, recursive, pollInterval, logger)
}

// ListExisting returns the eligible CSV files already present under root,
// for the process-existing pass at startup.
func ListExisting(root string, recursive bool) ([]string, error) {
	var paths []string
	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && Eligible(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return paths, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			if p := filepath.Join(root, e.Name()); Eligible(p) {
				paths = append(paths, p)
			}
		}
	}
	return paths, nil
}
