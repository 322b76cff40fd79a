package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// notifySource delivers candidate paths from native filesystem
// notifications via fsnotify. In recursive mode every subdirectory of the
// root is watched, and directories created while watching are added to the
// watch set on the fly.
type notifySource struct {
	watcher   *fsnotify.Watcher
	root      string
	recursive bool
	logger    *log.Logger

	paths   chan string
	errs    chan error
	done    chan struct{}
	wg      sync.WaitGroup
	stopMu  sync.Mutex
	stopped bool
}

func newNotifySource(w *fsnotify.Watcher, root string, recursive bool, logger *log.Logger) *notifySource {
	return &notifySource{
		watcher:   w,
		root:      root,
		recursive: recursive,
		logger:    logger,
		paths:     make(chan string, 100),
		errs:      make(chan error, 10),
		done:      make(chan struct{}),
	}
}

// Start adds the watch tree and launches the event loop.
func (s *notifySource) Start(ctx context.Context) error {
	if err := s.addTree(s.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.root, err)
	}

	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

// addTree registers root with the watcher, plus every subdirectory when
// running recursively.
func (s *notifySource) addTree(root string) error {
	if !s.recursive {
		return s.watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return s.watcher.Add(path)
		}
		return nil
	})
}

func (s *notifySource) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			// New directories join the watch set in recursive mode.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if s.recursive {
						if err := s.addTree(event.Name); err != nil && s.logger != nil {
							s.logger.Printf("failed to watch new directory %s: %v", event.Name, err)
						}
					}
					continue
				}
			}

			if !Eligible(event.Name) {
				continue
			}

			select {
			case s.paths <- event.Name:
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			select {
			case s.errs <- err:
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *notifySource) Paths() <-chan string { return s.paths }

func (s *notifySource) Errors() <-chan error { return s.errs }

// Stop closes the underlying watcher, waits for the event loop to exit and
// closes the output channels. Safe to call more than once.
func (s *notifySource) Stop() error {
	s.stopMu.Lock()
	if s.stopped {
		s.stopMu.Unlock()
		return nil
	}
	s.stopped = true
	s.stopMu.Unlock()

	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	close(s.paths)
	close(s.errs)
	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}
