package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// pollSource delivers candidate paths by scanning the watched tree on a
// fixed interval and comparing modification times against the previous
// scan. It is the fallback when native notifications are unavailable.
type pollSource struct {
	root      string
	recursive bool
	interval  time.Duration
	logger    *log.Logger

	seen map[string]time.Time

	paths   chan string
	errs    chan error
	done    chan struct{}
	wg      sync.WaitGroup
	stopMu  sync.Mutex
	stopped bool
}

func newPollSource(root string, recursive bool, interval time.Duration, logger *log.Logger) *pollSource {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &pollSource{
		root:      root,
		recursive: recursive,
		interval:  interval,
		logger:    logger,
		seen:      make(map[string]time.Time),
		paths:     make(chan string, 100),
		errs:      make(chan error, 10),
		done:      make(chan struct{}),
	}
}

// Start launches the scan loop.
func (s *pollSource) Start(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Printf("polling %s every %s", s.root, s.interval)
	}
	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

func (s *pollSource) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if !s.scan(ctx) {
				return
			}
		}
	}
}

// scan walks the tree once and emits paths whose mtime advanced since the
// last scan. Returns false when shutdown was observed mid-emit.
func (s *pollSource) scan(ctx context.Context) bool {
	alive := true
	s.walk(func(path string, info fs.FileInfo) {
		if !alive {
			return
		}
		mtime := info.ModTime()
		last, ok := s.seen[path]
		if ok && !mtime.After(last) {
			return
		}
		s.seen[path] = mtime
		select {
		case s.paths <- path:
		case <-s.done:
			alive = false
		case <-ctx.Done():
			alive = false
		}
	})
	return alive
}

// walk visits every eligible file under the root, skipping entries that
// vanish between listing and stat.
func (s *pollSource) walk(visit func(path string, info fs.FileInfo)) {
	if s.recursive {
		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() || !Eligible(path) {
				return nil
			}
			if info, err := d.Info(); err == nil {
				visit(path, info)
			}
			return nil
		})
		if err != nil && s.logger != nil {
			s.logger.Printf("scan failed: %v", err)
		}
		return
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("scan failed: %v", err)
		}
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.root, e.Name())
		if !Eligible(path) {
			continue
		}
		if info, err := e.Info(); err == nil {
			visit(path, info)
		}
	}
}

func (s *pollSource) Paths() <-chan string { return s.paths }

func (s *pollSource) Errors() <-chan error { return s.errs }

// Stop halts the scan loop and closes the output channels. Safe to call
// more than once.
func (s *pollSource) Stop() error {
	s.stopMu.Lock()
	if s.stopped {
		s.stopMu.Unlock()
		return nil
	}
	s.stopped = true
	s.stopMu.Unlock()

	close(s.done)
	s.wg.Wait()
	close(s.paths)
	close(s.errs)
	return nil
}
