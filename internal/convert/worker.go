package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/steveyegge/csvwatch/internal/watch"
)

// sentinel unblocks the worker loop during shutdown. The empty string can
// never be enqueued because it fails the eligibility filter.
const sentinel = ""

// defaultQueueCap bounds the work queue generously; producers never block
// on a full queue, they drop with a warning instead.
const defaultQueueCap = 1024

// WorkerConfig carries the per-process conversion settings.
type WorkerConfig struct {
	// OutDir is where output artifacts are published.
	OutDir string
	// Output selects array vs line-delimited mode and pretty indent.
	Output WriteOptions
	// Overwrite replaces existing outputs instead of probing new names.
	Overwrite bool
	// Delimiter and Quote override dialect sniffing when non-empty.
	Delimiter string
	Quote     string
	// Encoding names the input text encoding (default utf-8-sig).
	Encoding string
	// Stability is the settle detector; nil gets the default policy.
	Stability *StabilityChecker
	// JoinTimeout bounds how long Stop waits for the loop to exit.
	JoinTimeout time.Duration
	// Logger for worker activity; nil gets a stderr logger.
	Logger *log.Logger
}

// Worker converts queued CSV paths one at a time. A single consumer
// goroutine serializes every conversion, so output naming never races and
// one stuck file cannot corrupt bookkeeping for another.
type Worker struct {
	cfg    WorkerConfig
	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWorker creates a stopped Worker. Call Start to begin consuming.
func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.Stability == nil {
		cfg.Stability = NewStabilityChecker()
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[worker] ", log.LstdFlags)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		cfg:    cfg,
		queue:  make(chan string, defaultQueueCap),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start launches the consumer goroutine.
func (w *Worker) Start() {
	go w.run()
}

// Enqueue offers a path for conversion. Ineligible paths and paths that no
// longer exist are dropped silently; a full queue drops with a warning.
// Enqueue never blocks the caller.
func (w *Worker) Enqueue(path string) {
	if !watch.Eligible(path) {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	select {
	case w.queue <- path:
	default:
		w.cfg.Logger.Printf("queue full; dropping %s", path)
	}
}

// Stop shuts the worker down: cancels in-flight stability waits, pushes the
// terminator sentinel, and waits up to JoinTimeout for the loop to exit.
func (w *Worker) Stop() {
	w.once.Do(func() {
		w.cancel()
		select {
		case w.queue <- sentinel:
		default:
		}
		select {
		case <-w.done:
		case <-time.After(w.cfg.JoinTimeout):
			w.cfg.Logger.Printf("worker did not exit within %s", w.cfg.JoinTimeout)
		}
	})
}

func (w *Worker) run() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return
		case path := <-w.queue:
			if path == sentinel {
				return
			}
			w.process(path)
		}
	}
}

// process runs one path through the pipeline: filter → stabilize → detect
// dialect → transform → write. Every failure after the filter is logged and
// the job abandoned; the loop always continues.
func (w *Worker) process(path string) {
	// Re-check: the file may have been renamed or deleted while queued.
	if !watch.Eligible(path) {
		return
	}

	if err := w.cfg.Stability.WaitStable(w.ctx, path); err != nil {
		switch {
		case errors.Is(err, ErrNeverSettled):
			w.cfg.Logger.Printf("file never stabilized; skipping: %s", path)
		case errors.Is(err, context.Canceled):
		default:
			w.cfg.Logger.Printf("stability check failed for %s: %v", path, err)
		}
		return
	}

	target, err := w.convert(path)
	if err != nil {
		w.cfg.Logger.Printf("failed to convert %s: %v", path, err)
		return
	}
	w.cfg.Logger.Printf("wrote %s", target)
}

// convert performs dialect detection, transformation and the atomic write
// for one settled file, returning the published output path.
func (w *Worker) convert(path string) (string, error) {
	sample, err := ReadSample(path, w.cfg.Encoding)
	if err != nil {
		return "", fmt.Errorf("failed to sample: %w", err)
	}
	dialect := DetectDialect(sample, w.cfg.Delimiter, w.cfg.Quote)

	src, err := NewRecordReader(path, dialect, w.cfg.Encoding)
	if err != nil {
		return "", err
	}
	defer src.Close()

	target := ResolveTarget(w.cfg.OutDir, path, w.cfg.Output, w.cfg.Overwrite)
	if err := WriteRecords(target, src, w.cfg.Output); err != nil {
		return "", err
	}
	return target, nil
}

// ReadSample returns up to SampleSize bytes of decoded file content for
// dialect sniffing.
func ReadSample(path, encodingName string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, err := decodeReader(f, encodingName)
	if err != nil {
		return nil, err
	}
	sample := make([]byte, SampleSize)
	n, err := io.ReadFull(decoded, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return sample[:n], nil
}
