// Package daemon wires the event source, debouncer and conversion worker
// into the watch-and-convert loop and owns their shutdown ordering.
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/steveyegge/csvwatch/internal/config"
	"github.com/steveyegge/csvwatch/internal/convert"
	"github.com/steveyegge/csvwatch/internal/watch"
)

// Daemon runs the full pipeline: an event source yields candidate paths,
// the debouncer collapses bursts per path, and the single conversion worker
// turns each settled file into a JSON artifact.
type Daemon struct {
	cfg    *config.Config
	logger *log.Logger

	source    watch.Source
	debouncer *watch.Debouncer
	worker    *convert.Worker

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Daemon from a validated Config. The logger is shared with
// the worker and source; nil gets a stderr logger.
func New(cfg *config.Config, logger *log.Logger) (*Daemon, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}
	if err := convert.ValidateEncoding(cfg.Encoding); err != nil {
		return nil, err
	}

	worker := convert.NewWorker(convert.WorkerConfig{
		OutDir:    cfg.Out,
		Output:    convert.WriteOptions{Lines: cfg.JSONLines, Indent: cfg.Indent},
		Overwrite: cfg.Overwrite,
		Delimiter: cfg.Delimiter,
		Quote:     cfg.QuoteChar,
		Encoding:  cfg.Encoding,
		Logger:    logger,
	})

	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		source:    watch.NewSource(cfg.Watch, cfg.Recursive, cfg.ForcePoll, cfg.PollInterval, logger),
		debouncer: watch.NewDebouncer(cfg.Debounce, worker.Enqueue),
		worker:    worker,
	}, nil
}

// Start begins watching and converting. It returns once the source is
// running; conversion continues until ctx is cancelled, after which Start's
// caller should invoke Stop (Run does both).
func (d *Daemon) Start(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)

	d.worker.Start()

	if d.cfg.ProcessExisting {
		paths, err := watch.ListExisting(d.cfg.Watch, d.cfg.Recursive)
		if err != nil {
			return fmt.Errorf("failed to list existing files: %w", err)
		}
		d.logger.Printf("queueing %d existing file(s)", len(paths))
		for _, p := range paths {
			d.worker.Enqueue(p)
		}
	}

	if err := d.source.Start(ctx); err != nil {
		return err
	}
	d.logger.Printf("watching %s (recursive=%v)", d.cfg.Watch, d.cfg.Recursive)

	d.wg.Add(1)
	go d.loop(ctx)
	return nil
}

// Run starts the daemon, blocks until ctx is cancelled, then performs a
// graceful Stop.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// loop feeds source events into the debouncer until shutdown.
func (d *Daemon) loop(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-d.source.Paths():
			if !ok {
				return
			}
			d.debouncer.Trigger(path)
		case err, ok := <-d.source.Errors():
			if !ok {
				return
			}
			d.logger.Printf("source error: %v", err)
		}
	}
}

// Stop shuts the pipeline down in order: the source stops emitting, pending
// debounce timers are cancelled, and the worker drains with a bounded join.
func (d *Daemon) Stop() {
	d.logger.Println("shutting down")
	if d.cancel != nil {
		d.cancel()
	}
	if err := d.source.Stop(); err != nil {
		d.logger.Printf("failed to stop source: %v", err)
	}
	d.debouncer.CancelAll()
	d.wg.Wait()
	d.worker.Stop()
	d.logger.Println("stopped")
}
