package emailqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/notikit/notikit/pkg/logger"
)

// Worker runs the coordinator's send and retry loops in the background.
// Several workers on separate instances may run against the same storage;
// the atomic claim keeps them from processing the same entry twice.
type Worker struct {
	coordinator *Coordinator

	pullInterval  time.Duration
	retryInterval time.Duration
	batchSize     int
	logger        *slog.Logger

	mu       sync.Mutex
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
	busy     atomic.Bool
}

// NewWorker creates an email queue worker.
func NewWorker(coordinator *Coordinator, opts ...WorkerOption) (*Worker, error) {
	if coordinator == nil {
		return nil, fmt.Errorf("emailqueue: coordinator cannot be nil")
	}

	options := &workerOptions{
		pullInterval:  5 * time.Second,
		retryInterval: time.Minute,
		batchSize:     10,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		coordinator:   coordinator,
		pullInterval:  options.pullInterval,
		retryInterval: options.retryInterval,
		batchSize:     options.batchSize,
		logger:        options.logger,
	}, nil
}

// Start begins the background loops. Returns an error if already started.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return fmt.Errorf("emailqueue: worker already started")
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.stopping.Store(false)

	w.wg.Add(2)
	go w.sendLoop()
	go w.retryLoop()

	w.logger.Info("email worker started",
		logger.Instance(w.coordinator.InstanceID()),
		slog.Duration("pull_interval", w.pullInterval),
		slog.Int("batch_size", w.batchSize))
	return nil
}

// Stop cancels the loops and waits for any in-flight batch to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return fmt.Errorf("emailqueue: worker not started")
	}
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	w.stopping.Store(true)
	cancel()
	w.wg.Wait()

	w.logger.Info("email worker stopped",
		logger.Instance(w.coordinator.InstanceID()))
	return nil
}

// Run starts the worker and returns a function suitable for errgroup.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) sendLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			// Skip the tick if the previous batch is still in flight.
			if !w.busy.CompareAndSwap(false, true) {
				continue
			}
			if w.stopping.Load() {
				w.busy.Store(false)
				return
			}
			if _, err := w.coordinator.ProcessBatch(w.ctx, w.batchSize); err != nil && w.ctx.Err() == nil {
				w.logger.Error("batch processing failed",
					logger.Error(err),
					logger.Instance(w.coordinator.InstanceID()))
			}
			w.busy.Store(false)
		}
	}
}

func (w *Worker) retryLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.coordinator.RetrySweep(w.ctx); err != nil && w.ctx.Err() == nil {
				w.logger.Error("retry sweep failed",
					logger.Error(err),
					logger.Instance(w.coordinator.InstanceID()))
			}
		}
	}
}
