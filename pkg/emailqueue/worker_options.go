package emailqueue

import (
	"log/slog"
	"time"
)

type workerOptions struct {
	pullInterval  time.Duration
	retryInterval time.Duration
	batchSize     int
	logger        *slog.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*workerOptions)

// WithPullInterval sets how often the worker polls for due entries.
func WithPullInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pullInterval = d
		}
	}
}

// WithRetryInterval sets how often the retry sweep runs.
func WithRetryInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.retryInterval = d
		}
	}
}

// WithBatchSize sets how many entries are claimed per tick.
func WithBatchSize(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithWorkerLogger sets the logger.
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
