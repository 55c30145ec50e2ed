package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ImportQueue feeds dropped import documents through the Service on a small
// worker pool.
type ImportQueue struct {
	svc     *Service
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan string
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type QueueOption func(*ImportQueue)

func WithWorkers(n int) QueueOption {
	return func(q *ImportQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) QueueOption {
	return func(q *ImportQueue) {
		if n > 0 {
			q.ch = make(chan string, n)
		}
	}
}

func WithImportTimeout(d time.Duration) QueueOption {
	return func(q *ImportQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewImportQueue(svc *Service, logger *slog.Logger, opts ...QueueOption) *ImportQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ImportQueue{
		svc:     svc,
		logger:  logger,
		workers: 2,
		timeout: time.Minute,
		ch:      make(chan string, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ImportQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("import worker started", "worker_id", workerID)

				for path := range q.ch {
					q.process(workerID, path)
				}

				q.logger.Debug("import worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ImportQueue) process(workerID int, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		// A coalesced duplicate event for a document another worker already
		// renamed.
		q.logger.Debug("import document gone, skipping", "path", path)
		return
	}
	if err != nil {
		q.logger.Error("failed to open import document", "worker_id", workerID, "path", path, "error", err)
		return
	}

	count, importErr := q.svc.ImportJSON(ctx, f)
	if cerr := f.Close(); cerr != nil {
		q.logger.Warn("closing import document", "path", path, "error", cerr)
	}

	// Renaming takes the document out of the watched extension set so a
	// restart scan does not pick it up again.
	if importErr != nil {
		q.logger.Error("import document failed", "worker_id", workerID, "path", path, "error", importErr)
		q.markProcessed(path, ".failed")
		return
	}
	q.logger.Info("import document processed", "worker_id", workerID, "path", path, "count", count)
	q.markProcessed(path, ".imported")
}

func (q *ImportQueue) markProcessed(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		q.logger.Warn("failed to rename processed document", "path", path, "error", err)
	}
}

// Enqueue hands a document path to the pool. A full queue blocks rather than
// drops; enqueueing after Shutdown is a no-op.
func (q *ImportQueue) Enqueue(_ context.Context, path string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: import queue is shutting down", "path", path)
		return nil
	}
	select {
	case q.ch <- path:
	default:
		q.logger.Warn("import queue full, applying backpressure", "path", path)
		q.ch <- path
	}
	return nil
}

// Shutdown stops intake and waits for in-flight documents to finish, up to
// ctx's deadline.
func (q *ImportQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("import queue shutdown interrupted")
	case <-done:
		q.logger.Debug("import queue drained")
	}
}
