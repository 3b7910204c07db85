package propagation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/propagation"
)

// Runner propagates queued template updates on one background worker.
type Runner struct {
	service propagation.Service
	queue   chan string
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

func NewRunner(service propagation.Service, size int) *Runner {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		service: service,
		queue:   make(chan string, size),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enqueue implements propagation.Queue. It never blocks.
func (r *Runner) Enqueue(templateName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return false
	}
	select {
	case r.queue <- templateName:
		return true
	default:
		slog.Warn("Propagation: queue full", "template", templateName)
		return false
	}
}

// Start launches the worker.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.work()
	slog.Info("Propagation runner started", "queue_size", cap(r.queue))
}

// Stop refuses new work, drains the queue and waits for the worker. When ctx ends
// first the running propagation is cancelled and the rest of the queue is dropped.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		slog.Info("Propagation runner stopped")
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return ctx.Err()
	}
}

func (r *Runner) work() {
	defer r.wg.Done()

	for name := range r.queue {
		if r.ctx.Err() != nil {
			slog.Warn("Propagation: dropped on shutdown", "template", name)
			continue
		}

		start := time.Now()
		if _, err := r.service.PropagateTemplate(r.ctx, name); err != nil {
			slog.Error("Propagation: template failed", "template", name, "error", err, "duration", time.Since(start))
			continue
		}
		slog.Debug("Propagation: template done", "template", name, "duration", time.Since(start))
	}
}
