package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/logger"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every worker in its own goroutine and waits until all of them
// returned, which happens once ctx is cancelled.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Add(1)
		go func(worker Worker) {
			defer wg.Done()
			worker.Run(ctx)
		}(worker)
	}
	wg.Wait()
}

// PeriodicWorker calls job every interval until its context is cancelled.
type PeriodicWorker struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context)

	logger *logger.Logger
}

func NewPeriodicWorker(name string, interval time.Duration, job func(ctx context.Context), log *logger.Logger) *PeriodicWorker {
	return &PeriodicWorker{
		name:     name,
		interval: interval,
		job:      job,
		logger:   log,
	}
}

func (p *PeriodicWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Str("worker", p.name).Dur("interval", p.interval).Msg("worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Str("worker", p.name).Msg("worker stopped")
			return
		case <-ticker.C:
			p.job(ctx)
		}
	}
}
