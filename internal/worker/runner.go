package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of periodic work. Run is called every Interval until the
// runner stops; with Immediate it also runs once right after Start.
type Job struct {
	Name      string
	Interval  time.Duration
	Immediate bool
	Run       func(ctx context.Context) error
}

type Runner struct {
	logger *zap.Logger
	jobs   []Job
	wg     sync.WaitGroup
	stop   chan struct{}
	once   sync.Once
}

func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	return &Runner{
		logger: logger,
		jobs:   jobs,
		stop:   make(chan struct{}),
	}
}

func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("Starting job runner", zap.Int("jobs", len(r.jobs)))

	for _, job := range r.jobs {
		if job.Interval <= 0 {
			r.logger.Warn("job disabled", zap.String("job", job.Name))
			continue
		}
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
}

// Stop signals every job loop and waits for in-flight runs to return.
// It is safe to call more than once.
func (r *Runner) Stop() {
	r.once.Do(func() {
		r.logger.Info("Stopping job runner...")
		close(r.stop)
	})
	r.wg.Wait()
	r.logger.Info("Job runner stopped")
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	if job.Immediate {
		r.run(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.run(ctx, job)
		}
	}
}

func (r *Runner) run(ctx context.Context, job Job) {
	if err := job.Run(ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("job error", zap.String("job", job.Name), zap.Error(err))
	}
}
