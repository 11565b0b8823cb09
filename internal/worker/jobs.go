package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/pomodoro"
)

type Ticker interface {
	Tick(ctx context.Context) pomodoro.Event
}

type Syncer interface {
	Sync(ctx context.Context) (int, error)
}

// TickJob feeds the pomodoro timer one tick per second.
func TickJob(t Ticker) Job {
	return Job{
		Name:     "pomodoro-tick",
		Interval: time.Second,
		Run: func(ctx context.Context) error {
			t.Tick(ctx)
			return nil
		},
	}
}

// SyncJob refreshes the task cache from the API, once at start and then
// every interval. A zero interval (SYNC_INTERVAL=0) disables it, including
// the run at start.
func SyncJob(s Syncer, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:      "task-sync",
		Interval:  interval,
		Immediate: true,
		Run: func(ctx context.Context) error {
			n, err := s.Sync(ctx)
			if err != nil {
				return err
			}
			logger.Info("Tasks synced", zap.Int("count", n))
			return nil
		},
	}
}
