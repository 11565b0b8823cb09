package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/model"
	"github.com/BuzzLyutic/study-planner/internal/pomodoro"
	"github.com/BuzzLyutic/study-planner/internal/repo"
)

// PomodoroService owns the process-wide timer. HTTP handlers and the tick
// job call it from different goroutines, so every transition holds mu.
type PomodoroService struct {
	mu        sync.Mutex
	timer     *pomodoro.Timer
	repo      repo.TaskRepository
	logger    *zap.Logger
	now       func() time.Time
	listeners []func(pomodoro.Event)
}

func NewPomodoroService(timer *pomodoro.Timer, repo repo.TaskRepository, logger *zap.Logger) *PomodoroService {
	return &PomodoroService{
		timer:  timer,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// OnEvent registers fn to be called after every transition that changed state.
func (s *PomodoroService) OnEvent(fn func(pomodoro.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *PomodoroService) State() pomodoro.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Snapshot()
}

func (s *PomodoroService) Start(ctx context.Context) pomodoro.Event {
	return s.apply(ctx, (*pomodoro.Timer).Start)
}

func (s *PomodoroService) Pause(ctx context.Context) pomodoro.Event {
	return s.apply(ctx, (*pomodoro.Timer).Pause)
}

func (s *PomodoroService) Reset(ctx context.Context) pomodoro.Event {
	return s.apply(ctx, (*pomodoro.Timer).Reset)
}

// Tick advances the timer by one second. It is a no-op unless running.
func (s *PomodoroService) Tick(ctx context.Context) pomodoro.Event {
	return s.apply(ctx, (*pomodoro.Timer).Tick)
}

func (s *PomodoroService) Sessions(ctx context.Context, limit int) ([]model.PomodoroSession, error) {
	return s.repo.ListSessions(ctx, limit)
}

func (s *PomodoroService) apply(ctx context.Context, cmd func(*pomodoro.Timer) pomodoro.Event) pomodoro.Event {
	s.mu.Lock()
	ev := cmd(s.timer)
	workSeconds := s.timer.WorkSeconds()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if ev.Kind == pomodoro.EventNone {
		return ev
	}

	if ev.Kind == pomodoro.EventPhaseComplete {
		s.logger.Info("pomodoro phase complete",
			zap.String("finished", string(ev.Finished)),
			zap.String("next", string(ev.State.Phase)),
			zap.Int("sessions", ev.State.SessionsCompleted),
		)
		if ev.Finished == pomodoro.PhaseWork {
			s.record(ctx, workSeconds)
		}
	} else if ev.Kind != pomodoro.EventTicked {
		s.logger.Debug("pomodoro", zap.String("event", string(ev.Kind)), zap.Int("remaining", ev.State.RemainingSeconds))
	}

	for _, fn := range listeners {
		fn(ev)
	}
	return ev
}

func (s *PomodoroService) record(ctx context.Context, seconds int) {
	_, err := s.repo.SaveSession(ctx, model.PomodoroSession{
		Phase:       string(pomodoro.PhaseWork),
		DurationSec: seconds,
		FinishedAt:  s.now(),
	})
	if err != nil {
		s.logger.Warn("failed to record pomodoro session", zap.Error(err))
	}
}
