package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/classify"
	"github.com/BuzzLyutic/study-planner/internal/model"
	"github.com/BuzzLyutic/study-planner/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

const (
	SourceServer = "server"
	SourceLocal  = "local"
)

// Remote is the part of the API client the task service needs.
type Remote interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, t model.NewTask) (model.Task, error)
	SetStatus(ctx context.Context, id model.ID, status model.Status) (model.Task, error)
	DeleteTask(ctx context.Context, id model.ID) error
	Analytics(ctx context.Context) (model.Stats, error)
}

type StatsReport struct {
	model.Stats
	Overdue int    `json:"overdue"`
	Source  string `json:"source"`
}

type Option func(*TaskService)

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *TaskService) { s.loc = loc }
}

type TaskService struct {
	repo   repo.TaskRepository
	remote Remote
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location
}

func NewTaskService(repo repo.TaskRepository, remote Remote, logger *zap.Logger, opts ...Option) *TaskService {
	s := &TaskService{
		repo:   repo,
		remote: remote,
		logger: logger,
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) clock() time.Time {
	return s.now().In(s.loc)
}

// Sync replaces the cache with the remote task list.
func (s *TaskService) Sync(ctx context.Context) (int, error) {
	tasks, err := s.remote.ListTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch tasks: %w", err)
	}
	if err := s.repo.ReplaceTasks(ctx, tasks); err != nil {
		return 0, fmt.Errorf("cache tasks: %w", err)
	}
	s.logger.Debug("tasks synced", zap.Int("count", len(tasks)))
	return len(tasks), nil
}

// List returns the cached tasks visible under filter.
func (s *TaskService) List(ctx context.Context, filter model.Filter, byDeadline bool) ([]model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	visible := classify.Classify(tasks, filter, s.clock())
	if byDeadline {
		visible = classify.SortByDeadline(visible, s.loc)
	}
	return visible, nil
}

// Stats prefers the server's counters and falls back to computing them from
// the cache when the API cannot provide them.
func (s *TaskService) Stats(ctx context.Context) (StatsReport, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return StatsReport{}, err
	}
	local := classify.Aggregate(tasks)
	report := StatsReport{
		Stats:   local,
		Overdue: len(classify.Classify(tasks, model.FilterOverdue, s.clock())),
		Source:  SourceLocal,
	}

	server, err := s.remote.Analytics(ctx)
	if err != nil {
		s.logger.Debug("server analytics unavailable, using local counts", zap.Error(err))
		return report, nil
	}
	if server != local {
		s.logger.Warn("server analytics differ from cached tasks",
			zap.Int("server_total", server.Total),
			zap.Int("local_total", local.Total),
			zap.Int("server_score", server.ProductivityScore),
			zap.Int("local_score", local.ProductivityScore),
		)
	}
	report.Stats = server
	report.Source = SourceServer
	return report, nil
}

func (s *TaskService) Create(ctx context.Context, t model.NewTask) (model.Task, error) {
	t, err := s.validate(t)
	if err != nil {
		return model.Task{}, err
	}

	created, err := s.remote.CreateTask(ctx, t)
	if err != nil {
		return created, err
	}

	if err := s.repo.UpsertTask(ctx, created); err != nil {
		s.logger.Warn("failed to cache created task", zap.String("task_id", string(created.ID)), zap.Error(err))
	}
	return created, nil
}

// Toggle flips a cached task between pending and completed.
func (s *TaskService) Toggle(ctx context.Context, id model.ID) (model.Task, error) {
	current, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return current, err
	}

	next := current.Status.Toggle()
	remote, err := s.remote.SetStatus(ctx, id, next)
	if err != nil {
		return current, err
	}

	updated := current
	updated.Status = next
	if remote.Title != "" {
		updated = remote
	}
	if err := s.repo.UpsertTask(ctx, updated); err != nil {
		s.logger.Warn("failed to cache toggled task", zap.String("task_id", string(id)), zap.Error(err))
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id model.ID) error {
	if err := s.remote.DeleteTask(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil && !errors.Is(err, repo.ErrorNotFound) {
		s.logger.Warn("failed to drop deleted task from cache", zap.String("task_id", string(id)), zap.Error(err))
	}
	return nil
}

func (s *TaskService) validate(t model.NewTask) (model.NewTask, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return t, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !t.Priority.Valid() {
		return t, fmt.Errorf("%w: priority must be low, medium or high", ErrValidation)
	}
	if !classify.ValidDueDate(t.DueDate) {
		return t, fmt.Errorf("%w: due_date must be YYYY-MM-DD", ErrValidation)
	}
	if t.DueTime != nil {
		if strings.TrimSpace(*t.DueTime) == "" {
			t.DueTime = nil
		} else if !classify.ValidDueTime(*t.DueTime) {
			return t, fmt.Errorf("%w: due_time must be HH:MM", ErrValidation)
		}
	}
	return t, nil
}
