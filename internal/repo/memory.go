package repo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/BuzzLyutic/study-planner/internal/model"
)

// MemoryRepo keeps the cache in process memory. It is used when no
// DATABASE_URL is configured and in tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	tasks    []model.Task
	sessions []model.PomodoroSession
	nextID   int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) ReplaceTasks(_ context.Context, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[model.ID]bool, len(tasks))
	r.tasks = make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		r.tasks = append(r.tasks, t)
	}
	return nil
}

func (r *MemoryRepo) ListTasks(_ context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tasks), nil
}

func (r *MemoryRepo) GetTask(_ context.Context, id model.ID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.index(id); i >= 0 {
		return r.tasks[i], nil
	}
	return model.Task{}, ErrorNotFound
}

func (r *MemoryRepo) UpsertTask(_ context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.index(t.ID); i >= 0 {
		r.tasks[i] = t
		return nil
	}
	r.tasks = slices.Insert(r.tasks, 0, t)
	return nil
}

func (r *MemoryRepo) DeleteTask(_ context.Context, id model.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return ErrorNotFound
	}
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return nil
}

func (r *MemoryRepo) SaveSession(_ context.Context, s model.PomodoroSession) (model.PomodoroSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s.ID = r.nextID
	if s.FinishedAt.IsZero() {
		s.FinishedAt = time.Now()
	}
	r.sessions = append(r.sessions, s)
	return s, nil
}

// ListSessions returns the newest sessions first.
func (r *MemoryRepo) ListSessions(_ context.Context, limit int) ([]model.PomodoroSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	out := make([]model.PomodoroSession, 0, min(limit, len(r.sessions)))
	for i := len(r.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.sessions[i])
	}
	return out, nil
}

func (r *MemoryRepo) index(id model.ID) int {
	return slices.IndexFunc(r.tasks, func(t model.Task) bool { return t.ID == id })
}
