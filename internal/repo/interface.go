package repo

import (
	"context"

	"github.com/BuzzLyutic/study-planner/internal/model"
)

// TaskRepository is the local best-effort cache of the remote task list and
// the log of finished pomodoro sessions.
type TaskRepository interface {
	ReplaceTasks(ctx context.Context, tasks []model.Task) error
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id model.ID) (model.Task, error)
	UpsertTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id model.ID) error
	SaveSession(ctx context.Context, s model.PomodoroSession) (model.PomodoroSession, error)
	ListSessions(ctx context.Context, limit int) ([]model.PomodoroSession, error)
}
