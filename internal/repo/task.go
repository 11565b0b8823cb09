package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/study-planner/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const DefaultSessionLimit = 20

var taskColumns = []string{"id", "position", "title", "description", "due_date", "due_time", "priority", "status"}

type TaskRepo struct { // Postgres-backed cache
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

// ReplaceTasks swaps the whole cached list in one transaction, keeping the
// order the API returned.
func (r *TaskRepo) ReplaceTasks(ctx context.Context, tasks []model.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM cached_tasks"); err != nil {
		return err
	}

	rows := make([][]any, 0, len(tasks))
	seen := make(map[model.ID]bool, len(tasks))
	for i, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		rows = append(rows, []any{string(t.ID), i, t.Title, t.Description, t.DueDate, t.DueTime, string(t.Priority), string(t.Status)})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"cached_tasks"}, taskColumns, pgx.CopyFromRows(rows)); err != nil {
		return r.mapError(err)
	}
	return tx.Commit(ctx)
}

func (r *TaskRepo) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, due_date, due_time, priority, status
		FROM cached_tasks
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) GetTask(ctx context.Context, id model.ID) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT id, title, description, due_date, due_time, priority, status
		FROM cached_tasks
		WHERE id = $1
	`, string(id)))

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

// UpsertTask stores t; a task not yet cached goes to the front of the list.
func (r *TaskRepo) UpsertTask(ctx context.Context, t model.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cached_tasks (id, position, title, description, due_date, due_time, priority, status)
		VALUES ($1, COALESCE((SELECT MIN(position) FROM cached_tasks), 0) - 1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
			description = EXCLUDED.description,
			due_date = EXCLUDED.due_date,
			due_time = EXCLUDED.due_time,
			priority = EXCLUDED.priority,
			status = EXCLUDED.status,
			synced_at = now()
	`, string(t.ID), t.Title, t.Description, t.DueDate, t.DueTime, string(t.Priority), string(t.Status))
	return r.mapError(err)
}

func (r *TaskRepo) DeleteTask(ctx context.Context, id model.ID) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM cached_tasks WHERE id = $1", string(id))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) SaveSession(ctx context.Context, s model.PomodoroSession) (model.PomodoroSession, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pomodoro_sessions (phase, duration_seconds, finished_at)
		VALUES ($1, $2, $3)
		RETURNING id, phase, duration_seconds, finished_at
	`, s.Phase, s.DurationSec, s.FinishedAt).Scan(&s.ID, &s.Phase, &s.DurationSec, &s.FinishedAt)
	return s, r.mapError(err)
}

func (r *TaskRepo) ListSessions(ctx context.Context, limit int) ([]model.PomodoroSession, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, phase, duration_seconds, finished_at
		FROM pomodoro_sessions
		ORDER BY finished_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]model.PomodoroSession, 0, limit)
	for rows.Next() {
		var s model.PomodoroSession
		if err := rows.Scan(&s.ID, &s.Phase, &s.DurationSec, &s.FinishedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t                model.Task
		id, prio, status string
	)
	err := row.Scan(&id, &t.Title, &t.Description, &t.DueDate, &t.DueTime, &prio, &status)
	t.ID = model.ID(id)
	t.Priority = model.Priority(prio)
	t.Status = model.Status(status)
	return t, err
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}
