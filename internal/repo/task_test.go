package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/study-planner/internal/model"
	"github.com/BuzzLyutic/study-planner/internal/testutil"
)

func strPtr(s string) *string { return &s }

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "3", Title: "Essay", DueDate: "2024-02-01", Priority: model.PriorityHigh, Status: model.StatusPending},
		{ID: "2", Title: "Lab report", Description: "chem", DueDate: "2024-01-20", DueTime: strPtr("09:30"), Priority: model.PriorityMedium, Status: model.StatusCompleted},
		{ID: "1", Title: "Broken", DueDate: "not a date", Priority: model.Priority("urgent"), Status: model.StatusPending},
	}
}

// runRepoSuite exercises the behaviour both cache implementations share.
func runRepoSuite(t *testing.T, newRepo func(t *testing.T) TaskRepository) {
	ctx := context.Background()

	t.Run("replace keeps order and drops duplicates", func(t *testing.T) {
		r := newRepo(t)
		tasks := append(sampleTasks(), model.Task{ID: "3", Title: "dup", Status: model.StatusPending})
		require.NoError(t, r.ReplaceTasks(ctx, tasks))

		got, err := r.ListTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleTasks(), got)
	})

	t.Run("replace with empty list clears cache", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.ReplaceTasks(ctx, sampleTasks()))
		require.NoError(t, r.ReplaceTasks(ctx, nil))

		got, err := r.ListTasks(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("get", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.ReplaceTasks(ctx, sampleTasks()))

		got, err := r.GetTask(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, sampleTasks()[1], got)

		_, err = r.GetTask(ctx, "404")
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("upsert updates in place and prepends new", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.ReplaceTasks(ctx, sampleTasks()))

		updated := sampleTasks()[0]
		updated.Status = model.StatusCompleted
		require.NoError(t, r.UpsertTask(ctx, updated))
		require.NoError(t, r.UpsertTask(ctx, model.Task{ID: "9", Title: "New", DueDate: "2024-03-01", Priority: model.PriorityLow, Status: model.StatusPending}))

		got, err := r.ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, model.ID("9"), got[0].ID)
		assert.Equal(t, model.ID("3"), got[1].ID)
		assert.Equal(t, model.StatusCompleted, got[1].Status)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.ReplaceTasks(ctx, sampleTasks()))

		require.NoError(t, r.DeleteTask(ctx, "2"))
		assert.ErrorIs(t, r.DeleteTask(ctx, "2"), ErrorNotFound)

		got, err := r.ListTasks(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("sessions newest first", func(t *testing.T) {
		r := newRepo(t)
		base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			s, err := r.SaveSession(ctx, model.PomodoroSession{
				Phase:       "work",
				DurationSec: 1500,
				FinishedAt:  base.Add(time.Duration(i) * time.Hour),
			})
			require.NoError(t, err)
			assert.NotZero(t, s.ID)
		}

		got, err := r.ListSessions(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].FinishedAt.Equal(base.Add(2*time.Hour)))
		assert.True(t, got[1].FinishedAt.Equal(base.Add(time.Hour)))

		all, err := r.ListSessions(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

// runConcurrencySuite checks that interleaved writers and readers neither
// lose tasks nor fail.
func runConcurrencySuite(t *testing.T, r TaskRepository) {
	ctx := context.Background()
	const writers = 20

	var wg sync.WaitGroup
	errs := make([]error, writers*2)
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = r.UpsertTask(ctx, model.Task{
				ID:       model.ID(fmt.Sprint(idx)),
				Title:    fmt.Sprintf("Concurrent Task %d", idx),
				DueDate:  "2024-01-01",
				Priority: model.PriorityLow,
				Status:   model.StatusPending,
			})
		}(i)
		go func(idx int) {
			defer wg.Done()
			_, errs[writers+idx] = r.ListTasks(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "call %d should not error", i)
	}
	got, err := r.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, got, writers)
}

func TestMemoryRepo(t *testing.T) {
	runRepoSuite(t, func(t *testing.T) TaskRepository {
		return NewMemoryRepo()
	})
	t.Run("concurrent writers", func(t *testing.T) {
		runConcurrencySuite(t, NewMemoryRepo())
	})
}

func TestMemoryRepo_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	require.NoError(t, r.ReplaceTasks(ctx, sampleTasks()))

	got, _ := r.ListTasks(ctx)
	got[0].Title = "mutated"

	again, _ := r.ListTasks(ctx)
	assert.Equal(t, "Essay", again[0].Title)
}

func TestTaskRepo(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	runRepoSuite(t, func(t *testing.T) TaskRepository {
		testutil.TruncateTables(t, pool)
		return NewTaskRepo(pool)
	})
	t.Run("concurrent writers", func(t *testing.T) {
		testutil.TruncateTables(t, pool)
		runConcurrencySuite(t, NewTaskRepo(pool))
	})
}
