package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/study-planner/internal/classify"
	"github.com/BuzzLyutic/study-planner/internal/model"
	"github.com/BuzzLyutic/study-planner/pkg/respond"
)

type apiState struct {
	mu    sync.Mutex
	tasks []model.Task
}

func newFakeAPI(t *testing.T) *apiState {
	t.Helper()
	api := &apiState{tasks: []model.Task{
		{ID: "1", Title: "Essay", DueDate: "2001-01-01", Priority: model.PriorityHigh, Status: model.StatusPending},
		{ID: "2", Title: "Lab", DueDate: "2999-01-01", Priority: model.PriorityLow, Status: model.StatusPending},
		{ID: "3", Title: "Reading", DueDate: "2001-01-01", Priority: model.PriorityMedium, Status: model.StatusCompleted},
	}}

	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			respond.Error(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		year := "Year 2"
		respond.JSON(w, r, http.StatusOK, map[string]any{
			"token": "tok-123",
			"user":  model.User{ID: "7", Name: "Ada", Email: body["email"], EducationLevel: "college", AcademicYear: &year},
		})
	})
	r.Get("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			respond.Error(w, r, http.StatusUnauthorized, "Not authorized")
			return
		}
		api.mu.Lock()
		defer api.mu.Unlock()
		respond.JSON(w, r, http.StatusOK, api.tasks)
	})
	r.Post("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		var req model.NewTask
		json.NewDecoder(r.Body).Decode(&req)
		task := model.Task{ID: "9", Title: req.Title, DueDate: req.DueDate, DueTime: req.DueTime, Priority: req.Priority, Status: model.StatusPending}
		api.mu.Lock()
		api.tasks = append([]model.Task{task}, api.tasks...)
		api.mu.Unlock()
		respond.JSON(w, r, http.StatusCreated, task)
	})
	r.Put("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status model.Status `json:"status"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		defer api.mu.Unlock()
		for i := range api.tasks {
			if string(api.tasks[i].ID) == chi.URLParam(r, "id") {
				api.tasks[i].Status = body.Status
				respond.JSON(w, r, http.StatusOK, api.tasks[i])
				return
			}
		}
		respond.JSON(w, r, http.StatusOK, map[string]any{})
	})
	r.Delete("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"message": "Task deleted"})
	})
	r.Get("/api/roadmap/user", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, []map[string]any{{
			"id":            1,
			"career_goal":   "Data scientist",
			"current_level": "beginner",
			"timeframe":     "6 months",
			"roadmap_data":  `{"roadmap_title":"Path to Data Science","phases":[{"phase":"Foundations","skills":["Python","Statistics"]}]}`,
		}})
	})

	r.Post("/api/roadmap/generate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		respond.JSON(w, r, http.StatusOK, map[string]any{
			"roadmap_title":  "Path to " + body["career_goal"],
			"total_duration": body["timeframe"],
			"phases":         []map[string]any{{"phase": "Phase 1: Foundation", "skills": []string{"SQL"}}},
		})
	})
	r.Post("/api/career-advice", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		respond.JSON(w, r, http.StatusOK, map[string]string{"advice": "For " + body["input"] + ": learn statistics."})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	t.Setenv("PLANNER_HOME", t.TempDir())
	t.Setenv("PLANNER_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("API_URL", srv.URL)
	t.Setenv("API_TOKEN", "tok-123")
	return api
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeIDs(t *testing.T, out string) []string {
	t.Helper()
	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, string(task.ID))
	}
	return ids
}

func TestTasksCommand(t *testing.T) {
	newFakeAPI(t)

	tests := []struct {
		args []string
		want []string
	}{
		{args: []string{"tasks", "--json"}, want: []string{"1", "2"}},
		{args: []string{"tasks", "--json", "-f", "completed"}, want: []string{"3"}},
		{args: []string{"tasks", "--json", "-f", "overdue"}, want: []string{"1"}},
		{args: []string{"tasks", "--json", "-f", "pending", "-s", "deadline"}, want: []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeIDs(t, out))
		})
	}

	_, err := run(t, "tasks", "-f", "archived")
	assert.ErrorIs(t, err, classify.ErrUnknownFilter)
}

func TestTasksCommand_Table(t *testing.T) {
	newFakeAPI(t)

	out, err := run(t, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "Essay")
	assert.Contains(t, out, "overdue")
	assert.NotContains(t, out, "Reading")
}

func TestStatsCommand_FallsBackToLocal(t *testing.T) {
	newFakeAPI(t)

	out, err := run(t, "stats", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3,"completed":1,"pending":2,"productivity_score":33,"overdue":1,"source":"local"}`, out)
}

func TestAddAndDoneCommands(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, "add", "Flashcards", "--due", "2999-05-01", "--at", "18:30")
	require.NoError(t, err)
	assert.Contains(t, out, "Task added successfully! (id 9)")
	api.mu.Lock()
	assert.Equal(t, model.PriorityMedium, api.tasks[0].Priority)
	api.mu.Unlock()

	_, err = run(t, "add", "Bad", "--due", "someday")
	assert.Error(t, err)

	out, err = run(t, "done", "1")
	require.NoError(t, err)
	assert.Equal(t, "Essay is now completed.\n", out)

	out, err = run(t, "rm", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
}

func TestLoginWhoamiLogout(t *testing.T) {
	newFakeAPI(t)
	t.Setenv("API_TOKEN", "")

	_, err := run(t, "whoami")
	assert.Error(t, err)

	_, err = run(t, "login", "-e", "ada@example.com", "-p", "wrong")
	assert.Error(t, err)

	out, err := run(t, "login", "-e", "ada@example.com", "-p", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Welcome, Ada! (Year 2)\n", out)

	// the saved session authenticates later commands
	out, err = run(t, "tasks", "--json")
	require.NoError(t, err)
	assert.Len(t, decodeIDs(t, out), 2)

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")

	_, err = run(t, "logout")
	require.NoError(t, err)
	_, err = run(t, "tasks")
	assert.Error(t, err)
}

func TestRoadmapCommand(t *testing.T) {
	newFakeAPI(t)

	out, err := run(t, "roadmap")
	require.NoError(t, err)
	assert.Contains(t, out, "Path to Data Science")
	assert.Contains(t, out, "1. Foundations")
	assert.Contains(t, out, "Skills: Python, Statistics")
}

func TestAddCommand_DefaultDueIsTodayInTimezone(t *testing.T) {
	api := newFakeAPI(t)
	t.Setenv("TIMEZONE", "Pacific/Kiritimati")
	loc, err := time.LoadLocation("Pacific/Kiritimati")
	require.NoError(t, err)

	before := time.Now().In(loc).Format("2006-01-02")
	_, err = run(t, "add", "Flashcards")
	require.NoError(t, err)
	after := time.Now().In(loc).Format("2006-01-02")

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Contains(t, []string{before, after}, api.tasks[0].DueDate)
}

func TestRoadmapGenerateCommand(t *testing.T) {
	newFakeAPI(t)

	out, err := run(t, "roadmap", "generate", "--goal", "Data Analyst", "--timeframe", "3 months")
	require.NoError(t, err)
	assert.Contains(t, out, "Path to Data Analyst")
	assert.Contains(t, out, "Goal: Data Analyst  Level: beginner  Timeframe: 3 months")
	assert.Contains(t, out, "1. Phase 1: Foundation")
	assert.Contains(t, out, "Skills: SQL")

	_, err = run(t, "roadmap", "generate")
	assert.Error(t, err, "--goal is required")
}

func TestAdviceCommand(t *testing.T) {
	newFakeAPI(t)

	out, err := run(t, "advice", "I", "like", "data")
	require.NoError(t, err)
	assert.Equal(t, "For I like data: learn statistics.\n", out)
}
