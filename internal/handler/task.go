package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/classify"
	"github.com/BuzzLyutic/study-planner/internal/client"
	"github.com/BuzzLyutic/study-planner/internal/model"
	"github.com/BuzzLyutic/study-planner/internal/repo"
	"github.com/BuzzLyutic/study-planner/internal/service"
	"github.com/BuzzLyutic/study-planner/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.NewTask
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.service.Create(r.Context(), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

// List serves GET /api/tasks?filter=...&sort=deadline.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := classify.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	byDeadline := r.URL.Query().Get("sort") == "deadline"

	tasks, err := h.service.List(r.Context(), filter, byDeadline)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.List(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := model.ID(chi.URLParam(r, "id"))

	task, err := h.service.Toggle(r.Context(), id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.ID(chi.URLParam(r, "id"))

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Sync(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Sync(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]int{"synced": n})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Stats(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, report)
}

func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, repo.ErrorNotFound), errors.Is(err, client.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation), errors.Is(err, classify.ErrUnknownFilter):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, client.ErrUnauthorized):
		respond.Error(w, r, http.StatusUnauthorized, "not logged in")
	case errors.As(err, &apiErr):
		logger.Warn("upstream error", zap.Int("status", apiErr.StatusCode), zap.String("message", apiErr.Message))
		respond.Error(w, r, http.StatusBadGateway, apiErr.Message)
	default:
		logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
