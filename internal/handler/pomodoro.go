package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/service"
	"github.com/BuzzLyutic/study-planner/pkg/respond"
)

type PomodoroHandler struct {
	service *service.PomodoroService
	logger  *zap.Logger
}

func NewPomodoroHandler(srv *service.PomodoroService, logger *zap.Logger) *PomodoroHandler {
	return &PomodoroHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *PomodoroHandler) State(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.State())
}

// Start, Pause and Reset answer with the resulting event; a no-op command
// still returns 200 with kind "none".
func (h *PomodoroHandler) Start(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.Start(r.Context()))
}

func (h *PomodoroHandler) Pause(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.Pause(r.Context()))
}

func (h *PomodoroHandler) Reset(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.Reset(r.Context()))
}

func (h *PomodoroHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := h.service.Sessions(r.Context(), limit)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.List(w, r, http.StatusOK, sessions)
}
