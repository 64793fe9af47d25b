package handlers

import (
	"net/http"
	"time"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/service"
)

type RoutineHandler struct {
	routineService *service.RoutineService
}

func NewRoutineHandler(routineService *service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// GetDayTasks returns a child's tasks for one date together with the
// derived routine groups. Defaults to today when no date is given.
func (h *RoutineHandler) GetDayTasks(w http.ResponseWriter, r *http.Request) {
	childId := r.PathValue("id")
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	ownerId := r.URL.Query().Get("user_id")

	view, err := h.routineService.DayTasks(r.Context(), childId, date, ownerId)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RoutineHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if !decodeBody(w, r, &task) {
		return
	}
	task.ChildId = r.PathValue("id")

	created, err := h.routineService.AddTask(r.Context(), task)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"task": created})
}

func (h *RoutineHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.routineService.ToggleCompletion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

type bulkCompleteRequestBody struct {
	Ids []string `json:"ids"`
}

// BulkComplete marks a selection of tasks completed as one batched update
// and answers with the celebratory acknowledgment.
func (h *RoutineHandler) BulkComplete(w http.ResponseWriter, r *http.Request) {
	var body bulkCompleteRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	now := time.Now().UTC()
	count, err := h.routineService.BulkComplete(r.Context(), body.Ids, now)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.NewAcknowledgment(count, now))
}

type applyTemplateRequestBody struct {
	TemplateId string `json:"template_id"`
	Date       string `json:"date"`
}

func (h *RoutineHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var body applyTemplateRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Date == "" {
		body.Date = time.Now().UTC().Format("2006-01-02")
	}

	tasks, err := h.routineService.ApplyTemplate(r.Context(), r.PathValue("id"), body.TemplateId, body.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"tasks": tasks})
}
