package handlers

import (
	"net/http"
	"strconv"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var goal models.Goal
	if !decodeBody(w, r, &goal) {
		return
	}
	goal.ChildId = r.PathValue("id")

	created, err := h.goalService.Create(r.Context(), goal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"goal": created})
}

func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goalService.ListByChild(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.goalService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *GoalHandler) ToggleMilestone(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid milestone index"})
		return
	}

	goal, err := h.goalService.ToggleMilestone(r.Context(), r.PathValue("id"), index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

// GetTargetDate projects the goal's completion date from its frequency and
// remaining milestones.
func (h *GoalHandler) GetTargetDate(w http.ResponseWriter, r *http.Request) {
	goal, err := h.goalService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	target, err := service.TargetDate(goal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goal_id":     goal.Id,
		"target_date": target.Format("2006-01-02"),
	})
}
