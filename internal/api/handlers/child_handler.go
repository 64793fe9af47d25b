package handlers

import (
	"net/http"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/service"
)

type ChildHandler struct {
	childService *service.ChildService
}

func NewChildHandler(childService *service.ChildService) *ChildHandler {
	return &ChildHandler{childService: childService}
}

func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var child models.Child
	if !decodeBody(w, r, &child) {
		return
	}

	created, err := h.childService.Create(r.Context(), child)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"child": created})
}

func (h *ChildHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	child, err := h.childService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"child": child})
}

func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	var child models.Child
	if !decodeBody(w, r, &child) {
		return
	}
	child.Id = r.PathValue("id")

	updated, err := h.childService.Update(r.Context(), child)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"child": updated})
}

func (h *ChildHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.childService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"children": children})
}
