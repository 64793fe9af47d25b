package handlers

import (
	"net/http"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/service"
)

type TemplateHandler struct {
	templateService *service.TemplateService
}

func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// ListTemplates returns every preloaded template plus the caller's own.
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateService.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.templateService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"template": tpl})
}

type saveTemplateRequestBody struct {
	UserId string                `json:"user_id"`
	Draft  service.TemplateDraft `json:"template"`
}

// SaveTemplate persists an edited working copy as one snapshot: update when
// the draft carries an id, insert otherwise.
func (h *TemplateHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var body saveTemplateRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	saved, err := h.templateService.SaveDraft(r.Context(), body.UserId, body.Draft)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if body.Draft.Id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"template": saved})
}

type editTemplateTaskRequestBody struct {
	UserId string              `json:"user_id"`
	Task   models.TemplateTask `json:"task"`
}

// EditTemplateTask saves one task edit, forking the template first when it
// is preloaded.
func (h *TemplateHandler) EditTemplateTask(w http.ResponseWriter, r *http.Request) {
	var body editTemplateTaskRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	resolved, err := h.templateService.ResolveTaskEdit(r.Context(), body.UserId, r.PathValue("id"), body.Task)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if resolved.Forked {
		status = http.StatusCreated
	}
	writeJSON(w, status, resolved)
}
