package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
)

// TemplateDraft is the in-memory working copy of a routine template being
// edited. Nothing touches the database until Save; a draft is persisted as
// one full snapshot or not at all.
type TemplateDraft struct {
	Id          string                `json:"id,omitempty"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	AgeRange    string                `json:"age_range"`
	Notes       string                `json:"notes"`
	Color       string                `json:"color"`
	Icon        string                `json:"icon"`
	Tasks       []models.TemplateTask `json:"tasks"`
}

// NewTemplateDraft returns an empty skeleton for creating a template from
// scratch.
func NewTemplateDraft() TemplateDraft {
	return TemplateDraft{Tasks: []models.TemplateTask{}}
}

// DraftFrom seeds a working copy from an existing template.
func DraftFrom(tpl models.Template) TemplateDraft {
	tasks := make([]models.TemplateTask, len(tpl.Tasks))
	copy(tasks, tpl.Tasks)
	return TemplateDraft{
		Id:          tpl.Id,
		Name:        tpl.Name,
		Description: tpl.Description,
		AgeRange:    tpl.AgeRange,
		Notes:       tpl.Notes,
		Color:       tpl.Color,
		Icon:        tpl.Icon,
		Tasks:       tasks,
	}
}

// AddTask appends an empty entry for the user to fill in.
func (d *TemplateDraft) AddTask() {
	d.Tasks = append(d.Tasks, models.TemplateTask{})
}

// UpdateTask replaces the entry at index i. Out-of-range indices are ignored.
func (d *TemplateDraft) UpdateTask(i int, t models.TemplateTask) {
	if i < 0 || i >= len(d.Tasks) {
		return
	}
	d.Tasks[i] = t
}

// RemoveTask deletes the entry at index i; later indices shift down, so
// callers must not cache indices across a removal.
func (d *TemplateDraft) RemoveTask(i int) {
	if i < 0 || i >= len(d.Tasks) {
		return
	}
	d.Tasks = append(d.Tasks[:i], d.Tasks[i+1:]...)
}

type TemplateService struct {
	templateRepo *repository.TemplateRepository
	hub          *realtime.Hub
}

func NewTemplateService(templateRepo *repository.TemplateRepository, hub *realtime.Hub) *TemplateService {
	return &TemplateService{templateRepo: templateRepo, hub: hub}
}

func (s *TemplateService) List(ctx context.Context, ownerId string) ([]models.Template, error) {
	return s.templateRepo.List(ctx, ownerId)
}

func (s *TemplateService) Get(ctx context.Context, id string) (models.Template, error) {
	return s.templateRepo.Get(ctx, id)
}

// SaveDraft validates and persists a draft as one snapshot. A draft with an
// id updates the existing template; without one it inserts a new user-owned
// template. Validation failures never reach the database and leave the
// draft editable.
func (s *TemplateService) SaveDraft(ctx context.Context, ownerId string, draft TemplateDraft) (models.Template, error) {
	now := time.Now().UTC()
	tpl := models.Template{
		Id:          draft.Id,
		Name:        draft.Name,
		Description: draft.Description,
		AgeRange:    draft.AgeRange,
		Notes:       draft.Notes,
		Color:       draft.Color,
		Icon:        draft.Icon,
		OwnerId:     ownerId,
		UpdatedAt:   now,
	}
	for _, t := range draft.Tasks {
		if t.IsEmpty() {
			continue
		}
		if t.Id == "" {
			t.Id = uuid.NewString()
		}
		tpl.Tasks = append(tpl.Tasks, t)
	}

	if err := tpl.Validate(); err != nil {
		return models.Template{}, err
	}

	if tpl.Id != "" {
		existing, err := s.templateRepo.Get(ctx, tpl.Id)
		if err != nil {
			return models.Template{}, err
		}
		if existing.Preloaded {
			return models.Template{}, models.ValidationError{Field: "id", Message: "a preloaded template cannot be edited directly"}
		}
		tpl.CreatedAt = existing.CreatedAt
		if err := s.templateRepo.Update(ctx, tpl); err != nil {
			return models.Template{}, err
		}
		s.hub.Publish(realtime.Event{Collection: "templates", Action: realtime.ActionUpdate, Id: tpl.Id, Payload: tpl})
		return tpl, nil
	}

	tpl.Id = uuid.NewString()
	tpl.CreatedAt = now
	if err := s.templateRepo.Create(ctx, tpl); err != nil {
		return models.Template{}, err
	}
	s.hub.Publish(realtime.Event{Collection: "templates", Action: realtime.ActionInsert, Id: tpl.Id, Payload: tpl})
	return tpl, nil
}

// ResolvedEdit reports where an edited template task finally landed.
type ResolvedEdit struct {
	TemplateId string              `json:"template_id"`
	Task       models.TemplateTask `json:"task"`
	Forked     bool                `json:"forked"`
}

// ResolveTaskEdit saves an edit to a template task, forking the template
// first when it is preloaded. Preloaded templates stay pristine for
// everyone: the first edit lazily copies the whole template into a
// user-owned fork (one transaction, so no partial fork survives a failure)
// and later edits land inside that same fork.
func (s *TemplateService) ResolveTaskEdit(ctx context.Context, userId, templateId string, edit models.TemplateTask) (ResolvedEdit, error) {
	if edit.IsEmpty() {
		return ResolvedEdit{}, models.ValidationError{Field: "title", Message: "task title is required"}
	}

	source, err := s.templateRepo.Get(ctx, templateId)
	if err != nil {
		return ResolvedEdit{}, fmt.Errorf("resolve task edit: %w", err)
	}

	if !source.Preloaded {
		task, err := s.saveIntoTemplate(ctx, source.Id, edit)
		if err != nil {
			return ResolvedEdit{}, err
		}
		return ResolvedEdit{TemplateId: source.Id, Task: task}, nil
	}

	fork, err := s.templateRepo.FindFork(ctx, source.Id, userId)
	switch {
	case err == nil:
		existing, findErr := s.templateRepo.FindTaskByTitle(ctx, fork.Id, edit.Title)
		if findErr != nil && !errors.Is(findErr, repository.ErrNotFound) {
			return ResolvedEdit{}, findErr
		}
		if findErr == nil {
			edit.Id = existing.Id
		} else {
			edit.Id = ""
		}
		task, saveErr := s.saveIntoTemplate(ctx, fork.Id, edit)
		if saveErr != nil {
			return ResolvedEdit{}, saveErr
		}
		return ResolvedEdit{TemplateId: fork.Id, Task: task}, nil

	case errors.Is(err, repository.ErrNotFound):
		forkId, task, forkErr := s.createFork(ctx, userId, source, edit)
		if forkErr != nil {
			return ResolvedEdit{}, forkErr
		}
		return ResolvedEdit{TemplateId: forkId, Task: task, Forked: true}, nil

	default:
		return ResolvedEdit{}, err
	}
}

// saveIntoTemplate updates the task in place when it has an id, otherwise
// appends it to the template.
func (s *TemplateService) saveIntoTemplate(ctx context.Context, templateId string, edit models.TemplateTask) (models.TemplateTask, error) {
	if edit.Id != "" {
		if err := s.templateRepo.UpdateTask(ctx, templateId, edit); err != nil {
			return models.TemplateTask{}, err
		}
	} else {
		edit.Id = uuid.NewString()
		if err := s.templateRepo.AppendTask(ctx, templateId, edit); err != nil {
			return models.TemplateTask{}, err
		}
	}
	s.hub.Publish(realtime.Event{Collection: "templates", Action: realtime.ActionUpdate, Id: templateId})
	return edit, nil
}

// createFork copies the source template into a new user-owned template,
// substituting the edited task for its original and leaving every sibling
// unchanged.
func (s *TemplateService) createFork(ctx context.Context, userId string, source models.Template, edit models.TemplateTask) (string, models.TemplateTask, error) {
	now := time.Now().UTC()
	fork := models.Template{
		Id:                 uuid.NewString(),
		Name:               source.Name,
		Description:        source.Description,
		AgeRange:           source.AgeRange,
		Notes:              source.Notes,
		Color:              source.Color,
		Icon:               source.Icon,
		OriginalTemplateId: source.Id,
		OwnerId:            userId,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	var resolved models.TemplateTask
	substituted := false
	for _, t := range source.Tasks {
		copied := t
		copied.Id = uuid.NewString()
		if !substituted && sameTemplateTask(t, edit) {
			copied.Title = edit.Title
			copied.Icon = edit.Icon
			copied.TimeSlot = edit.TimeSlot
			copied.Duration = edit.Duration
			resolved = copied
			substituted = true
		}
		fork.Tasks = append(fork.Tasks, copied)
	}
	if !substituted {
		resolved = edit
		resolved.Id = uuid.NewString()
		fork.Tasks = append(fork.Tasks, resolved)
	}

	if err := s.templateRepo.Create(ctx, fork); err != nil {
		return "", models.TemplateTask{}, fmt.Errorf("create fork: %w", err)
	}

	s.hub.Publish(realtime.Event{Collection: "templates", Action: realtime.ActionInsert, Id: fork.Id, Payload: fork})
	return fork.Id, resolved, nil
}

// sameTemplateTask matches the edited task against a source entry, by id
// when the edit carries one and by title otherwise.
func sameTemplateTask(source, edit models.TemplateTask) bool {
	if edit.Id != "" {
		return source.Id == edit.Id
	}
	return source.Title == edit.Title
}
