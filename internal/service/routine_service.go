package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
)

// DayView is one child's day: the flat task list plus its derived grouping.
type DayView struct {
	Date   string        `json:"date"`
	Tasks  []models.Task `json:"tasks"`
	Groups []Group       `json:"groups"`
}

type RoutineService struct {
	taskRepo     *repository.TaskRepository
	templateRepo *repository.TemplateRepository
	hub          *realtime.Hub
}

func NewRoutineService(
	taskRepo *repository.TaskRepository,
	templateRepo *repository.TemplateRepository,
	hub *realtime.Hub,
) *RoutineService {
	return &RoutineService{
		taskRepo:     taskRepo,
		templateRepo: templateRepo,
		hub:          hub,
	}
}

// DayTasks returns a child's tasks for one date along with the derived
// groups. ownerId scopes which templates contribute display colors.
func (s *RoutineService) DayTasks(ctx context.Context, childId, date, ownerId string) (DayView, error) {
	tasks, err := s.taskRepo.ListForDay(ctx, childId, date)
	if err != nil {
		return DayView{}, err
	}

	templates, err := s.templateRepo.List(ctx, ownerId)
	if err != nil {
		return DayView{}, err
	}

	return DayView{
		Date:   date,
		Tasks:  tasks,
		Groups: GroupTasks(tasks, templates),
	}, nil
}

// AddTask inserts a manually created task.
func (s *RoutineService) AddTask(ctx context.Context, task models.Task) (models.Task, error) {
	task.Id = uuid.NewString()
	task.IsCompleted = false
	task.CompletedAt = nil
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := task.Validate(); err != nil {
		return models.Task{}, err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return models.Task{}, err
	}

	s.hub.Publish(realtime.Event{Collection: "tasks", Action: realtime.ActionInsert, Id: task.Id, Payload: task})
	return task, nil
}

// ToggleCompletion flips a single task's completed flag, stamping or
// clearing completed_at to match.
func (s *RoutineService) ToggleCompletion(ctx context.Context, taskId string) (models.Task, error) {
	task, err := s.taskRepo.Get(ctx, taskId)
	if err != nil {
		return models.Task{}, err
	}

	now := time.Now().UTC()
	if task.IsCompleted {
		task.IsCompleted = false
		task.CompletedAt = nil
	} else {
		task.IsCompleted = true
		task.CompletedAt = &now
	}
	task.UpdatedAt = now

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return models.Task{}, err
	}

	s.hub.Publish(realtime.Event{Collection: "tasks", Action: realtime.ActionUpdate, Id: task.Id, Payload: task})
	return task, nil
}

// BulkComplete marks the given tasks completed with one shared timestamp in
// a single batched update. Satisfies BulkCompleter.
func (s *RoutineService) BulkComplete(ctx context.Context, ids []string, completedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, models.ValidationError{Field: "ids", Message: "at least one task id is required"}
	}

	count, err := s.taskRepo.BulkComplete(ctx, ids, completedAt)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		s.hub.Publish(realtime.Event{Collection: "tasks", Action: realtime.ActionUpdate, Id: id})
	}
	return count, nil
}

// ApplyTemplate materializes a template onto a child's day, creating one
// task per template entry carrying the template reference and routine name.
func (s *RoutineService) ApplyTemplate(ctx context.Context, childId, templateId, date string) ([]models.Task, error) {
	tpl, err := s.templateRepo.Get(ctx, templateId)
	if err != nil {
		return nil, fmt.Errorf("apply template: %w", err)
	}

	now := time.Now().UTC()
	created := make([]models.Task, 0, len(tpl.Tasks))
	for _, entry := range tpl.Tasks {
		if entry.IsEmpty() {
			continue
		}
		task := models.Task{
			Id:          uuid.NewString(),
			ChildId:     childId,
			Title:       entry.Title,
			TimeSlot:    entry.TimeSlot,
			TemplateId:  tpl.Id,
			RoutineName: tpl.Name,
			Duration:    entry.Duration,
			Category:    entry.Icon,
			Date:        date,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := task.Validate(); err != nil {
			return nil, err
		}
		if err := s.taskRepo.Create(ctx, task); err != nil {
			return nil, err
		}
		created = append(created, task)
	}

	for _, task := range created {
		s.hub.Publish(realtime.Event{Collection: "tasks", Action: realtime.ActionInsert, Id: task.Id, Payload: task})
	}
	return created, nil
}
