package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/repository"
)

func newRoutineService(t *testing.T) (*RoutineService, *repository.TaskRepository, models.Child) {
	t.Helper()
	db := setupDB(t)
	taskRepo := repository.NewTaskRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	child := createChild(t, db)
	return NewRoutineService(taskRepo, templateRepo, newHub()), taskRepo, child
}

func TestAddTaskAndDayView(t *testing.T) {
	svc, _, child := newRoutineService(t)
	ctx := context.Background()

	created, err := svc.AddTask(ctx, models.Task{
		ChildId:     child.Id,
		Title:       "Brush teeth",
		RoutineName: "Morning",
		TimeSlot:    "07:30",
		Date:        "2026-09-01",
	})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if created.Id == "" {
		t.Fatal("expected generated task id")
	}

	view, err := svc.DayTasks(ctx, child.Id, "2026-09-01", "")
	if err != nil {
		t.Fatalf("day tasks: %v", err)
	}
	if len(view.Tasks) != 1 || view.Tasks[0].Title != "Brush teeth" {
		t.Fatalf("unexpected day tasks: %#v", view.Tasks)
	}
	if len(view.Groups) != 1 || view.Groups[0].Key != "Morning" {
		t.Fatalf("unexpected groups: %#v", view.Groups)
	}
}

func TestAddTaskValidation(t *testing.T) {
	svc, _, child := newRoutineService(t)

	_, err := svc.AddTask(context.Background(), models.Task{ChildId: child.Id, Date: "2026-09-01"})
	var verr models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestToggleCompletionRoundTrip(t *testing.T) {
	svc, _, child := newRoutineService(t)
	ctx := context.Background()

	task, err := svc.AddTask(ctx, models.Task{ChildId: child.Id, Title: "Read", Date: "2026-09-01"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	done, err := svc.ToggleCompletion(ctx, task.Id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !done.IsCompleted || done.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp: %#v", done)
	}

	undone, err := svc.ToggleCompletion(ctx, task.Id)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if undone.IsCompleted || undone.CompletedAt != nil {
		t.Fatalf("expected reopened task: %#v", undone)
	}
}

func TestBulkCompleteSharedTimestamp(t *testing.T) {
	svc, taskRepo, child := newRoutineService(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		task, err := svc.AddTask(ctx, models.Task{ChildId: child.Id, Title: title, Date: "2026-09-01"})
		if err != nil {
			t.Fatalf("add task: %v", err)
		}
		ids = append(ids, task.Id)
	}

	stamp := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	count, err := svc.BulkComplete(ctx, ids[:2], stamp)
	if err != nil {
		t.Fatalf("bulk complete: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 updated rows, got %d", count)
	}

	for _, id := range ids[:2] {
		task, err := taskRepo.Get(ctx, id)
		if err != nil {
			t.Fatalf("get task: %v", err)
		}
		if !task.IsCompleted {
			t.Fatalf("task %s not completed", id)
		}
		if task.CompletedAt == nil || !task.CompletedAt.Equal(stamp) {
			t.Fatalf("task %s has wrong timestamp: %v", id, task.CompletedAt)
		}
	}

	untouched, err := taskRepo.Get(ctx, ids[2])
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if untouched.IsCompleted {
		t.Fatal("unselected task must stay open")
	}
}

func TestBulkCompleteEmptyIds(t *testing.T) {
	svc, _, _ := newRoutineService(t)

	_, err := svc.BulkComplete(context.Background(), nil, time.Now())
	var verr models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyTemplate(t *testing.T) {
	db := setupDB(t)
	taskRepo := repository.NewTaskRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	child := createChild(t, db)
	svc := NewRoutineService(taskRepo, templateRepo, newHub())

	tpl := createTemplate(t, db, models.Template{
		Name:      "Morning Routine",
		AgeRange:  "3-5",
		Preloaded: true,
		Color:     "#ffaa00",
		Tasks: []models.TemplateTask{
			{Title: "Wake up", TimeSlot: "07:00"},
			{Title: "Brush teeth", TimeSlot: "07:15", Duration: 5},
		},
	})

	ctx := context.Background()
	created, err := svc.ApplyTemplate(ctx, child.Id, tpl.Id, "2026-09-02")
	if err != nil {
		t.Fatalf("apply template: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(created))
	}
	for _, task := range created {
		if task.TemplateId != tpl.Id || task.RoutineName != "Morning Routine" {
			t.Fatalf("task missing template reference: %#v", task)
		}
	}

	view, err := svc.DayTasks(ctx, child.Id, "2026-09-02", "")
	if err != nil {
		t.Fatalf("day tasks: %v", err)
	}
	if len(view.Groups) != 1 || view.Groups[0].Color != "#ffaa00" {
		t.Fatalf("expected one group with the template color: %#v", view.Groups)
	}
}
