package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/repository"
)

func newTemplateService(t *testing.T) (*TemplateService, *repository.TemplateRepository) {
	t.Helper()
	db := setupDB(t)
	repo := repository.NewTemplateRepository(db)
	return NewTemplateService(repo, newHub()), repo
}

func TestDraftTaskEditing(t *testing.T) {
	draft := NewTemplateDraft()

	draft.AddTask()
	draft.AddTask()
	draft.AddTask()
	draft.UpdateTask(0, models.TemplateTask{Title: "Wake up"})
	draft.UpdateTask(1, models.TemplateTask{Title: "Brush teeth"})
	draft.UpdateTask(2, models.TemplateTask{Title: "Get dressed"})

	draft.RemoveTask(1)
	if len(draft.Tasks) != 2 {
		t.Fatalf("expected 2 tasks after removal, got %d", len(draft.Tasks))
	}
	// Later indices shift down.
	if draft.Tasks[1].Title != "Get dressed" {
		t.Fatalf("unexpected task at index 1: %#v", draft.Tasks[1])
	}

	// Out-of-range operations are ignored.
	draft.UpdateTask(5, models.TemplateTask{Title: "nope"})
	draft.RemoveTask(-1)
	if len(draft.Tasks) != 2 {
		t.Fatalf("out-of-range ops must not change the draft: %#v", draft.Tasks)
	}
}

func TestSaveDraftValidationShortCircuits(t *testing.T) {
	svc, repo := newTemplateService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		draft TemplateDraft
	}{
		{"missing name", TemplateDraft{AgeRange: "3-5", Tasks: []models.TemplateTask{{Title: "Wake up"}}}},
		{"missing age range", TemplateDraft{Name: "Morning", Tasks: []models.TemplateTask{{Title: "Wake up"}}}},
		{"no tasks", TemplateDraft{Name: "Morning", AgeRange: "3-5"}},
		{"only empty tasks", TemplateDraft{Name: "Morning", AgeRange: "3-5", Tasks: []models.TemplateTask{{}, {Title: "  "}}}},
	}

	for _, tc := range cases {
		_, err := svc.SaveDraft(ctx, "user-1", tc.draft)
		var verr models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	// No network call was made: nothing persisted.
	templates, err := repo.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 0 {
		t.Fatalf("validation failures must not persist anything: %#v", templates)
	}
}

func TestSaveDraftInsertThenUpdate(t *testing.T) {
	svc, repo := newTemplateService(t)
	ctx := context.Background()

	draft := TemplateDraft{
		Name:     "Evening",
		AgeRange: "6-8",
		Tasks: []models.TemplateTask{
			{Title: "Dinner"},
			{}, // empty rows are dropped on save
			{Title: "Pajamas"},
		},
	}

	saved, err := svc.SaveDraft(ctx, "user-1", draft)
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if saved.Id == "" || saved.OwnerId != "user-1" || saved.Preloaded {
		t.Fatalf("unexpected saved template: %#v", saved)
	}
	if len(saved.Tasks) != 2 {
		t.Fatalf("expected empty rows dropped, got %#v", saved.Tasks)
	}

	// Full-snapshot update.
	next := DraftFrom(saved)
	next.Name = "Evening Routine"
	next.RemoveTask(0)
	updated, err := svc.SaveDraft(ctx, "user-1", next)
	if err != nil {
		t.Fatalf("save updated draft: %v", err)
	}

	got, err := repo.Get(ctx, updated.Id)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if got.Name != "Evening Routine" || len(got.Tasks) != 1 || got.Tasks[0].Title != "Pajamas" {
		t.Fatalf("snapshot update not applied: %#v", got)
	}
}

func TestSaveDraftRejectsPreloaded(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewTemplateRepository(db)
	svc := NewTemplateService(repo, newHub())

	tpl := createTemplate(t, db, models.Template{
		Name:      "Bedtime",
		AgeRange:  "3-5",
		Preloaded: true,
		Tasks:     []models.TemplateTask{{Title: "Lights out"}},
	})

	draft := DraftFrom(tpl)
	draft.Name = "Hacked"
	_, err := svc.SaveDraft(context.Background(), "user-1", draft)
	var verr models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error editing a preloaded template, got %v", err)
	}
}

func TestResolveTaskEditDirectSave(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewTemplateRepository(db)
	svc := NewTemplateService(repo, newHub())
	ctx := context.Background()

	tpl := createTemplate(t, db, models.Template{
		Name:     "Chores",
		AgeRange: "6-8",
		OwnerId:  "user-1",
		Tasks:    []models.TemplateTask{{Title: "Feed cat"}},
	})

	// Existing task id: update in place.
	edit := tpl.Tasks[0]
	edit.TimeSlot = "17:00"
	resolved, err := svc.ResolveTaskEdit(ctx, "user-1", tpl.Id, edit)
	if err != nil {
		t.Fatalf("resolve edit: %v", err)
	}
	if resolved.Forked || resolved.TemplateId != tpl.Id {
		t.Fatalf("user-owned template must be saved directly: %#v", resolved)
	}

	// No id: append under the same template.
	appended, err := svc.ResolveTaskEdit(ctx, "user-1", tpl.Id, models.TemplateTask{Title: "Water plants"})
	if err != nil {
		t.Fatalf("resolve append: %v", err)
	}
	if appended.Forked || appended.Task.Id == "" {
		t.Fatalf("expected direct append with generated id: %#v", appended)
	}

	got, err := repo.Get(ctx, tpl.Id)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if len(got.Tasks) != 2 || got.Tasks[0].TimeSlot != "17:00" {
		t.Fatalf("direct save not applied: %#v", got.Tasks)
	}
}

func TestResolveTaskEditRejectsForeignTaskId(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewTemplateRepository(db)
	svc := NewTemplateService(repo, newHub())
	ctx := context.Background()

	preloaded := createTemplate(t, db, models.Template{
		Name:      "Morning",
		AgeRange:  "3-5",
		Preloaded: true,
		Tasks:     []models.TemplateTask{{Title: "Wake up", TimeSlot: "07:00"}},
	})
	owned := createTemplate(t, db, models.Template{
		Name:     "Chores",
		AgeRange: "6-8",
		OwnerId:  "user-1",
		Tasks:    []models.TemplateTask{{Title: "Feed cat"}},
	})

	// An edit addressed at the user's own template but carrying a preloaded
	// template's task id must not reach that task.
	edit := preloaded.Tasks[0]
	edit.Title = "Sleep in"
	edit.TimeSlot = "23:59"
	_, err := svc.ResolveTaskEdit(ctx, "user-1", owned.Id, edit)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign task id, got %v", err)
	}

	pristine, err := repo.Get(ctx, preloaded.Id)
	if err != nil {
		t.Fatalf("get preloaded: %v", err)
	}
	if pristine.Tasks[0].Title != "Wake up" || pristine.Tasks[0].TimeSlot != "07:00" {
		t.Fatalf("preloaded template was mutated: %#v", pristine.Tasks[0])
	}
}

func TestForkOnFirstEdit(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewTemplateRepository(db)
	svc := NewTemplateService(repo, newHub())
	ctx := context.Background()

	source := createTemplate(t, db, models.Template{
		Name:      "Morning",
		AgeRange:  "3-5",
		Preloaded: true,
		Color:     "#abc",
		Tasks: []models.TemplateTask{
			{Title: "Wake up", TimeSlot: "07:00"},
			{Title: "Brush teeth", TimeSlot: "07:15"},
			{Title: "Get dressed", TimeSlot: "07:30"},
		},
	})

	edit := source.Tasks[1]
	edit.TimeSlot = "07:20"
	edit.Duration = 3

	resolved, err := svc.ResolveTaskEdit(ctx, "user-1", source.Id, edit)
	if err != nil {
		t.Fatalf("resolve edit: %v", err)
	}
	if !resolved.Forked {
		t.Fatal("first edit of a preloaded template must fork")
	}
	if resolved.TemplateId == source.Id {
		t.Fatal("fork must be a new template row")
	}

	fork, err := repo.FindFork(ctx, source.Id, "user-1")
	if err != nil {
		t.Fatalf("find fork: %v", err)
	}
	if fork.OriginalTemplateId != source.Id || fork.OwnerId != "user-1" || fork.Preloaded {
		t.Fatalf("unexpected fork row: %#v", fork)
	}
	if fork.Name != "Morning" || fork.Color != "#abc" {
		t.Fatalf("fork must copy source metadata: %#v", fork)
	}
	if len(fork.Tasks) != 3 {
		t.Fatalf("fork must copy every sibling task, got %d", len(fork.Tasks))
	}
	if fork.Tasks[1].TimeSlot != "07:20" || fork.Tasks[1].Duration != 3 {
		t.Fatalf("edited task not substituted: %#v", fork.Tasks[1])
	}
	if fork.Tasks[0].TimeSlot != "07:00" || fork.Tasks[2].TimeSlot != "07:30" {
		t.Fatalf("sibling tasks must be unchanged: %#v", fork.Tasks)
	}

	// The preloaded source stays pristine.
	pristine, err := repo.Get(ctx, source.Id)
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if pristine.Tasks[1].TimeSlot != "07:15" {
		t.Fatalf("preloaded template was mutated: %#v", pristine.Tasks[1])
	}
}

func TestForkOnEditIdempotence(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewTemplateRepository(db)
	svc := NewTemplateService(repo, newHub())
	ctx := context.Background()

	source := createTemplate(t, db, models.Template{
		Name:      "Bedtime",
		AgeRange:  "3-5",
		Preloaded: true,
		Tasks: []models.TemplateTask{
			{Title: "Bath", TimeSlot: "19:00"},
			{Title: "Story", TimeSlot: "19:30"},
		},
	})

	first := source.Tasks[0]
	first.TimeSlot = "18:45"
	if _, err := svc.ResolveTaskEdit(ctx, "user-1", source.Id, first); err != nil {
		t.Fatalf("first edit: %v", err)
	}

	second := source.Tasks[0]
	second.TimeSlot = "18:30"
	resolved, err := svc.ResolveTaskEdit(ctx, "user-1", source.Id, second)
	if err != nil {
		t.Fatalf("second edit: %v", err)
	}
	if resolved.Forked {
		t.Fatal("second edit must reuse the existing fork")
	}

	templates, err := repo.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	forks := 0
	for _, tpl := range templates {
		if tpl.OriginalTemplateId == source.Id {
			forks++
		}
	}
	if forks != 1 {
		t.Fatalf("expected exactly one fork, got %d", forks)
	}

	fork, err := repo.FindFork(ctx, source.Id, "user-1")
	if err != nil {
		t.Fatalf("find fork: %v", err)
	}
	if len(fork.Tasks) != 2 {
		t.Fatalf("second edit must not duplicate the task, got %d tasks", len(fork.Tasks))
	}
	if fork.Tasks[0].TimeSlot != "18:30" {
		t.Fatalf("second edit must update in place: %#v", fork.Tasks[0])
	}
}
