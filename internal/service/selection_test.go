package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/nidohq/nido-api/internal/models"
)

type fakeCompleter struct {
	calls [][]string
	fail  error
}

func (f *fakeCompleter) BulkComplete(ctx context.Context, ids []string, completedAt time.Time) (int64, error) {
	if f.fail != nil {
		return 0, f.fail
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	f.calls = append(f.calls, sorted)
	return int64(len(ids)), nil
}

func TestToggleGroupSingleExpansion(t *testing.T) {
	c := NewSelectionController(&fakeCompleter{})

	c.ToggleGroup("T1")
	if key, ok := c.ExpandedGroup(); !ok || key != "T1" {
		t.Fatalf("expected T1 expanded, got %q %v", key, ok)
	}

	c.ToggleGroup("T2")
	if key, ok := c.ExpandedGroup(); !ok || key != "T2" {
		t.Fatalf("expected T2 to replace T1, got %q %v", key, ok)
	}

	c.ToggleGroup("T2")
	if _, ok := c.ExpandedGroup(); ok {
		t.Fatal("expected collapse on second toggle")
	}
}

func TestToggleGroupClearsSelection(t *testing.T) {
	c := NewSelectionController(&fakeCompleter{})
	c.ToggleGroup("T1")
	c.ToggleTask(models.Task{Id: "a", TemplateId: "T1"})
	if len(c.SelectedIds()) != 1 {
		t.Fatalf("expected one selected task, got %v", c.SelectedIds())
	}

	c.ToggleGroup("T1")
	if len(c.SelectedIds()) != 0 {
		t.Fatal("collapsing must clear the selection")
	}

	c.ToggleGroup("T1")
	c.ToggleTask(models.Task{Id: "a", TemplateId: "T1"})
	c.ToggleGroup("T2")
	if len(c.SelectedIds()) != 0 {
		t.Fatal("switching groups must clear the selection")
	}
}

func TestToggleTaskRules(t *testing.T) {
	c := NewSelectionController(&fakeCompleter{})

	// Nothing expanded: selection attempts are ignored.
	c.ToggleTask(models.Task{Id: "a", TemplateId: "T1"})
	if len(c.SelectedIds()) != 0 {
		t.Fatal("selection without an expanded group must be ignored")
	}

	c.ToggleGroup("T1")

	// Completed tasks are display-only.
	c.ToggleTask(models.Task{Id: "done", TemplateId: "T1", IsCompleted: true})
	if len(c.SelectedIds()) != 0 {
		t.Fatal("completed tasks must not be selectable")
	}

	// Tasks from another group are ignored.
	c.ToggleTask(models.Task{Id: "other", TemplateId: "T2"})
	if len(c.SelectedIds()) != 0 {
		t.Fatal("tasks outside the expanded group must be ignored")
	}

	c.ToggleTask(models.Task{Id: "a", TemplateId: "T1"})
	c.ToggleTask(models.Task{Id: "b", TemplateId: "T1"})
	if len(c.SelectedIds()) != 2 {
		t.Fatalf("expected two selected tasks, got %v", c.SelectedIds())
	}

	// Toggling again deselects.
	c.ToggleTask(models.Task{Id: "a", TemplateId: "T1"})
	ids := c.SelectedIds()
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("expected only b selected, got %v", ids)
	}
}

func TestCommitSuccess(t *testing.T) {
	completer := &fakeCompleter{}
	c := NewSelectionController(completer)
	c.ToggleGroup("T1")
	c.ToggleTask(models.Task{Id: "a", TemplateId: "T1"})
	c.ToggleTask(models.Task{Id: "b", TemplateId: "T1"})

	ack, err := c.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if ack.Count != 2 {
		t.Fatalf("expected count 2, got %d", ack.Count)
	}
	if ack.Message != "2 tasks completed" {
		t.Fatalf("unexpected message %q", ack.Message)
	}
	if len(completer.calls) != 1 {
		t.Fatalf("expected one batched call, got %d", len(completer.calls))
	}
	if got := completer.calls[0]; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected committed ids: %v", got)
	}
	if len(c.SelectedIds()) != 0 {
		t.Fatal("selection must be cleared after a successful commit")
	}
	if _, ok := c.ExpandedGroup(); ok {
		t.Fatal("group must collapse after a successful commit")
	}
}

func TestCommitSingularMessage(t *testing.T) {
	c := NewSelectionController(&fakeCompleter{})
	c.ToggleGroup("T1")
	c.ToggleTask(models.Task{Id: "a", TemplateId: "T1"})

	ack, err := c.Commit(context.Background())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if ack.Message != "1 task completed" {
		t.Fatalf("unexpected message %q", ack.Message)
	}
}

func TestCommitFailureKeepsSelection(t *testing.T) {
	completer := &fakeCompleter{fail: errors.New("backend down")}
	c := NewSelectionController(completer)
	c.ToggleGroup("T1")
	c.ToggleTask(models.Task{Id: "a", TemplateId: "T1"})

	if _, err := c.Commit(context.Background()); err == nil {
		t.Fatal("expected commit error")
	}
	if len(c.SelectedIds()) != 1 {
		t.Fatal("failed commit must leave the selection untouched")
	}
	if key, ok := c.ExpandedGroup(); !ok || key != "T1" {
		t.Fatal("failed commit must leave the group expanded")
	}
}

func TestCommitEmptySelection(t *testing.T) {
	c := NewSelectionController(&fakeCompleter{})
	_, err := c.Commit(context.Background())
	var verr models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
