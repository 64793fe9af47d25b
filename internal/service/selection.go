package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/nidohq/nido-api/internal/models"
)

// BulkCompleter commits a bulk completion: every task in ids gets the
// completed flag and the same timestamp, as one batched request.
type BulkCompleter interface {
	BulkComplete(ctx context.Context, ids []string, completedAt time.Time) (int64, error)
}

// Acknowledgment is returned after a successful commit so callers can show
// a celebratory message carrying a human-readable count.
type Acknowledgment struct {
	Count       int64     `json:"count"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completed_at"`
}

func NewAcknowledgment(count int64, completedAt time.Time) Acknowledgment {
	return Acknowledgment{
		Count:       count,
		Message:     fmt.Sprintf("%s completed", english.Plural(int(count), "task", "")),
		CompletedAt: completedAt,
	}
}

// SelectionController tracks which routine group is expanded and which of
// its tasks are selected for bulk completion. At most one group is expanded
// at a time, and the selection never outlives the group it was made in:
// collapsing or switching groups clears it.
type SelectionController struct {
	completer BulkCompleter

	expandedKey string
	expanded    bool
	selected    map[string]bool
}

func NewSelectionController(completer BulkCompleter) *SelectionController {
	return &SelectionController{
		completer: completer,
		selected:  make(map[string]bool),
	}
}

// ExpandedGroup reports the currently expanded group key, if any.
func (c *SelectionController) ExpandedGroup() (string, bool) {
	return c.expandedKey, c.expanded
}

// SelectedIds returns the selected task ids in no particular order.
func (c *SelectionController) SelectedIds() []string {
	ids := make([]string, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	return ids
}

// ToggleGroup expands key, or collapses it when it is already expanded.
// Either way any previous selection is cleared.
func (c *SelectionController) ToggleGroup(key string) {
	if c.expanded && c.expandedKey == key {
		c.expanded = false
		c.expandedKey = ""
	} else {
		c.expanded = true
		c.expandedKey = key
	}
	c.clearSelection()
}

// ToggleTask adds the task to the selection, or removes it when already
// selected. Completed tasks are display-only and never enter the selection;
// tasks outside the expanded group are ignored.
func (c *SelectionController) ToggleTask(task models.Task) {
	if task.IsCompleted || !c.expanded {
		return
	}
	if groupKey(task) != c.expandedKey {
		return
	}
	if c.selected[task.Id] {
		delete(c.selected, task.Id)
	} else {
		c.selected[task.Id] = true
	}
}

// Commit completes every selected task as one batched update sharing one
// timestamp. On success the selection is cleared and the group collapses;
// on failure both are left untouched so the user can retry.
func (c *SelectionController) Commit(ctx context.Context) (Acknowledgment, error) {
	if len(c.selected) == 0 {
		return Acknowledgment{}, models.ValidationError{Field: "selection", Message: "no tasks selected"}
	}

	now := time.Now().UTC()
	count, err := c.completer.BulkComplete(ctx, c.SelectedIds(), now)
	if err != nil {
		return Acknowledgment{}, fmt.Errorf("commit completion: %w", err)
	}

	c.clearSelection()
	c.expanded = false
	c.expandedKey = ""

	return NewAcknowledgment(count, now), nil
}

func (c *SelectionController) clearSelection() {
	c.selected = make(map[string]bool)
}

func groupKey(task models.Task) string {
	if task.TemplateId != "" {
		return task.TemplateId
	}
	if task.RoutineName != "" {
		return task.RoutineName
	}
	return UnassignedGroupKey
}
