package models

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a single routine task scheduled for a child on a given day.
// Tasks are created by applying a template or by manual add, and are
// only ever updated afterwards, never hard-deleted.
type Task struct {
	Id          string     `json:"id"`
	ChildId     string     `json:"child_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TimeSlot    string     `json:"time_slot,omitempty"`
	TemplateId  string     `json:"template_id,omitempty"`
	RoutineName string     `json:"routine_name,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Duration    int        `json:"duration_minutes,omitempty"`
	Category    string     `json:"category,omitempty"`
	Date        string     `json:"date"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(t.ChildId) == "" {
		return ValidationError{Field: "child_id", Message: "child_id is required"}
	}
	if t.Date == "" {
		return ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", t.Date)}
	}
	if t.TimeSlot != "" {
		if _, err := time.Parse("15:04", t.TimeSlot); err != nil {
			return ValidationError{Field: "time_slot", Message: fmt.Sprintf("invalid time slot %q, want HH:MM", t.TimeSlot)}
		}
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority %q", t.Priority)}
	}
	if t.Duration < 0 {
		return ValidationError{Field: "duration_minutes", Message: "duration must not be negative"}
	}
	if t.IsCompleted && t.CompletedAt == nil {
		return ValidationError{Field: "completed_at", Message: "completed_at is required for a completed task"}
	}
	if !t.IsCompleted && t.CompletedAt != nil {
		return ValidationError{Field: "completed_at", Message: "completed_at must be empty for an open task"}
	}
	return nil
}
