package models

import (
	"strings"
	"time"
)

// Goal tracks a longer-running objective for a child, broken into ordered
// milestones that are ticked off one by one.
type Goal struct {
	Id         string      `json:"id"`
	ChildId    string      `json:"child_id"`
	Title      string      `json:"title"`
	Frequency  string      `json:"frequency,omitempty"`
	StartDate  string      `json:"start_date"`
	Milestones []Milestone `json:"milestones"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type Milestone struct {
	Id     string     `json:"id,omitempty"`
	Title  string     `json:"title"`
	Done   bool       `json:"done"`
	DoneAt *time.Time `json:"done_at,omitempty"`
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(g.ChildId) == "" {
		return ValidationError{Field: "child_id", Message: "child_id is required"}
	}
	if g.StartDate == "" {
		return ValidationError{Field: "start_date", Message: "start date is required"}
	}
	if _, err := time.Parse("2006-01-02", g.StartDate); err != nil {
		return ValidationError{Field: "start_date", Message: "invalid start date, want YYYY-MM-DD"}
	}
	for _, m := range g.Milestones {
		if strings.TrimSpace(m.Title) == "" {
			return ValidationError{Field: "milestones", Message: "milestone title is required"}
		}
	}
	return nil
}

// Remaining counts milestones not yet done.
func (g Goal) Remaining() int {
	n := 0
	for _, m := range g.Milestones {
		if !m.Done {
			n++
		}
	}
	return n
}
