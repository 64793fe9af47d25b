package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Template is a reusable routine definition. Preloaded templates ship with
// the system and are immutable from a user's perspective: edits always land
// in a user-owned fork that points back via OriginalTemplateId.
type Template struct {
	Id                 string         `json:"id"`
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	AgeRange           string         `json:"age_range"`
	Notes              string         `json:"notes,omitempty"`
	Color              string         `json:"color,omitempty"`
	Icon               string         `json:"icon,omitempty"`
	Preloaded          bool           `json:"preloaded"`
	OriginalTemplateId string         `json:"original_template_id,omitempty"`
	OwnerId            string         `json:"owner_id,omitempty"`
	Tasks              []TemplateTask `json:"tasks"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// TemplateTask is one entry of a template's ordered task list.
type TemplateTask struct {
	Id       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Icon     string `json:"icon,omitempty"`
	TimeSlot string `json:"time_slot,omitempty"`
	Duration int    `json:"duration_minutes,omitempty"`
}

func (t TemplateTask) IsEmpty() bool {
	return strings.TrimSpace(t.Title) == ""
}

// UnmarshalJSON accepts either a bare string ("Brush teeth") or a structured
// object, so callers and seed files can use the short form. Internal logic
// only ever sees the structured shape.
func (t *TemplateTask) UnmarshalJSON(data []byte) error {
	var title string
	if err := json.Unmarshal(data, &title); err == nil {
		*t = TemplateTask{Title: title}
		return nil
	}
	type plain TemplateTask
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = TemplateTask(p)
	return nil
}

func (tpl Template) Validate() error {
	if strings.TrimSpace(tpl.Name) == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(tpl.AgeRange) == "" {
		return ValidationError{Field: "age_range", Message: "age range is required"}
	}
	tasks := 0
	for _, task := range tpl.Tasks {
		if !task.IsEmpty() {
			tasks++
		}
	}
	if tasks == 0 {
		return ValidationError{Field: "tasks", Message: "at least one task is required"}
	}
	if tpl.Preloaded && tpl.OwnerId != "" {
		return ValidationError{Field: "owner_id", Message: "a preloaded template has no owner"}
	}
	return nil
}
