package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/repository"
)

// templateSpec mirrors one template entry in the seed file. Task entries
// may be bare strings or structured objects; both are coerced into
// models.TemplateTask before anything else sees them.
type templateSpec struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	AgeRange    string     `yaml:"age_range"`
	Notes       string     `yaml:"notes"`
	Color       string     `yaml:"color"`
	Icon        string     `yaml:"icon"`
	Tasks       []taskSpec `yaml:"tasks"`
}

type taskSpec struct {
	Title    string `yaml:"title"`
	Icon     string `yaml:"icon"`
	TimeSlot string `yaml:"time_slot"`
	Duration int    `yaml:"duration_minutes"`
}

func (t *taskSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var title string
		if err := node.Decode(&title); err != nil {
			return err
		}
		*t = taskSpec{Title: title}
		return nil
	}
	type plain taskSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = taskSpec(p)
	return nil
}

// LoadFile seeds preloaded templates from a YAML file. Templates whose name
// is already present are skipped, so reseeding on every start is safe.
// Returns the number of templates inserted.
func LoadFile(ctx context.Context, repo *repository.TemplateRepository, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var specs []templateSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	inserted := 0
	for _, spec := range specs {
		exists, err := repo.ExistsPreloadedByName(ctx, spec.Name)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}

		tpl := toTemplate(spec)
		if err := tpl.Validate(); err != nil {
			return inserted, fmt.Errorf("seed template %q: %w", spec.Name, err)
		}
		if err := repo.Create(ctx, tpl); err != nil {
			return inserted, fmt.Errorf("seed template %q: %w", spec.Name, err)
		}
		inserted++
	}
	return inserted, nil
}

func toTemplate(spec templateSpec) models.Template {
	now := time.Now().UTC()
	tpl := models.Template{
		Id:          uuid.NewString(),
		Name:        spec.Name,
		Description: spec.Description,
		AgeRange:    spec.AgeRange,
		Notes:       spec.Notes,
		Color:       spec.Color,
		Icon:        spec.Icon,
		Preloaded:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, t := range spec.Tasks {
		tpl.Tasks = append(tpl.Tasks, models.TemplateTask{
			Id:       uuid.NewString(),
			Title:    t.Title,
			Icon:     t.Icon,
			TimeSlot: t.TimeSlot,
			Duration: t.Duration,
		})
	}
	return tpl
}
