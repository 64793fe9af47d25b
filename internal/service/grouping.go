package service

import "github.com/nidohq/nido-api/internal/models"

// UnassignedGroupKey buckets tasks that carry neither a template reference
// nor a routine name.
const UnassignedGroupKey = "unassigned"

// DefaultGroupColor is used when no template matches a group.
const DefaultGroupColor = "#CCCCCC"

const defaultGroupName = "Routine"

// Group is a derived display bucket of same-routine tasks. It is recomputed
// from the flat task list on every request and never persisted.
type Group struct {
	Key   string        `json:"key"`
	Name  string        `json:"name"`
	Color string        `json:"color"`
	Tasks []models.Task `json:"tasks"`
}

// GroupTasks partitions a day's tasks into ordered groups. The key falls
// back template id -> routine name -> "unassigned"; the display name and
// color come from the first task seen for the key and its matching
// template. Group order is first-seen, task order is input order. Pure and
// deterministic: identical inputs always produce identical output.
func GroupTasks(tasks []models.Task, templates []models.Template) []Group {
	colors := make(map[string]string, len(templates))
	for _, tpl := range templates {
		colors[tpl.Id] = tpl.Color
	}

	index := make(map[string]int)
	groups := make([]Group, 0)

	for _, task := range tasks {
		key := task.TemplateId
		if key == "" {
			key = task.RoutineName
		}
		if key == "" {
			key = UnassignedGroupKey
		}

		i, seen := index[key]
		if !seen {
			name := task.RoutineName
			if name == "" {
				name = defaultGroupName
			}
			color := DefaultGroupColor
			if task.TemplateId != "" {
				if c, ok := colors[task.TemplateId]; ok && c != "" {
					color = c
				}
			}
			index[key] = len(groups)
			groups = append(groups, Group{Key: key, Name: name, Color: color})
			i = len(groups) - 1
		}
		groups[i].Tasks = append(groups[i].Tasks, task)
	}

	return groups
}
