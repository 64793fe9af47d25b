package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nidohq/nido-api/internal/models"
)

const templateColumns = `id, name, description, age_range, notes, color, icon,
	preloaded, original_template_id, owner_id, created_at, updated_at`

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create inserts the template row and its full task list in one transaction,
// so a fork never exists half-copied.
func (r *TemplateRepository) Create(ctx context.Context, tpl models.Template) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create template: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO templates (`+templateColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.Id, tpl.Name, tpl.Description, tpl.AgeRange, tpl.Notes, tpl.Color, tpl.Icon,
		boolInt(tpl.Preloaded), tpl.OriginalTemplateId, tpl.OwnerId,
		mustTime(tpl.CreatedAt), mustTime(tpl.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}

	if err := insertTemplateTasks(ctx, tx, tpl.Id, tpl.Tasks); err != nil {
		return err
	}

	return tx.Commit()
}

// Update replaces the template row and its entire task list with the given
// snapshot. The working copy is never partially persisted.
func (r *TemplateRepository) Update(ctx context.Context, tpl models.Template) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update template: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
	UPDATE templates
	SET name = ?, description = ?, age_range = ?, notes = ?, color = ?, icon = ?, updated_at = ?
	WHERE id = ?`,
		tpl.Name, tpl.Description, tpl.AgeRange, tpl.Notes, tpl.Color, tpl.Icon,
		mustTime(tpl.UpdatedAt), tpl.Id,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM template_tasks WHERE template_id = ?`, tpl.Id); err != nil {
		return fmt.Errorf("clear template tasks: %w", err)
	}
	if err := insertTemplateTasks(ctx, tx, tpl.Id, tpl.Tasks); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *TemplateRepository) Get(ctx context.Context, id string) (models.Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Template{}, ErrNotFound
		}
		return models.Template{}, fmt.Errorf("get template: %w", err)
	}

	tpl.Tasks, err = r.listTasks(ctx, tpl.Id)
	if err != nil {
		return models.Template{}, err
	}
	return tpl, nil
}

// List returns every preloaded template plus the ones owned by ownerId,
// preloaded first, each with its task list.
func (r *TemplateRepository) List(ctx context.Context, ownerId string) ([]models.Template, error) {
	query := `
	SELECT ` + templateColumns + ` FROM templates
	WHERE preloaded = 1 OR owner_id = ?
	ORDER BY preloaded DESC, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, ownerId)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]models.Template, 0)
	for rows.Next() {
		tpl, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range templates {
		templates[i].Tasks, err = r.listTasks(ctx, templates[i].Id)
		if err != nil {
			return nil, err
		}
	}
	return templates, nil
}

// FindFork looks up the user's private copy of a preloaded template.
func (r *TemplateRepository) FindFork(ctx context.Context, originalId, ownerId string) (models.Template, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT `+templateColumns+` FROM templates
	WHERE original_template_id = ? AND owner_id = ?`,
		originalId, ownerId,
	)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Template{}, ErrNotFound
		}
		return models.Template{}, fmt.Errorf("find fork: %w", err)
	}

	tpl.Tasks, err = r.listTasks(ctx, tpl.Id)
	if err != nil {
		return models.Template{}, err
	}
	return tpl, nil
}

// FindTaskByTitle locates a task inside a template by exact title match.
func (r *TemplateRepository) FindTaskByTitle(ctx context.Context, templateId, title string) (models.TemplateTask, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, title, icon, time_slot, duration_minutes FROM template_tasks
	WHERE template_id = ? AND title = ?
	ORDER BY position LIMIT 1`,
		templateId, title,
	)

	var t models.TemplateTask
	err := row.Scan(&t.Id, &t.Title, &t.Icon, &t.TimeSlot, &t.Duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TemplateTask{}, ErrNotFound
		}
		return models.TemplateTask{}, fmt.Errorf("find template task: %w", err)
	}
	return t, nil
}

// AppendTask adds a task at the end of a template's task list.
func (r *TemplateRepository) AppendTask(ctx context.Context, templateId string, t models.TemplateTask) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO template_tasks (id, template_id, position, title, icon, time_slot, duration_minutes)
	VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM template_tasks WHERE template_id = ?), ?, ?, ?, ?)`,
		t.Id, templateId, templateId, t.Title, t.Icon, t.TimeSlot, t.Duration,
	)
	if err != nil {
		return fmt.Errorf("append template task: %w", err)
	}
	return nil
}

// UpdateTask rewrites one task row in place, keeping its position. The
// statement is scoped to the template, so a task id belonging to another
// template yields ErrNotFound instead of touching that template.
func (r *TemplateRepository) UpdateTask(ctx context.Context, templateId string, t models.TemplateTask) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE template_tasks
	SET title = ?, icon = ?, time_slot = ?, duration_minutes = ?
	WHERE id = ? AND template_id = ?`,
		t.Title, t.Icon, t.TimeSlot, t.Duration, t.Id, templateId,
	)
	if err != nil {
		return fmt.Errorf("update template task: %w", err)
	}
	return checkRowsAffected(res)
}

// ExistsPreloadedByName reports whether a preloaded template with the given
// name is already present. Used by the seeder to stay restart-safe.
func (r *TemplateRepository) ExistsPreloadedByName(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM templates WHERE preloaded = 1 AND name = ?`, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check preloaded template: %w", err)
	}
	return n > 0, nil
}

func (r *TemplateRepository) listTasks(ctx context.Context, templateId string) ([]models.TemplateTask, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, title, icon, time_slot, duration_minutes FROM template_tasks
	WHERE template_id = ?
	ORDER BY position`,
		templateId,
	)
	if err != nil {
		return nil, fmt.Errorf("list template tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.TemplateTask, 0)
	for rows.Next() {
		var t models.TemplateTask
		if err := rows.Scan(&t.Id, &t.Title, &t.Icon, &t.TimeSlot, &t.Duration); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func insertTemplateTasks(ctx context.Context, tx *sql.Tx, templateId string, tasks []models.TemplateTask) error {
	for i, t := range tasks {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO template_tasks (id, template_id, position, title, icon, time_slot, duration_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.Id, templateId, i, t.Title, t.Icon, t.TimeSlot, t.Duration,
		)
		if err != nil {
			return fmt.Errorf("insert template task %d: %w", i, err)
		}
	}
	return nil
}

func scanTemplate(s scanner) (models.Template, error) {
	var tpl models.Template
	var createdAt, updatedAt string

	err := s.Scan(
		&tpl.Id, &tpl.Name, &tpl.Description, &tpl.AgeRange, &tpl.Notes, &tpl.Color, &tpl.Icon,
		&tpl.Preloaded, &tpl.OriginalTemplateId, &tpl.OwnerId, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Template{}, err
	}

	if tpl.CreatedAt, err = parseRequiredTime(createdAt); err != nil {
		return models.Template{}, err
	}
	if tpl.UpdatedAt, err = parseRequiredTime(updatedAt); err != nil {
		return models.Template{}, err
	}
	return tpl, nil
}
