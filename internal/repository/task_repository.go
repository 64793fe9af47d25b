package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nidohq/nido-api/internal/models"
)

const taskColumns = `id, child_id, title, description, time_slot, template_id, routine_name,
	priority, duration_minutes, category, date, is_completed, completed_at, created_at, updated_at`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t models.Task) error {
	query := `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.Id, t.ChildId, t.Title, t.Description, t.TimeSlot, t.TemplateId, t.RoutineName,
		string(t.Priority), t.Duration, t.Category, t.Date,
		boolInt(t.IsCompleted), nullTime(t.CompletedAt), mustTime(t.CreatedAt), mustTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, t models.Task) error {
	query := `
	UPDATE tasks
	SET title = ?, description = ?, time_slot = ?, template_id = ?, routine_name = ?,
	    priority = ?, duration_minutes = ?, category = ?, date = ?,
	    is_completed = ?, completed_at = ?, updated_at = ?
	WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.TimeSlot, t.TemplateId, t.RoutineName,
		string(t.Priority), t.Duration, t.Category, t.Date,
		boolInt(t.IsCompleted), nullTime(t.CompletedAt), mustTime(t.UpdatedAt), t.Id,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return checkRowsAffected(res)
}

// ListForDay returns a child's tasks for one date, ordered by time slot
// (empty slots last) and then by creation time. The grouping engine relies
// on this ordering being stable.
func (r *TaskRepository) ListForDay(ctx context.Context, childId, date string) ([]models.Task, error) {
	query := `
	SELECT ` + taskColumns + ` FROM tasks
	WHERE child_id = ? AND date = ?
	ORDER BY time_slot = '', time_slot, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, childId, date)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// BulkComplete marks every task in ids completed with one shared timestamp.
// A single statement, so the update is atomic: either every row is marked or
// none is. Returns the number of rows actually updated.
func (r *TaskRepository) BulkComplete(ctx context.Context, ids []string, completedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, errors.New("repository: empty id set")
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := `
	UPDATE tasks
	SET is_completed = 1, completed_at = ?, updated_at = ?
	WHERE id IN (` + placeholders + `)
	`

	args := make([]any, 0, len(ids)+2)
	stamp := mustTime(completedAt)
	args = append(args, stamp, stamp)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk complete: %w", err)
	}
	return res.RowsAffected()
}

func scanTask(s scanner) (models.Task, error) {
	var t models.Task
	var priority string
	var completedAt sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&t.Id, &t.ChildId, &t.Title, &t.Description, &t.TimeSlot, &t.TemplateId, &t.RoutineName,
		&priority, &t.Duration, &t.Category, &t.Date,
		&t.IsCompleted, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	t.Priority = models.Priority(priority)
	if t.CompletedAt, err = parseNullableTime(completedAt); err != nil {
		return models.Task{}, err
	}
	if t.CreatedAt, err = parseRequiredTime(createdAt); err != nil {
		return models.Task{}, err
	}
	if t.UpdatedAt, err = parseRequiredTime(updatedAt); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
