package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nidohq/nido-api/internal/models"
)

type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Create(ctx context.Context, g models.Goal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create goal: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO goals (id, child_id, title, frequency, start_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.Id, g.ChildId, g.Title, g.Frequency, g.StartDate,
		mustTime(g.CreatedAt), mustTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}

	for i, m := range g.Milestones {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO milestones (id, goal_id, position, title, done, done_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
			m.Id, g.Id, i, m.Title, boolInt(m.Done), nullTime(m.DoneAt),
		)
		if err != nil {
			return fmt.Errorf("insert milestone %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *GoalRepository) Get(ctx context.Context, id string) (models.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, child_id, title, frequency, start_date, created_at, updated_at
	FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Goal{}, ErrNotFound
		}
		return models.Goal{}, fmt.Errorf("get goal: %w", err)
	}

	goal.Milestones, err = r.listMilestones(ctx, goal.Id)
	if err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (r *GoalRepository) ListByChild(ctx context.Context, childId string) ([]models.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, child_id, title, frequency, start_date, created_at, updated_at
	FROM goals WHERE child_id = ? ORDER BY created_at`, childId)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		goal, scanErr := scanGoal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range goals {
		goals[i].Milestones, err = r.listMilestones(ctx, goals[i].Id)
		if err != nil {
			return nil, err
		}
	}
	return goals, nil
}

func (r *GoalRepository) UpdateMilestone(ctx context.Context, m models.Milestone) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE milestones SET done = ?, done_at = ? WHERE id = ?`,
		boolInt(m.Done), nullTime(m.DoneAt), m.Id,
	)
	if err != nil {
		return fmt.Errorf("update milestone: %w", err)
	}
	return checkRowsAffected(res)
}

func (r *GoalRepository) listMilestones(ctx context.Context, goalId string) ([]models.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, title, done, done_at FROM milestones
	WHERE goal_id = ? ORDER BY position`, goalId)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	milestones := make([]models.Milestone, 0)
	for rows.Next() {
		var m models.Milestone
		var doneAt sql.NullString
		if err := rows.Scan(&m.Id, &m.Title, &m.Done, &doneAt); err != nil {
			return nil, err
		}
		if m.DoneAt, err = parseNullableTime(doneAt); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func scanGoal(s scanner) (models.Goal, error) {
	var g models.Goal
	var createdAt, updatedAt string
	if err := s.Scan(&g.Id, &g.ChildId, &g.Title, &g.Frequency, &g.StartDate, &createdAt, &updatedAt); err != nil {
		return models.Goal{}, err
	}
	var err error
	if g.CreatedAt, err = parseRequiredTime(createdAt); err != nil {
		return models.Goal{}, err
	}
	if g.UpdatedAt, err = parseRequiredTime(updatedAt); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}
