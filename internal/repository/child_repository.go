package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nidohq/nido-api/internal/models"
)

type ChildRepository struct {
	db *sql.DB
}

func NewChildRepository(db *sql.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

func (r *ChildRepository) Create(ctx context.Context, c models.Child) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO children (id, name, birthdate, avatar_url, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		c.Id, c.Name, c.Birthdate, c.AvatarURL, mustTime(c.CreatedAt), mustTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

func (r *ChildRepository) Get(ctx context.Context, id string) (models.Child, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, birthdate, avatar_url, created_at, updated_at
	FROM children WHERE id = ?`, id)
	child, err := scanChild(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Child{}, ErrNotFound
		}
		return models.Child{}, fmt.Errorf("get child: %w", err)
	}
	return child, nil
}

func (r *ChildRepository) Update(ctx context.Context, c models.Child) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE children
	SET name = ?, birthdate = ?, avatar_url = ?, updated_at = ?
	WHERE id = ?`,
		c.Name, c.Birthdate, c.AvatarURL, mustTime(c.UpdatedAt), c.Id,
	)
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	return checkRowsAffected(res)
}

func (r *ChildRepository) List(ctx context.Context) ([]models.Child, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, birthdate, avatar_url, created_at, updated_at
	FROM children ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	children := make([]models.Child, 0)
	for rows.Next() {
		child, scanErr := scanChild(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		children = append(children, child)
	}
	return children, rows.Err()
}

func scanChild(s scanner) (models.Child, error) {
	var c models.Child
	var createdAt, updatedAt string
	if err := s.Scan(&c.Id, &c.Name, &c.Birthdate, &c.AvatarURL, &createdAt, &updatedAt); err != nil {
		return models.Child{}, err
	}
	var err error
	if c.CreatedAt, err = parseRequiredTime(createdAt); err != nil {
		return models.Child{}, err
	}
	if c.UpdatedAt, err = parseRequiredTime(updatedAt); err != nil {
		return models.Child{}, err
	}
	return c, nil
}
