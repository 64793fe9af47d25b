package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nidohq/nido-api/internal/models"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e models.Expense) error {
	participants, err := json.Marshal(e.Participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
	INSERT INTO expenses (id, description, amount_cents, payer_id, participants, date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Id, e.Description, e.AmountCents, e.PayerId, string(participants), e.Date,
		mustTime(e.CreatedAt), mustTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id string) (models.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, description, amount_cents, payer_id, participants, date, created_at, updated_at
	FROM expenses WHERE id = ?`, id)
	expense, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Expense{}, ErrNotFound
		}
		return models.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return expense, nil
}

func (r *ExpenseRepository) List(ctx context.Context) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, description, amount_cents, payer_id, participants, date, created_at, updated_at
	FROM expenses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		expense, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

func scanExpense(s scanner) (models.Expense, error) {
	var e models.Expense
	var participants string
	var createdAt, updatedAt string
	if err := s.Scan(&e.Id, &e.Description, &e.AmountCents, &e.PayerId, &participants, &e.Date, &createdAt, &updatedAt); err != nil {
		return models.Expense{}, err
	}
	if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
		return models.Expense{}, fmt.Errorf("decode participants: %w", err)
	}
	var err error
	if e.CreatedAt, err = parseRequiredTime(createdAt); err != nil {
		return models.Expense{}, err
	}
	if e.UpdatedAt, err = parseRequiredTime(updatedAt); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}
