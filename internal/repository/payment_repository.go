package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nidohq/nido-api/internal/models"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p models.Payment) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO payments (id, expense_id, payer_id, amount_cents, receipt_path, receipt_url, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Id, p.ExpenseId, p.PayerId, p.AmountCents, p.ReceiptPath, p.ReceiptURL, mustTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (models.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, expense_id, payer_id, amount_cents, receipt_path, receipt_url, created_at
	FROM payments WHERE id = ?`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, ErrNotFound
		}
		return models.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

// SetReceipt attaches an uploaded receipt to an existing payment row.
func (r *PaymentRepository) SetReceipt(ctx context.Context, id, path, url string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET receipt_path = ?, receipt_url = ? WHERE id = ?`,
		path, url, id,
	)
	if err != nil {
		return fmt.Errorf("set receipt: %w", err)
	}
	return checkRowsAffected(res)
}

// Delete removes a payment row. Used as the compensating step when a later
// stage of the record-payment sequence fails.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return checkRowsAffected(res)
}

func (r *PaymentRepository) ListByExpense(ctx context.Context, expenseId string) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, expense_id, payer_id, amount_cents, receipt_path, receipt_url, created_at
	FROM payments WHERE expense_id = ? ORDER BY created_at`, expenseId)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		payment, scanErr := scanPayment(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func scanPayment(s scanner) (models.Payment, error) {
	var p models.Payment
	var createdAt string
	if err := s.Scan(&p.Id, &p.ExpenseId, &p.PayerId, &p.AmountCents, &p.ReceiptPath, &p.ReceiptURL, &createdAt); err != nil {
		return models.Payment{}, err
	}
	var err error
	if p.CreatedAt, err = parseRequiredTime(createdAt); err != nil {
		return models.Payment{}, err
	}
	return p, nil
}
