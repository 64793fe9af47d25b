package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nidohq/nido-api/internal/blob"
	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
)

type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	paymentRepo *repository.PaymentRepository
	blobs       *blob.Store
	hub         *realtime.Hub
}

func NewExpenseService(
	expenseRepo *repository.ExpenseRepository,
	paymentRepo *repository.PaymentRepository,
	blobs *blob.Store,
	hub *realtime.Hub,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		paymentRepo: paymentRepo,
		blobs:       blobs,
		hub:         hub,
	}
}

func (s *ExpenseService) Create(ctx context.Context, e models.Expense) (models.Expense, error) {
	e.Id = uuid.NewString()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := e.Validate(); err != nil {
		return models.Expense{}, err
	}
	if err := s.expenseRepo.Create(ctx, e); err != nil {
		return models.Expense{}, err
	}

	s.hub.Publish(realtime.Event{Collection: "expenses", Action: realtime.ActionInsert, Id: e.Id, Payload: e})
	return e, nil
}

func (s *ExpenseService) List(ctx context.Context) ([]models.Expense, error) {
	return s.expenseRepo.List(ctx)
}

// Shares computes the cost-share split of an expense for its participants.
func (s *ExpenseService) Shares(ctx context.Context, expenseId string) ([]models.Share, error) {
	expense, err := s.expenseRepo.Get(ctx, expenseId)
	if err != nil {
		return nil, err
	}
	return Split(expense.AmountCents, expense.Participants), nil
}

// Split divides amountCents evenly across participants in integer cents.
// Leftover cents go to the earliest participants, one each, so the shares
// always sum exactly to the total.
func Split(amountCents int64, participants []string) []models.Share {
	if len(participants) == 0 {
		return nil
	}

	n := int64(len(participants))
	base := amountCents / n
	remainder := amountCents % n

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		share := base
		if int64(i) < remainder {
			share++
		}
		shares[i] = models.Share{ParticipantId: p, AmountCents: share}
	}
	return shares
}

// RecordPayment inserts the payment, uploads the optional receipt, then
// attaches it. When the receipt stage fails the payment row is deleted
// again, so no payment is left pointing at a missing attachment.
func (s *ExpenseService) RecordPayment(ctx context.Context, p models.Payment, receiptName string, receipt io.Reader) (models.Payment, error) {
	p.Id = uuid.NewString()
	p.ReceiptPath = ""
	p.ReceiptURL = ""
	p.CreatedAt = time.Now().UTC()

	if err := p.Validate(); err != nil {
		return models.Payment{}, err
	}
	if _, err := s.expenseRepo.Get(ctx, p.ExpenseId); err != nil {
		return models.Payment{}, err
	}

	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return models.Payment{}, err
	}

	if receipt != nil {
		path, _, err := s.blobs.Put("receipts", p.Id+"-"+receiptName, receipt)
		if err != nil {
			return models.Payment{}, s.compensate(ctx, p.Id, fmt.Errorf("upload receipt: %w", err))
		}
		url := s.blobs.PublicURL(path)
		if err := s.paymentRepo.SetReceipt(ctx, p.Id, path, url); err != nil {
			_ = s.blobs.Remove(path)
			return models.Payment{}, s.compensate(ctx, p.Id, fmt.Errorf("attach receipt: %w", err))
		}
		p.ReceiptPath = path
		p.ReceiptURL = url
	}

	s.hub.Publish(realtime.Event{Collection: "payments", Action: realtime.ActionInsert, Id: p.Id, Payload: p})
	return p, nil
}

func (s *ExpenseService) ListPayments(ctx context.Context, expenseId string) ([]models.Payment, error) {
	return s.paymentRepo.ListByExpense(ctx, expenseId)
}

func (s *ExpenseService) compensate(ctx context.Context, paymentId string, cause error) error {
	if err := s.paymentRepo.Delete(ctx, paymentId); err != nil {
		return fmt.Errorf("%w (payment %s could not be rolled back: %v)", cause, paymentId, err)
	}
	return cause
}
