package models

import (
	"strings"
	"time"
)

// Expense is a shared family cost split across participants. Amounts are
// integer cents so shares can be distributed without float drift.
type Expense struct {
	Id           string    `json:"id"`
	Description  string    `json:"description"`
	AmountCents  int64     `json:"amount_cents"`
	PayerId      string    `json:"payer_id"`
	Participants []string  `json:"participants"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Share is one participant's derived portion of an expense. Never persisted.
type Share struct {
	ParticipantId string `json:"participant_id"`
	AmountCents   int64  `json:"amount_cents"`
}

// Payment settles (part of) an expense, optionally carrying an uploaded
// receipt attachment.
type Payment struct {
	Id          string    `json:"id"`
	ExpenseId   string    `json:"expense_id"`
	PayerId     string    `json:"payer_id"`
	AmountCents int64     `json:"amount_cents"`
	ReceiptPath string    `json:"receipt_path,omitempty"`
	ReceiptURL  string    `json:"receipt_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ValidationError{Field: "description", Message: "description is required"}
	}
	if e.AmountCents <= 0 {
		return ValidationError{Field: "amount_cents", Message: "amount must be positive"}
	}
	if strings.TrimSpace(e.PayerId) == "" {
		return ValidationError{Field: "payer_id", Message: "payer_id is required"}
	}
	if len(e.Participants) == 0 {
		return ValidationError{Field: "participants", Message: "at least one participant is required"}
	}
	if e.Date != "" {
		if _, err := time.Parse("2006-01-02", e.Date); err != nil {
			return ValidationError{Field: "date", Message: "invalid date, want YYYY-MM-DD"}
		}
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.ExpenseId) == "" {
		return ValidationError{Field: "expense_id", Message: "expense_id is required"}
	}
	if strings.TrimSpace(p.PayerId) == "" {
		return ValidationError{Field: "payer_id", Message: "payer_id is required"}
	}
	if p.AmountCents <= 0 {
		return ValidationError{Field: "amount_cents", Message: "amount must be positive"}
	}
	return nil
}
