package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/service"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var expense models.Expense
	if !decodeBody(w, r, &expense) {
		return
	}

	created, err := h.expenseService.Create(r.Context(), expense)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"expense": created})
}

func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

// GetShares returns the cost-share split for one expense.
func (h *ExpenseHandler) GetShares(w http.ResponseWriter, r *http.Request) {
	shares, err := h.expenseService.Shares(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shares": shares})
}

// RecordPayment accepts a multipart form: payer_id and amount_cents fields
// plus an optional receipt file that is uploaded and attached.
func (h *ExpenseHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}

	amount, err := strconv.ParseInt(r.FormValue("amount_cents"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount_cents"})
		return
	}

	payment := models.Payment{
		ExpenseId:   r.PathValue("id"),
		PayerId:     r.FormValue("payer_id"),
		AmountCents: amount,
	}

	var receipt io.Reader
	receiptName := ""
	file, header, err := r.FormFile("receipt")
	switch {
	case err == nil:
		defer file.Close()
		receipt = file
		receiptName = header.Filename
	case !errors.Is(err, http.ErrMissingFile):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid receipt: " + err.Error()})
		return
	}

	recorded, err := h.expenseService.RecordPayment(r.Context(), payment, receiptName, receipt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"payment": recorded})
}

func (h *ExpenseHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.expenseService.ListPayments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}
