package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nidohq/nido-api/internal/blob"
	"github.com/nidohq/nido-api/internal/models"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
	"github.com/nidohq/nido-api/internal/service"
)

func setupExpenseHandler(t *testing.T) (*ExpenseHandler, models.Expense) {
	t.Helper()
	dir := t.TempDir()

	db, err := repository.InitDB(filepath.Join(dir, "nido-test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	blobs, err := blob.NewStore(filepath.Join(dir, "blobs"), "http://localhost:8080")
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	svc := service.NewExpenseService(
		repository.NewExpenseRepository(db),
		repository.NewPaymentRepository(db),
		blobs,
		realtime.NewHub(),
	)
	expense, err := svc.Create(context.Background(), models.Expense{
		Description:  "Groceries",
		AmountCents:  1000,
		PayerId:      "parent-1",
		Participants: []string{"parent-1", "parent-2"},
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return NewExpenseHandler(svc), expense
}

func TestRecordPaymentWithoutReceipt(t *testing.T) {
	handler, expense := setupExpenseHandler(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	form.WriteField("payer_id", "parent-2")
	form.WriteField("amount_cents", "500")
	form.Close()

	r := httptest.NewRequest(http.MethodPost, "/expenses/"+expense.Id+"/payments", &body)
	r.Header.Set("Content-Type", form.FormDataContentType())
	r.SetPathValue("id", expense.Id)
	w := httptest.NewRecorder()

	handler.RecordPayment(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Payment models.Payment `json:"payment"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Payment.AmountCents != 500 || resp.Payment.ReceiptURL != "" {
		t.Fatalf("unexpected payment: %#v", resp.Payment)
	}
}

func TestRecordPaymentWithReceipt(t *testing.T) {
	handler, expense := setupExpenseHandler(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	form.WriteField("payer_id", "parent-2")
	form.WriteField("amount_cents", "500")
	part, err := form.CreateFormFile("receipt", "receipt.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("jpeg bytes"))
	form.Close()

	r := httptest.NewRequest(http.MethodPost, "/expenses/"+expense.Id+"/payments", &body)
	r.Header.Set("Content-Type", form.FormDataContentType())
	r.SetPathValue("id", expense.Id)
	w := httptest.NewRecorder()

	handler.RecordPayment(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Payment models.Payment `json:"payment"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Payment.ReceiptURL == "" || !strings.Contains(resp.Payment.ReceiptURL, "receipt.jpg") {
		t.Fatalf("receipt not attached: %#v", resp.Payment)
	}
}

func TestRecordPaymentRejectsMalformedForm(t *testing.T) {
	handler, expense := setupExpenseHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/expenses/"+expense.Id+"/payments",
		strings.NewReader(`{"payer_id":"parent-2"}`))
	r.Header.Set("Content-Type", "application/json")
	r.SetPathValue("id", expense.Id)
	w := httptest.NewRecorder()

	handler.RecordPayment(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}
