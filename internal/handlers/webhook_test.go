package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/voltride/voltride-backend/internal/models"
	"github.com/voltride/voltride-backend/internal/payment"
)

type fakeDeduper struct {
	first bool
	err   error
	seen  []string
}

func (f *fakeDeduper) FirstDelivery(ctx context.Context, gatewayID string) (bool, error) {
	f.seen = append(f.seen, gatewayID)
	return f.first, f.err
}

type fakeReconciler struct {
	result *payment.Result
	err    error
	codes  []string
	events []payment.Event
}

func (f *fakeReconciler) Reconcile(ctx context.Context, code string, ev payment.Event) (*payment.Result, error) {
	f.codes = append(f.codes, code)
	f.events = append(f.events, ev)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func webhookBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":             91207,
		"gateway":        "MBBank",
		"content":        content,
		"transferType":   "in",
		"transferAmount": 500000,
		"referenceCode":  "FT22001",
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func postWebhook(handler gin.HandlerFunc, authHeader string, body []byte) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/payments/webhook", handler)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func settledBooking() *models.Booking {
	b := &models.Booking{
		Code:          "ORD1234567",
		Status:        models.BookingStatusConfirmed,
		PaymentStatus: models.PaymentStatusPaidFull,
	}
	b.ID = 7
	return b
}

func TestPaymentWebhookRejectsBadAPIKey(t *testing.T) {
	auth := payment.NewAuthenticator("SECRET")
	rec := &fakeReconciler{}
	handler := PaymentWebhook(auth, nil, rec, nil)

	w := postWebhook(handler, "Apikey WRONG", webhookBody(t, "ORD1234567"))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if len(rec.codes) != 0 {
		t.Error("unauthenticated delivery must not reach the reconciler")
	}
}

func TestPaymentWebhookRejectsMalformedBody(t *testing.T) {
	auth := payment.NewAuthenticator("SECRET")
	handler := PaymentWebhook(auth, nil, &fakeReconciler{}, nil)

	w := postWebhook(handler, "Apikey SECRET", []byte("{not json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestPaymentWebhookRejectsMemoWithoutCode(t *testing.T) {
	auth := payment.NewAuthenticator("SECRET")
	rec := &fakeReconciler{}
	handler := PaymentWebhook(auth, nil, rec, nil)

	w := postWebhook(handler, "Apikey SECRET", webhookBody(t, "chuyen khoan khong co ma"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if len(rec.codes) != 0 {
		t.Error("delivery without a booking code must not reach the reconciler")
	}
}

func TestPaymentWebhookAppliedSettlement(t *testing.T) {
	auth := payment.NewAuthenticator("SECRET")
	rec := &fakeReconciler{result: &payment.Result{
		Outcome: payment.OutcomeApplied,
		Booking: settledBooking(),
	}}
	handler := PaymentWebhook(auth, nil, rec, nil)

	w := postWebhook(handler, "Apikey SECRET", webhookBody(t, "thanh toan ORD1234567"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if len(rec.codes) != 1 || rec.codes[0] != "ORD1234567" {
		t.Errorf("reconciled codes = %v, want [ORD1234567]", rec.codes)
	}
	if rec.events[0].TransferAmount != 500000 {
		t.Errorf("event amount = %v, want 500000", rec.events[0].TransferAmount)
	}
	if rec.events[0].GatewayID != "FT22001" {
		t.Errorf("event gateway id = %q, want FT22001", rec.events[0].GatewayID)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["bookingCode"] != "ORD1234567" {
		t.Errorf("bookingCode = %v", resp["bookingCode"])
	}
}

func TestPaymentWebhookDuplicateDelivery(t *testing.T) {
	auth := payment.NewAuthenticator("SECRET")
	deduper := &fakeDeduper{first: false}
	rec := &fakeReconciler{}
	handler := PaymentWebhook(auth, deduper, rec, nil)

	w := postWebhook(handler, "Apikey SECRET", webhookBody(t, "ORD1234567"))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for a duplicate", w.Code)
	}
	if len(rec.codes) != 0 {
		t.Error("duplicate delivery must not reach the reconciler")
	}
	if len(deduper.seen) != 1 || deduper.seen[0] != "FT22001" {
		t.Errorf("deduper saw %v, want the reference code", deduper.seen)
	}
}

func TestPaymentWebhookDedupFailureFailsOpen(t *testing.T) {
	auth := payment.NewAuthenticator("SECRET")
	deduper := &fakeDeduper{err: errors.New("redis down")}
	rec := &fakeReconciler{result: &payment.Result{
		Outcome: payment.OutcomeApplied,
		Booking: settledBooking(),
	}}
	handler := PaymentWebhook(auth, deduper, rec, nil)

	w := postWebhook(handler, "Apikey SECRET", webhookBody(t, "ORD1234567"))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (dedup failure must not block the event)", w.Code)
	}
	if len(rec.codes) != 1 {
		t.Error("event must still be reconciled when the dedup cache is unavailable")
	}
}

func TestPaymentWebhookStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		result     *payment.Result
		err        error
		wantStatus int
	}{
		{
			"unknown booking",
			&payment.Result{Outcome: payment.OutcomeRejected, Reason: payment.ReasonNotFound},
			nil,
			http.StatusNotFound,
		},
		{
			"already settled",
			&payment.Result{Outcome: payment.OutcomeRejected, Reason: payment.ReasonAlreadySettled},
			nil,
			http.StatusBadRequest,
		},
		{
			"persistent write conflict",
			&payment.Result{Outcome: payment.OutcomeRejected, Reason: payment.ReasonConflict},
			nil,
			http.StatusInternalServerError,
		},
		{
			"terminal booking ignored",
			&payment.Result{Outcome: payment.OutcomeNoop},
			nil,
			http.StatusOK,
		},
		{
			"store failure asks for redelivery",
			nil,
			errors.New("connection reset"),
			http.StatusInternalServerError,
		},
	}

	auth := payment.NewAuthenticator("SECRET")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeReconciler{result: tt.result, err: tt.err}
			handler := PaymentWebhook(auth, nil, rec, nil)

			w := postWebhook(handler, "Apikey SECRET", webhookBody(t, "ORD1234567"))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
