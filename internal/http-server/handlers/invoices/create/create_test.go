package create

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
)

type fakeSender struct {
	invoice *api.InvoiceResponse
	err     error

	gotReq *api.InvoiceRequest
	gotKey *string
}

func (f *fakeSender) SaveAndSendInvoice(_ context.Context, req *api.InvoiceRequest, key *string) (*api.InvoiceResponse, error) {
	f.gotReq = req
	f.gotKey = key
	return f.invoice, f.err
}

func serve(t *testing.T, sender InvoiceSender, body string, header map[string]string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	router := chi.NewRouter()
	router.Post("/invoices", New(slog.New(slog.NewTextHandler(io.Discard, nil)), sender))

	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

var savedInvoice = &api.InvoiceResponse{
	ID:            "inv-1",
	InvoiceNumber: "INV-202403-1234",
	StudentID:     "student-1234",
	Lines:         []api.InvoiceLineResponse{},
	Subtotal:      "40.00",
	Tax:           "2.40",
	Total:         "42.40",
	Status:        "unpaid",
	Year:          2024,
	Month:         3,
}

func TestNew_Created(t *testing.T) {
	sender := &fakeSender{invoice: savedInvoice}

	rec, resp := serve(t, sender, `{"student_id":"student-1234","year":2024,"month":3}`,
		map[string]string{"Idempotency-Key": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, resp.Invoice)
	assert.Equal(t, "INV-202403-1234", resp.Invoice.InvoiceNumber)
	assert.Empty(t, resp.Code)

	require.NotNil(t, sender.gotKey)
	assert.Equal(t, "abc", *sender.gotKey)
	assert.Equal(t, 3, sender.gotReq.Month)
}

func TestNew_NoIdempotencyHeader(t *testing.T) {
	sender := &fakeSender{invoice: savedInvoice}

	rec, _ := serve(t, sender, `{"student_id":"student-1234","year":2024,"month":3}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, sender.gotKey)
}

func TestNew_NotificationFailureStillReturnsInvoice(t *testing.T) {
	sender := &fakeSender{
		invoice: savedInvoice,
		err:     fmt.Errorf("service.SaveAndSendInvoice: %w: smtp down", response.ErrExternalService),
	}

	rec, resp := serve(t, sender, `{"student_id":"student-1234","year":2024,"month":3}`, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, string(response.NOTIFICATION_FAILED), resp.Code)
	require.NotNil(t, resp.Invoice)
	assert.Equal(t, "inv-1", resp.Invoice.ID)
}

func TestNew_Errors(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  response.ErrCode
	}{
		{
			name:     "broken json",
			body:     `{"student_id":`,
			wantCode: http.StatusBadRequest,
			wantErr:  response.BAD_REQUEST,
		},
		{
			name:     "month out of range",
			body:     `{"student_id":"s","year":2024,"month":13}`,
			wantCode: http.StatusBadRequest,
			wantErr:  response.VALIDATION_FAILED,
		},
		{
			name:     "missing student",
			body:     `{"year":2024,"month":3}`,
			wantCode: http.StatusBadRequest,
			wantErr:  response.VALIDATION_FAILED,
		},
		{
			name:     "unknown student",
			body:     `{"student_id":"s","year":2024,"month":3}`,
			err:      fmt.Errorf("service.SaveAndSendInvoice: %w", response.ErrNotFound),
			wantCode: http.StatusNotFound,
			wantErr:  response.NOT_FOUND,
		},
		{
			name:     "storage down",
			body:     `{"student_id":"s","year":2024,"month":3}`,
			err:      fmt.Errorf("storage.postgres.CreateInvoice: %w", response.ErrPersistence),
			wantCode: http.StatusInternalServerError,
			wantErr:  response.FAILED_REQUEST,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := serve(t, &fakeSender{err: tc.err}, tc.body, nil)

			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, string(tc.wantErr), resp.Code)
			assert.Nil(t, resp.Invoice)
		})
	}
}
