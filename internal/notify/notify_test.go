package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-billing/internal/models"
)

var (
	parent  = models.Parent{ID: "p-1", Name: "Jane Doe", Email: "jane@example.com"}
	student = models.Student{ID: "s-1234", Name: "Tim Doe", ParentID: "p-1"}
)

func TestInvoiceMessage(t *testing.T) {
	inv := models.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-202403-1234",
		Year:          2024,
		Month:         time.March,
		Lines: []models.InvoiceLine{{
			Subject: "Math",
			Rate:    decimal.NewFromInt(45),
			Hours:   decimal.RequireFromString("0.8"),
			Amount:  decimal.NewFromInt(36),
		}},
		Subtotal:  decimal.NewFromInt(36),
		Tax:       decimal.RequireFromString("2.16"),
		Total:     decimal.RequireFromString("38.16"),
		CreatedAt: time.Date(2024, time.April, 2, 8, 0, 0, 0, time.UTC),
	}

	msg := InvoiceMessage(parent, student, inv)

	assert.Equal(t, "jane@example.com", msg.To.Address)
	assert.Equal(t, "Invoice INV-202403-1234", msg.Subject)
	assert.Equal(t, "inv-1", msg.Ref)
	assert.Contains(t, msg.Text, "Issued: 2024-04-02")
	assert.Contains(t, msg.Text, "Dear Jane Doe")
	assert.Contains(t, msg.Text, "Tim Doe (2024-03)")
	assert.Contains(t, msg.Text, "Math")
	assert.Contains(t, msg.Text, "Tax (6%): 2.16")
	assert.Contains(t, msg.Text, "Total: 38.16")
}

func TestDepositMessage(t *testing.T) {
	dep := models.SecurityDeposit{
		ID:            "dep-1",
		InvoiceNumber: "SD-20240902-1234",
		Amount:        decimal.NewFromInt(200),
		Date:          time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC),
	}

	msg := DepositMessage(parent, student, dep)

	assert.Equal(t, "Security deposit SD-20240902-1234", msg.Subject)
	assert.Equal(t, "dep-1", msg.Ref)
	assert.Contains(t, msg.Text, "200.00")
	assert.Contains(t, msg.Text, "SD-20240902-1234 (2024-09-02)")
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, m.Send(context.Background(), Message{Subject: "hi"}))
}

func TestSendGridMailer(t *testing.T) {
	var got struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			Subject    string            `json:"subject"`
			CustomArgs map[string]string `json:"custom_args"`
			To         []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
	}
	var auth string
	status := http.StatusAccepted

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	prevHost := host
	host = srv.URL
	defer func() { host = prevHost }()

	m := NewSendGridMailer("sg-key", "Tutor Billing", "billing@example.com")
	msg := Message{To: mail.Address{Name: parent.Name, Address: parent.Email}, Ref: "inv-1", Subject: "Invoice INV-1", Text: "hello"}

	require.NoError(t, m.Send(context.Background(), msg))
	assert.Equal(t, "Bearer sg-key", auth)
	assert.Equal(t, "billing@example.com", got.From.Email)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "[Tutor Billing] Invoice INV-1", got.Personalizations[0].Subject)
	assert.Equal(t, "jane@example.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "inv-1", got.Personalizations[0].CustomArgs["ref"])

	status = http.StatusUnauthorized
	assert.Error(t, m.Send(context.Background(), msg))
}
