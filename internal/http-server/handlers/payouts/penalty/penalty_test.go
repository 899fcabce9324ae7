package penalty

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
	"tutor-billing/internal/billing"
	"tutor-billing/pkg/response"
)

type fakeApplier struct {
	payout *api.PayoutResponse
	err    error

	gotID  string
	gotReq *api.PenaltyRequest
}

func (f *fakeApplier) ApplyPenalty(_ context.Context, id string, req *api.PenaltyRequest) (*api.PayoutResponse, error) {
	f.gotID = id
	f.gotReq = req
	return f.payout, f.err
}

func do(t *testing.T, applier PenaltyApplier, id, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	router := chi.NewRouter()
	router.Post("/payouts/{id}/penalty", New(slog.New(slog.NewTextHandler(io.Discard, nil)), applier))

	req := httptest.NewRequest(http.MethodPost, "/payouts/"+id+"/penalty", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestNew_AppliesPenalty(t *testing.T) {
	applier := &fakeApplier{payout: &api.PayoutResponse{ID: "p-1", PayoutAmount: "90.00", PenaltyPercentage: "10"}}

	rec, resp := do(t, applier, "p-1", `{"percentage": 10, "reason": "late"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Payout)
	assert.Equal(t, "90.00", resp.Payout.PayoutAmount)
	assert.Equal(t, "p-1", applier.gotID)
	assert.Equal(t, "10", applier.gotReq.Percentage.String())
	assert.Equal(t, "late", applier.gotReq.Reason)
}

func TestNew_AcceptsPercentageAsString(t *testing.T) {
	applier := &fakeApplier{payout: &api.PayoutResponse{ID: "p-1"}}

	rec, _ := do(t, applier, "p-1", `{"percentage": "12.5", "reason": "late"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12.5", applier.gotReq.Percentage.String())
}

func TestNew_Errors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantErr  response.ErrCode
	}{
		{"invalid penalty", fmt.Errorf("service.ApplyPenalty: %w", billing.ErrInvalidPenaltyInput), http.StatusBadRequest, response.VALIDATION_FAILED},
		{"unknown payout", fmt.Errorf("service.ApplyPenalty: %w", response.ErrNotFound), http.StatusNotFound, response.NOT_FOUND},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := do(t, &fakeApplier{err: tc.err}, "p-1", `{"percentage": 0, "reason": ""}`)

			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, string(tc.wantErr), resp.Code)
		})
	}
}

func TestNew_ValidationMessageHidesOpChain(t *testing.T) {
	applier := &fakeApplier{err: fmt.Errorf("service.ApplyPenalty: %w", billing.ErrInvalidPenaltyInput)}

	_, resp := do(t, applier, "p-1", `{"percentage": 0, "reason": "x"}`)

	assert.True(t, strings.HasPrefix(resp.Message, "validation failed"), resp.Message)
}
