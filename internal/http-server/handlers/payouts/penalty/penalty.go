package penalty

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type PenaltyApplier interface {
	ApplyPenalty(ctx context.Context, id string, req *api.PenaltyRequest) (*api.PayoutResponse, error)
}

type Request struct {
	api.PenaltyRequest
}

type Response struct {
	response.Response
	Payout *api.PayoutResponse `json:"payout,omitempty"`
}

// New reduces a payout by a percentage. Percentage and reason are checked
// by the billing rules, so a bad penalty comes back as VALIDATION_FAILED.
func New(log *slog.Logger, applier PenaltyApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payouts.penalty.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		payout, err := applier.ApplyPenalty(r.Context(), id, &req.PenaltyRequest)
		if err != nil {
			log.Error("Failed to apply penalty", sl.Err(err))
			response.Fail(w, r, err, "failed to apply penalty")
			return
		}

		log.Info("Penalty applied",
			slog.String("id", id),
			slog.String("percentage", req.Percentage.String()),
			slog.String("payout_amount", payout.PayoutAmount),
		)

		render.JSON(w, r, Response{Payout: payout})
	}
}
