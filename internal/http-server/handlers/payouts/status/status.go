package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type StatusUpdater interface {
	UpdatePayoutStatus(ctx context.Context, id string, status string) (*api.PayoutResponse, error)
}

type Request struct {
	api.StatusRequest
}

type Response struct {
	response.Response
	Payout *api.PayoutResponse `json:"payout,omitempty"`
}

// New sets the payout status. Any status may follow any other.
func New(log *slog.Logger, updater StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payouts.status.New"

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

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("Invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		payout, err := updater.UpdatePayoutStatus(r.Context(), id, req.Status)
		if err != nil {
			log.Error("Failed to update payout status", sl.Err(err))
			response.Fail(w, r, err, "failed to update payout status")
			return
		}

		log.Info("Payout status updated", slog.String("id", id), slog.String("status", payout.Status))
		render.JSON(w, r, Response{Payout: payout})
	}
}
