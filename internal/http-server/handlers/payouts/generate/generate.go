package generate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type PayoutGenerator interface {
	GeneratePayout(ctx context.Context, req *api.PayoutGenerateRequest) (*api.PayoutResponse, error)
}

type Request struct {
	api.PayoutGenerateRequest
}

type Response struct {
	response.Response
	Payout *api.PayoutResponse `json:"payout,omitempty"`
}

func New(log *slog.Logger, generator PayoutGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payouts.generate.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("Invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		payout, err := generator.GeneratePayout(r.Context(), &req.PayoutGenerateRequest)
		if err != nil {
			log.Error("Failed to generate payout", sl.Err(err))
			response.Fail(w, r, err, "failed to generate payout")
			return
		}

		log.Info("Payout generated",
			slog.String("id", payout.ID),
			slog.String("total_earning", payout.TotalEarning),
			slog.String("payout_amount", payout.PayoutAmount),
		)

		render.JSON(w, r, Response{Payout: payout})
	}
}
