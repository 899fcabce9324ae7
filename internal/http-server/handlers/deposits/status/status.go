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
	UpdateSecurityDepositStatus(ctx context.Context, id string, status string) (*api.DepositResponse, error)
}

type Request struct {
	api.StatusRequest
}

type Response struct {
	response.Response
	Deposit *api.DepositResponse `json:"deposit,omitempty"`
}

func New(log *slog.Logger, updater StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.deposits.status.New"

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

		deposit, err := updater.UpdateSecurityDepositStatus(r.Context(), id, req.Status)
		if err != nil {
			log.Error("Failed to update security deposit status", sl.Err(err))
			response.Fail(w, r, err, "failed to update security deposit status")
			return
		}

		log.Info("Security deposit status updated", slog.String("id", id), slog.String("status", deposit.Status))
		render.JSON(w, r, Response{Deposit: deposit})
	}
}
