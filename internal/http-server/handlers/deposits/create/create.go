package create

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

type DepositCreator interface {
	CreateSecurityDeposit(ctx context.Context, req *api.DepositRequest, idempotencyKey *string) (*api.DepositResponse, error)
}

type Request struct {
	api.DepositRequest
}

type Response struct {
	response.Response
	Deposit *api.DepositResponse `json:"deposit,omitempty"`
}

func New(log *slog.Logger, creator DepositCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.deposits.create.New"

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

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("Invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		var idempotencyKey *string
		if key := r.Header.Get("Idempotency-Key"); key != "" {
			idempotencyKey = &key
		}

		deposit, err := creator.CreateSecurityDeposit(r.Context(), &req.DepositRequest, idempotencyKey)

		if errors.Is(err, response.ErrExternalService) && deposit != nil {
			log.Warn("Deposit saved but not delivered", slog.String("id", deposit.ID), sl.Err(err))
			status, resp := response.FromError(err, "")
			render.Status(r, status)
			render.JSON(w, r, Response{Response: resp, Deposit: deposit})
			return
		}

		if err != nil {
			log.Error("Failed to create security deposit", sl.Err(err))
			response.Fail(w, r, err, "failed to create security deposit")
			return
		}

		log.Info("Security deposit created", slog.String("id", deposit.ID), slog.String("number", deposit.InvoiceNumber))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Deposit: deposit})
	}
}
