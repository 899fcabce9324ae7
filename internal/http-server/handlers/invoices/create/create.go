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

type InvoiceSender interface {
	SaveAndSendInvoice(ctx context.Context, req *api.InvoiceRequest, idempotencyKey *string) (*api.InvoiceResponse, error)
}

type Request struct {
	api.InvoiceRequest
}

type Response struct {
	response.Response
	Invoice *api.InvoiceResponse `json:"invoice,omitempty"`
}

// New saves the month's invoice and mails it to the parent. If the mail
// fails the stored invoice is still returned, with a 502.
func New(log *slog.Logger, sender InvoiceSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoices.create.New"

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

		var idempotencyKey *string
		if key := r.Header.Get("Idempotency-Key"); key != "" {
			idempotencyKey = &key
		}

		invoice, err := sender.SaveAndSendInvoice(r.Context(), &req.InvoiceRequest, idempotencyKey)

		if errors.Is(err, response.ErrExternalService) && invoice != nil {
			log.Warn("Invoice saved but not delivered", slog.String("id", invoice.ID), sl.Err(err))
			status, resp := response.FromError(err, "")
			render.Status(r, status)
			render.JSON(w, r, Response{Response: resp, Invoice: invoice})
			return
		}

		if err != nil {
			log.Error("Failed to save invoice", sl.Err(err))
			response.Fail(w, r, err, "failed to save invoice")
			return
		}

		log.Info("Invoice saved and sent", slog.String("id", invoice.ID), slog.String("number", invoice.InvoiceNumber))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Invoice: invoice})
	}
}
