package preview

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type InvoicePreviewer interface {
	PreviewInvoice(ctx context.Context, studentID string, year, month int) (*api.InvoiceResponse, error)
}

type Response struct {
	response.Response
	Invoice *api.InvoiceResponse `json:"invoice,omitempty"`
}

// New computes the invoice a student would get for a month without storing it.
func New(log *slog.Logger, previewer InvoicePreviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoices.preview.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()

		studentID := q.Get("student_id")
		if studentID == "" {
			log.Error("student_id is empty")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "student_id is required"))
			return
		}

		year, errY := strconv.Atoi(q.Get("year"))
		month, errM := strconv.Atoi(q.Get("month"))
		if errY != nil || errM != nil {
			log.Error("year or month is not a number")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "year and month are required numbers"))
			return
		}

		invoice, err := previewer.PreviewInvoice(r.Context(), studentID, year, month)
		if err != nil {
			log.Error("Failed to preview invoice", sl.Err(err))
			response.Fail(w, r, err, "failed to preview invoice")
			return
		}

		render.JSON(w, r, Response{Invoice: invoice})
	}
}
