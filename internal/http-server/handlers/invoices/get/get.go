package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tutor-billing/api"
	"tutor-billing/internal/service"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type InvoiceGetter interface {
	GetInvoice(ctx context.Context, id string) (*api.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filters *service.InvoiceFilters) ([]*api.InvoiceResponse, error)
}

type Response struct {
	response.Response
	Invoices []*api.InvoiceResponse `json:"invoices,omitempty"`
	Invoice  *api.InvoiceResponse   `json:"invoice,omitempty"`
}

func New(log *slog.Logger, getter InvoiceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoices.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			invoice, err := getter.GetInvoice(r.Context(), id)
			if err != nil {
				log.Error("Failed to get invoice", sl.Err(err))
				response.Fail(w, r, err, "failed to get invoice")
				return
			}

			render.JSON(w, r, Response{Invoice: invoice})
			return
		}

		q := r.URL.Query()
		filters := &service.InvoiceFilters{}

		if v := q.Get("student_id"); v != "" {
			filters.StudentID = &v
		}
		if v := q.Get("parent_id"); v != "" {
			filters.ParentID = &v
		}
		if v := q.Get("status"); v != "" {
			filters.Status = &v
		}
		if v := q.Get("year"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filters.Year = &n
			}
		}
		if v := q.Get("month"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filters.Month = &n
			}
		}

		invoices, err := getter.ListInvoices(r.Context(), filters)
		if err != nil {
			log.Error("Failed to list invoices", sl.Err(err))
			response.Fail(w, r, err, "failed to list invoices")
			return
		}

		log.Info("Invoices retrieved", slog.Int("count", len(invoices)))
		render.JSON(w, r, Response{Invoices: invoices})
	}
}
