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

type PayoutGetter interface {
	GetPayout(ctx context.Context, id string) (*api.PayoutResponse, error)
	ListPayouts(ctx context.Context, filters *service.PayoutFilters) ([]*api.PayoutResponse, error)
}

type Response struct {
	response.Response
	Payouts []*api.PayoutResponse `json:"payouts,omitempty"`
	Payout  *api.PayoutResponse   `json:"payout,omitempty"`
}

func New(log *slog.Logger, getter PayoutGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payouts.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			payout, err := getter.GetPayout(r.Context(), id)
			if err != nil {
				log.Error("Failed to get payout", sl.Err(err))
				response.Fail(w, r, err, "failed to get payout")
				return
			}

			render.JSON(w, r, Response{Payout: payout})
			return
		}

		q := r.URL.Query()
		filters := &service.PayoutFilters{}

		if v := q.Get("tutor_id"); v != "" {
			filters.TutorID = &v
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

		payouts, err := getter.ListPayouts(r.Context(), filters)
		if err != nil {
			log.Error("Failed to list payouts", sl.Err(err))
			response.Fail(w, r, err, "failed to list payouts")
			return
		}

		log.Info("Payouts retrieved", slog.Int("count", len(payouts)))
		render.JSON(w, r, Response{Payouts: payouts})
	}
}
