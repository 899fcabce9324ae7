package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tutor-billing/api"
	"tutor-billing/internal/service"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type DepositGetter interface {
	GetSecurityDeposit(ctx context.Context, id string) (*api.DepositResponse, error)
	ListSecurityDeposits(ctx context.Context, filters *service.DepositFilters) ([]*api.DepositResponse, error)
}

type Response struct {
	response.Response
	Deposits []*api.DepositResponse `json:"deposits,omitempty"`
	Deposit  *api.DepositResponse   `json:"deposit,omitempty"`
}

func New(log *slog.Logger, getter DepositGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.deposits.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			deposit, err := getter.GetSecurityDeposit(r.Context(), id)
			if err != nil {
				log.Error("Failed to get security deposit", sl.Err(err))
				response.Fail(w, r, err, "failed to get security deposit")
				return
			}

			render.JSON(w, r, Response{Deposit: deposit})
			return
		}

		q := r.URL.Query()
		filters := &service.DepositFilters{}

		if v := q.Get("student_id"); v != "" {
			filters.StudentID = &v
		}
		if v := q.Get("parent_id"); v != "" {
			filters.ParentID = &v
		}
		if v := q.Get("status"); v != "" {
			filters.Status = &v
		}

		deposits, err := getter.ListSecurityDeposits(r.Context(), filters)
		if err != nil {
			log.Error("Failed to list security deposits", sl.Err(err))
			response.Fail(w, r, err, "failed to list security deposits")
			return
		}

		log.Info("Security deposits retrieved", slog.Int("count", len(deposits)))
		render.JSON(w, r, Response{Deposits: deposits})
	}
}
