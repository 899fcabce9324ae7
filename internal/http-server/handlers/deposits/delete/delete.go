package delete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type DepositDeleter interface {
	DeleteSecurityDeposit(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter DepositDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.deposits.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if err := deleter.DeleteSecurityDeposit(r.Context(), id); err != nil {
			log.Error("Failed to delete security deposit", sl.Err(err))
			response.Fail(w, r, err, "failed to delete security deposit")
			return
		}

		log.Info("Security deposit deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
