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

type PayoutDeleter interface {
	DeletePayout(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter PayoutDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payouts.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if err := deleter.DeletePayout(r.Context(), id); err != nil {
			log.Error("Failed to delete payout", sl.Err(err))
			response.Fail(w, r, err, "failed to delete payout")
			return
		}

		log.Info("Payout deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
