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

type EntityDeleter interface {
	DeleteEntity(ctx context.Context, kind, id string) error
}

func New(log *slog.Logger, deleter EntityDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.entities.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		kind := chi.URLParam(r, "kind")
		id := chi.URLParam(r, "id")

		if err := deleter.DeleteEntity(r.Context(), kind, id); err != nil {
			log.Error("Failed to delete entity", slog.String("kind", kind), sl.Err(err))
			response.Fail(w, r, err, "failed to delete entity")
			return
		}

		log.Info("Entity deleted", slog.String("kind", kind), slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
