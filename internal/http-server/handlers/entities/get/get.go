package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type EntityGetter interface {
	GetEntity(ctx context.Context, kind, id string) (any, error)
}

type Response struct {
	response.Response
	Kind   string `json:"kind,omitempty"`
	Entity any    `json:"entity,omitempty"`
}

func New(log *slog.Logger, getter EntityGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.entities.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		kind := chi.URLParam(r, "kind")
		id := chi.URLParam(r, "id")

		entity, err := getter.GetEntity(r.Context(), kind, id)
		if err != nil {
			log.Error("Failed to get entity", slog.String("kind", kind), sl.Err(err))
			response.Fail(w, r, err, "failed to get entity")
			return
		}

		render.JSON(w, r, Response{Kind: kind, Entity: entity})
	}
}
