package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type ParentGetter interface {
	GetParent(ctx context.Context, id string) (*api.ParentResponse, error)
	ListParents(ctx context.Context) ([]*api.ParentResponse, error)
}

type Response struct {
	response.Response
	Parents []*api.ParentResponse `json:"parents,omitempty"`
	Parent  *api.ParentResponse   `json:"parent,omitempty"`
}

func New(log *slog.Logger, getter ParentGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.parents.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			parent, err := getter.GetParent(r.Context(), id)
			if err != nil {
				log.Error("Failed to get parent", sl.Err(err))
				response.Fail(w, r, err, "failed to get parent")
				return
			}

			render.JSON(w, r, Response{Parent: parent})
			return
		}

		parents, err := getter.ListParents(r.Context())
		if err != nil {
			log.Error("Failed to list parents", sl.Err(err))
			response.Fail(w, r, err, "failed to list parents")
			return
		}

		log.Info("Parents retrieved", slog.Int("count", len(parents)))
		render.JSON(w, r, Response{Parents: parents})
	}
}
