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

type TutorGetter interface {
	GetTutor(ctx context.Context, id string) (*api.TutorResponse, error)
	ListTutors(ctx context.Context) ([]*api.TutorResponse, error)
}

type Response struct {
	response.Response
	Tutors []*api.TutorResponse `json:"tutors,omitempty"`
	Tutor  *api.TutorResponse   `json:"tutor,omitempty"`
}

func New(log *slog.Logger, getter TutorGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tutors.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			tutor, err := getter.GetTutor(r.Context(), id)
			if err != nil {
				log.Error("Failed to get tutor", sl.Err(err))
				response.Fail(w, r, err, "failed to get tutor")
				return
			}

			render.JSON(w, r, Response{Tutor: tutor})
			return
		}

		tutors, err := getter.ListTutors(r.Context())
		if err != nil {
			log.Error("Failed to list tutors", sl.Err(err))
			response.Fail(w, r, err, "failed to list tutors")
			return
		}

		log.Info("Tutors retrieved", slog.Int("count", len(tutors)))
		render.JSON(w, r, Response{Tutors: tutors})
	}
}
