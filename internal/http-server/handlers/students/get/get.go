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

type StudentGetter interface {
	GetStudent(ctx context.Context, id string) (*api.StudentResponse, error)
	ListStudents(ctx context.Context, parentID *string) ([]*api.StudentResponse, error)
}

type Response struct {
	response.Response
	Students []*api.StudentResponse `json:"students,omitempty"`
	Student  *api.StudentResponse   `json:"student,omitempty"`
}

func New(log *slog.Logger, getter StudentGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			student, err := getter.GetStudent(r.Context(), id)
			if err != nil {
				log.Error("Failed to get student", sl.Err(err))
				response.Fail(w, r, err, "failed to get student")
				return
			}

			render.JSON(w, r, Response{Student: student})
			return
		}

		var parentID *string
		if v := r.URL.Query().Get("parent_id"); v != "" {
			parentID = &v
		}

		students, err := getter.ListStudents(r.Context(), parentID)
		if err != nil {
			log.Error("Failed to list students", sl.Err(err))
			response.Fail(w, r, err, "failed to list students")
			return
		}

		log.Info("Students retrieved", slog.Int("count", len(students)))
		render.JSON(w, r, Response{Students: students})
	}
}
