package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type LessonGetter interface {
	GetLesson(ctx context.Context, id string) (*api.LessonResponse, error)
	ListLessons(ctx context.Context, studentID, tutorID *string, from, to *time.Time) ([]*api.LessonResponse, error)
}

type Response struct {
	response.Response
	Lessons []*api.LessonResponse `json:"lessons,omitempty"`
	Lesson  *api.LessonResponse   `json:"lesson,omitempty"`
}

func New(log *slog.Logger, getter LessonGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			lesson, err := getter.GetLesson(r.Context(), id)
			if err != nil {
				log.Error("Failed to get lesson", sl.Err(err))
				response.Fail(w, r, err, "failed to get lesson")
				return
			}

			render.JSON(w, r, Response{Lesson: lesson})
			return
		}

		q := r.URL.Query()

		from, err := parseTime(q.Get("from"))
		if err != nil {
			log.Error("Invalid from", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "from must be RFC3339 or YYYY-MM-DD"))
			return
		}
		to, err := parseTime(q.Get("to"))
		if err != nil {
			log.Error("Invalid to", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "to must be RFC3339 or YYYY-MM-DD"))
			return
		}

		lessons, err := getter.ListLessons(r.Context(), optional(q.Get("student_id")), optional(q.Get("tutor_id")), from, to)
		if err != nil {
			log.Error("Failed to list lessons", sl.Err(err))
			response.Fail(w, r, err, "failed to list lessons")
			return
		}

		log.Info("Lessons retrieved", slog.Int("count", len(lessons)))
		render.JSON(w, r, Response{Lessons: lessons})
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
