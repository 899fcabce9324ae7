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

type LessonDeleter interface {
	DeleteLesson(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter LessonDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if err := deleter.DeleteLesson(r.Context(), id); err != nil {
			log.Error("Failed to delete lesson", sl.Err(err))
			response.Fail(w, r, err, "failed to delete lesson")
			return
		}

		log.Info("Lesson deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
