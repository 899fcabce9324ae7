package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type LessonUpdater interface {
	UpdateLesson(ctx context.Context, id string, req *api.LessonUpdateRequest) (*api.LessonResponse, error)
}

type Request struct {
	api.LessonUpdateRequest
}

type Response struct {
	response.Response
	Lesson *api.LessonResponse `json:"lesson,omitempty"`
}

func New(log *slog.Logger, updater LessonUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("Invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		lesson, err := updater.UpdateLesson(r.Context(), id, &req.LessonUpdateRequest)
		if err != nil {
			log.Error("Failed to update lesson", sl.Err(err))
			response.Fail(w, r, err, "failed to update lesson")
			return
		}

		log.Info("Lesson updated", slog.String("id", lesson.ID))
		render.JSON(w, r, Response{Lesson: lesson})
	}
}
