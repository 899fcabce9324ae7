package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type LessonCreator interface {
	CreateLesson(ctx context.Context, req *api.LessonRequest) (*api.LessonResponse, error)
}

type Request struct {
	api.LessonRequest
}

type Response struct {
	response.Response
	Lesson *api.LessonResponse `json:"lesson,omitempty"`
}

func New(log *slog.Logger, creator LessonCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("Invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		lesson, err := creator.CreateLesson(r.Context(), &req.LessonRequest)
		if err != nil {
			log.Error("Failed to create lesson", sl.Err(err))
			response.Fail(w, r, err, "failed to create lesson")
			return
		}

		log.Info("Lesson created", slog.String("id", lesson.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Lesson: lesson})
	}
}
