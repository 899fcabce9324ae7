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

type ParentCreator interface {
	CreateParent(ctx context.Context, req *api.ParentRequest) (*api.ParentResponse, error)
}

type Request struct {
	api.ParentRequest
}

type Response struct {
	response.Response
	Parent *api.ParentResponse `json:"parent,omitempty"`
}

func New(log *slog.Logger, creator ParentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.parents.create.New"

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

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("Invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		parent, err := creator.CreateParent(r.Context(), &req.ParentRequest)
		if err != nil {
			log.Error("Failed to create parent", sl.Err(err))
			response.Fail(w, r, err, "failed to create parent")
			return
		}

		log.Info("Parent created", slog.String("id", parent.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Parent: parent})
	}
}
