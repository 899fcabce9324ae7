package earnings

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tutor-billing/api"
	"tutor-billing/pkg/response"
	"tutor-billing/pkg/sl"
)

type EarningsReporter interface {
	TutorEarnings(ctx context.Context, tutorID string, year, month int) (*api.EarningsResponse, error)
}

type Response struct {
	response.Response
	Earnings *api.EarningsResponse `json:"earnings,omitempty"`
}

func New(log *slog.Logger, reporter EarningsReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tutors.earnings.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		q := r.URL.Query()

		year, errY := strconv.Atoi(q.Get("year"))
		month, errM := strconv.Atoi(q.Get("month"))
		if errY != nil || errM != nil {
			log.Error("year or month is not a number")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "year and month are required numbers"))
			return
		}

		earnings, err := reporter.TutorEarnings(r.Context(), id, year, month)
		if err != nil {
			log.Error("Failed to build earnings report", sl.Err(err))
			response.Fail(w, r, err, "failed to build earnings report")
			return
		}

		render.JSON(w, r, Response{Earnings: earnings})
	}
}
