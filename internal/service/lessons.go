package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tutor-billing/api"
	"tutor-billing/internal/billing"
	"tutor-billing/internal/models"
	"tutor-billing/pkg/response"
)

func validateLessonFields(startTime string, minutes int, rate decimal.Decimal) (time.Time, error) {
	start, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return time.Time{}, response.Validation("start_time must be an RFC3339 timestamp")
	}
	if minutes < 0 {
		return time.Time{}, response.Validation("duration_minutes must not be negative")
	}
	if rate.IsNegative() {
		return time.Time{}, response.Validation("hourly_rate must not be negative")
	}

	return start.UTC(), nil
}

func (s *Service) CreateLesson(ctx context.Context, req *api.LessonRequest) (*api.LessonResponse, error) {
	const op = "service.CreateLesson"

	start, err := validateLessonFields(req.StartTime, req.DurationMinutes, req.HourlyRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lesson := &models.Lesson{
		StudentID:       req.StudentID,
		TutorID:         req.TutorID,
		Subject:         req.Subject,
		StartTime:       start,
		DurationMinutes: req.DurationMinutes,
		HourlyRate:      req.HourlyRate,
		TotalAmount:     billing.LessonAmount(req.DurationMinutes, req.HourlyRate),
		Notes:           req.Notes,
	}

	id, err := s.store.CreateLesson(ctx, lesson)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return s.GetLesson(ctx, id)
}

func (s *Service) GetLesson(ctx context.Context, id string) (*api.LessonResponse, error) {
	const op = "service.GetLesson"

	lesson, err := s.store.GetLesson(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return toLessonResponse(lesson), nil
}

func (s *Service) ListLessons(ctx context.Context, studentID, tutorID *string, from, to *time.Time) ([]*api.LessonResponse, error) {
	const op = "service.ListLessons"

	lessons, err := s.store.FindLessons(ctx, models.LessonFilter{
		StudentID: studentID,
		TutorID:   tutorID,
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		result = append(result, toLessonResponse(l))
	}

	return result, nil
}

// UpdateLesson rewrites the clerical fields of a lesson and recomputes its
// total. Documents already generated from it are left untouched.
func (s *Service) UpdateLesson(ctx context.Context, id string, req *api.LessonUpdateRequest) (*api.LessonResponse, error) {
	const op = "service.UpdateLesson"

	start, err := validateLessonFields(req.StartTime, req.DurationMinutes, req.HourlyRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lesson, err := s.store.GetLesson(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	lesson.Subject = req.Subject
	lesson.StartTime = start
	lesson.DurationMinutes = req.DurationMinutes
	lesson.HourlyRate = req.HourlyRate
	lesson.TotalAmount = billing.LessonAmount(req.DurationMinutes, req.HourlyRate)
	lesson.Notes = req.Notes

	if err := s.store.UpdateLesson(ctx, lesson); err != nil {
		return nil, wrapNotFound(op, err)
	}

	return s.GetLesson(ctx, id)
}

func (s *Service) DeleteLesson(ctx context.Context, id string) error {
	const op = "service.DeleteLesson"

	if err := s.store.DeleteLesson(ctx, id); err != nil {
		return wrapNotFound(op, err)
	}

	return nil
}

// lessonsIn loads the lessons of a student or tutor that start inside p.
func (s *Service) lessonsIn(ctx context.Context, f models.LessonFilter, p billing.Period) ([]models.Lesson, error) {
	from, to := p.Range()
	f.From, f.To = &from, &to

	found, err := s.store.FindLessons(ctx, f)
	if err != nil {
		return nil, err
	}

	lessons := make([]models.Lesson, 0, len(found))
	for _, l := range found {
		lessons = append(lessons, *l)
	}

	return lessons, nil
}

func toLessonResponse(l *models.Lesson) *api.LessonResponse {
	return &api.LessonResponse{
		ID:              l.ID,
		StudentID:       l.StudentID,
		TutorID:         l.TutorID,
		Subject:         l.Subject,
		StartTime:       l.StartTime,
		DurationMinutes: l.DurationMinutes,
		HourlyRate:      billing.FormatMoney(l.HourlyRate),
		TotalAmount:     billing.FormatMoney(l.TotalAmount),
		Notes:           l.Notes,
		CreatedAt:       l.CreatedAt,
	}
}
