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

type PayoutFilters struct {
	TutorID *string
	Status  *string
	Year    *int
	Month   *int
}

// GeneratePayout derives the tutor's payout for a month from the lesson
// totals and stores it, one payout per tutor and month. Regenerating
// replaces the amounts and clears any penalty; status and payout date stay.
func (s *Service) GeneratePayout(ctx context.Context, req *api.PayoutGenerateRequest) (*api.PayoutResponse, error) {
	const op = "service.GeneratePayout"

	period, err := billing.NewPeriod(req.Year, time.Month(req.Month))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tutor, err := s.store.GetTutor(ctx, req.TutorID)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	lessons, err := s.lessonsIn(ctx, models.LessonFilter{TutorID: &tutor.ID}, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	base := billing.ComputeBasePayout(billing.EarningsFromLessons(lessons))

	payout := &models.Payout{
		TutorID:           tutor.ID,
		Year:              period.Year,
		Month:             period.Month,
		TotalEarning:      base.TotalEarning,
		PayoutAmount:      base.PayoutAmount,
		PenaltyPercentage: decimal.Zero,
		Status:            models.PayoutPending,
	}

	id, err := s.store.CreateOrUpdatePayout(ctx, payout)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return s.GetPayout(ctx, id)
}

func (s *Service) ApplyPenalty(ctx context.Context, id string, req *api.PenaltyRequest) (*api.PayoutResponse, error) {
	const op = "service.ApplyPenalty"

	payout, err := s.store.GetPayout(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	penalized, err := billing.ApplyPenalty(*payout, req.Percentage, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.UpdatePayoutPenalty(ctx, &penalized); err != nil {
		return nil, wrapNotFound(op, err)
	}

	return s.GetPayout(ctx, id)
}

// UpdatePayoutStatus allows any transition between the known statuses.
// Moving to Completed stamps the payout date.
func (s *Service) UpdatePayoutStatus(ctx context.Context, id string, status string) (*api.PayoutResponse, error) {
	const op = "service.UpdatePayoutStatus"

	st := models.PayoutStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("unknown payout status"))
	}

	var payoutDate *time.Time
	if st == models.PayoutCompleted {
		now := s.now().UTC()
		payoutDate = &now
	}

	if err := s.store.UpdatePayoutStatus(ctx, id, st, payoutDate); err != nil {
		return nil, wrapNotFound(op, err)
	}

	return s.GetPayout(ctx, id)
}

func (s *Service) GetPayout(ctx context.Context, id string) (*api.PayoutResponse, error) {
	const op = "service.GetPayout"

	payout, err := s.store.GetPayout(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return toPayoutResponse(payout), nil
}

func (s *Service) ListPayouts(ctx context.Context, filters *PayoutFilters) ([]*api.PayoutResponse, error) {
	const op = "service.ListPayouts"

	f := models.PayoutFilter{
		TutorID: filters.TutorID,
		Year:    filters.Year,
	}
	if filters.Status != nil {
		st := models.PayoutStatus(*filters.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%s: %w", op, response.Validation("unknown payout status"))
		}
		f.Status = &st
	}
	if filters.Month != nil {
		m := time.Month(*filters.Month)
		f.Month = &m
	}

	payouts, err := s.store.FindPayouts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		result = append(result, toPayoutResponse(p))
	}

	return result, nil
}

func (s *Service) DeletePayout(ctx context.Context, id string) error {
	const op = "service.DeletePayout"

	if err := s.store.DeletePayout(ctx, id); err != nil {
		return wrapNotFound(op, err)
	}

	return nil
}

// TutorEarnings is the dashboard view of a tutor's month: per-subject
// totals plus the payout those lessons would produce before penalties.
func (s *Service) TutorEarnings(ctx context.Context, tutorID string, year, month int) (*api.EarningsResponse, error) {
	const op = "service.TutorEarnings"

	period, err := billing.NewPeriod(year, time.Month(month))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tutor, err := s.store.GetTutor(ctx, tutorID)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	lessons, err := s.lessonsIn(ctx, models.LessonFilter{TutorID: &tutor.ID}, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	base := billing.ComputeBasePayout(billing.EarningsFromLessons(lessons))

	subjects := make([]api.SubjectEarningResponse, 0)
	for _, e := range billing.EarningsBySubject(lessons) {
		subjects = append(subjects, api.SubjectEarningResponse{
			Subject:              e.Subject,
			Lessons:              e.Lessons,
			TotalDurationMinutes: e.TotalDurationMinutes,
			TotalAmount:          billing.FormatMoney(e.TotalAmount),
		})
	}

	return &api.EarningsResponse{
		TutorID:      tutor.ID,
		Year:         period.Year,
		Month:        int(period.Month),
		Subjects:     subjects,
		TotalEarning: billing.FormatMoney(base.TotalEarning),
		PayoutAmount: billing.FormatMoney(base.PayoutAmount),
		PlatformFee:  billing.FormatMoney(base.TotalEarning.Sub(base.PayoutAmount)),
	}, nil
}

func toPayoutResponse(p *models.Payout) *api.PayoutResponse {
	return &api.PayoutResponse{
		ID:                p.ID,
		TutorID:           p.TutorID,
		Year:              p.Year,
		Month:             int(p.Month),
		TotalEarning:      billing.FormatMoney(p.TotalEarning),
		PayoutAmount:      billing.FormatMoney(p.PayoutAmount),
		PenaltyPercentage: p.PenaltyPercentage.String(),
		PenaltyReason:     p.PenaltyReason,
		Status:            string(p.Status),
		PayoutDate:        p.PayoutDate,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
