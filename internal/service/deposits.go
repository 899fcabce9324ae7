package service

import (
	"context"
	"fmt"
	"time"

	"tutor-billing/api"
	"tutor-billing/internal/billing"
	"tutor-billing/internal/models"
	"tutor-billing/internal/notify"
	"tutor-billing/pkg/response"
)

const depositScope = "security_deposit"

type DepositFilters struct {
	StudentID *string
	ParentID  *string
	Status    *string
}

func (s *Service) depositDate(raw string) (time.Time, error) {
	if raw == "" {
		y, m, d := s.now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, response.Validation("date must be YYYY-MM-DD")
	}

	return date, nil
}

// CreateSecurityDeposit stores a draft deposit for the student's enrollment
// and mails it to the parent. Delivery failures are reported the same way
// as for invoices.
func (s *Service) CreateSecurityDeposit(ctx context.Context, req *api.DepositRequest, idempotencyKey *string) (*api.DepositResponse, error) {
	const op = "service.CreateSecurityDeposit"

	prevID, seen, err := s.lookupKey(ctx, depositScope, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if seen {
		return s.GetSecurityDeposit(ctx, prevID)
	}

	date, err := s.depositDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	student, err := s.store.GetStudent(ctx, req.StudentID)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	parent, err := s.store.GetParent(ctx, student.ParentID)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	dep, err := billing.BuildSecurityDeposit(*student, req.Amount, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateSecurityDeposit(ctx, &dep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.rememberKey(ctx, depositScope, idempotencyKey, id)

	stored, err := s.store.GetSecurityDeposit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	saved := toDepositResponse(stored)

	if err := s.mailer.Send(ctx, notify.DepositMessage(*parent, *student, *stored)); err != nil {
		return saved, fmt.Errorf("%s: %w: %v", op, response.ErrExternalService, err)
	}

	return saved, nil
}

func (s *Service) GetSecurityDeposit(ctx context.Context, id string) (*api.DepositResponse, error) {
	const op = "service.GetSecurityDeposit"

	dep, err := s.store.GetSecurityDeposit(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return toDepositResponse(dep), nil
}

func (s *Service) ListSecurityDeposits(ctx context.Context, filters *DepositFilters) ([]*api.DepositResponse, error) {
	const op = "service.ListSecurityDeposits"

	f := models.DepositFilter{
		StudentID: filters.StudentID,
		ParentID:  filters.ParentID,
	}
	if filters.Status != nil {
		st := models.DepositStatus(*filters.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%s: %w", op, response.Validation("unknown deposit status"))
		}
		f.Status = &st
	}

	deposits, err := s.store.FindSecurityDeposits(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.DepositResponse, 0, len(deposits))
	for _, d := range deposits {
		result = append(result, toDepositResponse(d))
	}

	return result, nil
}

func (s *Service) UpdateSecurityDepositStatus(ctx context.Context, id string, status string) (*api.DepositResponse, error) {
	const op = "service.UpdateSecurityDepositStatus"

	st := models.DepositStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("unknown deposit status"))
	}

	if err := s.store.UpdateSecurityDepositStatus(ctx, id, st); err != nil {
		return nil, wrapNotFound(op, err)
	}

	return s.GetSecurityDeposit(ctx, id)
}

func (s *Service) DeleteSecurityDeposit(ctx context.Context, id string) error {
	const op = "service.DeleteSecurityDeposit"

	if err := s.store.DeleteSecurityDeposit(ctx, id); err != nil {
		return wrapNotFound(op, err)
	}

	return nil
}

func toDepositResponse(d *models.SecurityDeposit) *api.DepositResponse {
	return &api.DepositResponse{
		ID:            d.ID,
		InvoiceNumber: d.InvoiceNumber,
		StudentID:     d.StudentID,
		ParentID:      d.ParentID,
		Amount:        billing.FormatMoney(d.Amount),
		Status:        string(d.Status),
		Date:          d.Date.Format("2006-01-02"),
		CreatedAt:     d.CreatedAt,
	}
}
