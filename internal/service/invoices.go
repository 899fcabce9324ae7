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

const invoiceScope = "invoice"

type InvoiceFilters struct {
	StudentID *string
	ParentID  *string
	Status    *string
	Year      *int
	Month     *int
}

// draftInvoice computes the invoice of a student for a month from the
// lessons currently stored. Nothing is written.
func (s *Service) draftInvoice(ctx context.Context, studentID string, year, month int) (models.Invoice, *models.Student, *models.Parent, error) {
	period, err := billing.NewPeriod(year, time.Month(month))
	if err != nil {
		return models.Invoice{}, nil, nil, err
	}

	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return models.Invoice{}, nil, nil, err
	}

	parent, err := s.store.GetParent(ctx, student.ParentID)
	if err != nil {
		return models.Invoice{}, nil, nil, err
	}

	lessons, err := s.lessonsIn(ctx, models.LessonFilter{StudentID: &student.ID}, period)
	if err != nil {
		return models.Invoice{}, nil, nil, err
	}

	summaries := billing.AggregateLessonsBySubject(lessons)

	return billing.BuildInvoice(summaries, *parent, student.ID, period), student, parent, nil
}

func (s *Service) PreviewInvoice(ctx context.Context, studentID string, year, month int) (*api.InvoiceResponse, error) {
	const op = "service.PreviewInvoice"

	inv, _, _, err := s.draftInvoice(ctx, studentID, year, month)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return toInvoiceResponse(&inv), nil
}

// SaveAndSendInvoice persists the invoice for the month and mails it to the
// parent. When the mail cannot be delivered the stored invoice is returned
// together with an ErrExternalService error.
func (s *Service) SaveAndSendInvoice(ctx context.Context, req *api.InvoiceRequest, idempotencyKey *string) (*api.InvoiceResponse, error) {
	const op = "service.SaveAndSendInvoice"

	prevID, seen, err := s.lookupKey(ctx, invoiceScope, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if seen {
		return s.GetInvoice(ctx, prevID)
	}

	inv, student, parent, err := s.draftInvoice(ctx, req.StudentID, req.Year, req.Month)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	id, err := s.store.CreateInvoice(ctx, &inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.rememberKey(ctx, invoiceScope, idempotencyKey, id)

	stored, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	saved := toInvoiceResponse(stored)

	if err := s.mailer.Send(ctx, notify.InvoiceMessage(*parent, *student, *stored)); err != nil {
		return saved, fmt.Errorf("%s: %w: %v", op, response.ErrExternalService, err)
	}

	return saved, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (*api.InvoiceResponse, error) {
	const op = "service.GetInvoice"

	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, wrapNotFound(op, err)
	}

	return toInvoiceResponse(inv), nil
}

func (s *Service) ListInvoices(ctx context.Context, filters *InvoiceFilters) ([]*api.InvoiceResponse, error) {
	const op = "service.ListInvoices"

	f := models.InvoiceFilter{
		StudentID: filters.StudentID,
		ParentID:  filters.ParentID,
		Year:      filters.Year,
	}
	if filters.Status != nil {
		st := models.InvoiceStatus(*filters.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%s: %w", op, response.Validation("unknown invoice status"))
		}
		f.Status = &st
	}
	if filters.Month != nil {
		m := time.Month(*filters.Month)
		f.Month = &m
	}

	invoices, err := s.store.FindInvoices(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}

	return result, nil
}

// UpdateInvoiceStatus overwrites the status. Setting the current value
// again is not an error.
func (s *Service) UpdateInvoiceStatus(ctx context.Context, id string, status string) (*api.InvoiceResponse, error) {
	const op = "service.UpdateInvoiceStatus"

	st := models.InvoiceStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("unknown invoice status"))
	}

	if err := s.store.UpdateInvoiceStatus(ctx, id, st); err != nil {
		return nil, wrapNotFound(op, err)
	}

	return s.GetInvoice(ctx, id)
}

func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	const op = "service.DeleteInvoice"

	if err := s.store.DeleteInvoice(ctx, id); err != nil {
		return wrapNotFound(op, err)
	}

	return nil
}

func toInvoiceResponse(inv *models.Invoice) *api.InvoiceResponse {
	lines := make([]api.InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, api.InvoiceLineResponse{
			Subject: l.Subject,
			Rate:    billing.FormatMoney(l.Rate),
			Hours:   l.Hours.StringFixed(1),
			Amount:  billing.FormatMoney(l.Amount),
		})
	}

	resp := &api.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		StudentID:     inv.StudentID,
		ParentID:      inv.ParentID,
		Lines:         lines,
		Subtotal:      billing.FormatMoney(inv.Subtotal),
		Tax:           billing.FormatMoney(inv.Tax),
		Total:         billing.FormatMoney(inv.Total),
		Status:        string(inv.Status),
		Year:          inv.Year,
		Month:         int(inv.Month),
	}
	if !inv.CreatedAt.IsZero() {
		created := inv.CreatedAt
		resp.CreatedAt = &created
	}

	return resp
}
