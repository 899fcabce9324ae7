package service

import (
	"context"
	"fmt"

	"tutor-billing/pkg/response"
)

// EntityKind names the record types that can be fetched or deleted through
// the generic entity endpoints.
type EntityKind string

const (
	KindLesson          EntityKind = "lesson"
	KindInvoice         EntityKind = "invoice"
	KindSecurityDeposit EntityKind = "security_deposit"
	KindPayout          EntityKind = "payout"
)

type entityOps struct {
	get    func(ctx context.Context, id string) (any, error)
	delete func(ctx context.Context, id string) error
}

func (s *Service) buildRegistry() map[EntityKind]entityOps {
	return map[EntityKind]entityOps{
		KindLesson: {
			get:    func(ctx context.Context, id string) (any, error) { return s.GetLesson(ctx, id) },
			delete: s.DeleteLesson,
		},
		KindInvoice: {
			get:    func(ctx context.Context, id string) (any, error) { return s.GetInvoice(ctx, id) },
			delete: s.DeleteInvoice,
		},
		KindSecurityDeposit: {
			get:    func(ctx context.Context, id string) (any, error) { return s.GetSecurityDeposit(ctx, id) },
			delete: s.DeleteSecurityDeposit,
		},
		KindPayout: {
			get:    func(ctx context.Context, id string) (any, error) { return s.GetPayout(ctx, id) },
			delete: s.DeletePayout,
		},
	}
}

func (s *Service) entity(kind string) (entityOps, error) {
	ops, ok := s.registry[EntityKind(kind)]
	if !ok {
		return entityOps{}, response.Validation(fmt.Sprintf("unknown entity kind %q", kind))
	}
	return ops, nil
}

func (s *Service) GetEntity(ctx context.Context, kind, id string) (any, error) {
	const op = "service.GetEntity"

	ops, err := s.entity(kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v, err := ops.get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (s *Service) DeleteEntity(ctx context.Context, kind, id string) error {
	const op = "service.DeleteEntity"

	ops, err := s.entity(kind)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ops.delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
