package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tutor-billing/internal/models"
)

const payoutColumns = `id, tutor_id, period_year, period_month, total_earning, payout_amount,
	penalty_percentage, penalty_reason, status, payout_date, created_at, updated_at`

// CreateOrUpdatePayout upserts on (tutor, period). An existing row keeps its
// id, status and payout date; totals and penalty fields are replaced.
func (s *Storage) CreateOrUpdatePayout(ctx context.Context, p *models.Payout) (string, error) {
	const op = "storage.postgres.CreateOrUpdatePayout"

	var id string
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO payouts
		(id, tutor_id, period_year, period_month, total_earning, payout_amount, penalty_percentage, penalty_reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tutor_id, period_year, period_month)
		DO UPDATE
		SET total_earning = EXCLUDED.total_earning,
			payout_amount = EXCLUDED.payout_amount,
			penalty_percentage = EXCLUDED.penalty_percentage,
			penalty_reason = EXCLUDED.penalty_reason,
			updated_at = now()
		RETURNING id`,
		uuid.NewString(),
		p.TutorID,
		p.Year,
		int(p.Month),
		p.TotalEarning,
		p.PayoutAmount,
		p.PenaltyPercentage,
		p.PenaltyReason,
		string(p.Status),
	).Scan(&id)
	if err != nil {
		return "", mapErr(op, err)
	}

	p.ID = id
	return id, nil
}

func (s *Storage) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	const op = "storage.postgres.GetPayout"

	var p models.Payout
	if err := s.db.GetContext(ctx, &p, `SELECT `+payoutColumns+` FROM payouts WHERE id=$1`, id); err != nil {
		return nil, mapErr(op, err)
	}

	return &p, nil
}

func (s *Storage) FindPayouts(ctx context.Context, f models.PayoutFilter) ([]*models.Payout, error) {
	const op = "storage.postgres.FindPayouts"

	var w where
	if f.TutorID != nil {
		w.add("tutor_id=$%d", *f.TutorID)
	}
	if f.Status != nil {
		w.add("status=$%d", string(*f.Status))
	}
	if f.Year != nil {
		w.add("period_year=$%d", *f.Year)
	}
	if f.Month != nil {
		w.add("period_month=$%d", int(*f.Month))
	}

	payouts := make([]*models.Payout, 0)
	query := `SELECT ` + payoutColumns + ` FROM payouts` + w.String() + ` ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &payouts, query, w.args...); err != nil {
		return nil, mapErr(op, err)
	}

	return payouts, nil
}

func (s *Storage) UpdatePayoutPenalty(ctx context.Context, p *models.Payout) error {
	const op = "storage.postgres.UpdatePayoutPenalty"

	res, err := s.db.ExecContext(ctx,
		`UPDATE payouts
		SET payout_amount=$1, penalty_percentage=$2, penalty_reason=$3, updated_at=now()
		WHERE id=$4`,
		p.PayoutAmount,
		p.PenaltyPercentage,
		p.PenaltyReason,
		p.ID,
	)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}

// UpdatePayoutStatus overwrites the status; payoutDate is only written when set.
func (s *Storage) UpdatePayoutStatus(ctx context.Context, id string, status models.PayoutStatus, payoutDate *time.Time) error {
	const op = "storage.postgres.UpdatePayoutStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE payouts
		SET status=$1, payout_date=COALESCE($2::timestamptz, payout_date), updated_at=now()
		WHERE id=$3`,
		string(status),
		payoutDate,
		id,
	)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}

func (s *Storage) DeletePayout(ctx context.Context, id string) error {
	const op = "storage.postgres.DeletePayout"

	res, err := s.db.ExecContext(ctx, `DELETE FROM payouts WHERE id=$1`, id)
	if err != nil {
		return mapErr(op, err)
	}

	return expectAffected(op, res)
}
