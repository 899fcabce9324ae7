package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tutor-billing/internal/models"
	"tutor-billing/pkg/response"
)

var ErrInvalidPenaltyInput = fmt.Errorf("%w: penalty needs a percentage in (0, 100] and a reason", response.ErrValidation)

type LessonEarning struct {
	LessonID    string
	Subject     string
	TotalAmount decimal.Decimal
}

type BasePayout struct {
	TotalEarning decimal.Decimal
	PayoutAmount decimal.Decimal
}

// LessonAmount is what a single lesson bills: minutes/60 * rate, rounded to cents.
func LessonAmount(minutes int, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(decimal.NewFromInt(int64(minutes)).Mul(rate).Div(sixty))
}

func EarningsFromLessons(lessons []models.Lesson) []LessonEarning {
	earnings := make([]LessonEarning, 0, len(lessons))
	for _, l := range lessons {
		earnings = append(earnings, LessonEarning{
			LessonID:    l.ID,
			Subject:     l.Subject,
			TotalAmount: l.TotalAmount,
		})
	}
	return earnings
}

// ComputeBasePayout sums lesson totals and applies the tutor share.
func ComputeBasePayout(earnings []LessonEarning) BasePayout {
	total := decimal.Zero
	for _, e := range earnings {
		total = total.Add(e.TotalAmount)
	}

	return BasePayout{
		TotalEarning: total,
		PayoutAmount: total.Mul(tutorShare),
	}
}

// ApplyPenalty reduces the payout amount by percentage and records why.
// The reduction is taken from the current amount, so a second penalty
// compounds on the first one. Percentage must be in (0, 100]; on invalid
// input the payout is returned as is.
func ApplyPenalty(p models.Payout, percentage decimal.Decimal, reason string) (models.Payout, error) {
	reason = strings.TrimSpace(reason)
	if !percentage.IsPositive() || percentage.GreaterThan(hundred) || reason == "" {
		return p, ErrInvalidPenaltyInput
	}

	factor := decimal.NewFromInt(1).Sub(percentage.Div(hundred))

	p.PenaltyPercentage = percentage
	p.PenaltyReason = reason
	p.PayoutAmount = p.PayoutAmount.Mul(factor)

	return p, nil
}

// HasPenalty reports whether a penalty is considered applied.
func HasPenalty(p models.Payout) bool {
	return p.PenaltyPercentage.IsPositive() && strings.TrimSpace(p.PenaltyReason) != ""
}

type SubjectEarning struct {
	Subject              string
	Lessons              int
	TotalDurationMinutes int
	TotalAmount          decimal.Decimal
}

// EarningsBySubject breaks a tutor's lessons down per subject, in first-seen order.
func EarningsBySubject(lessons []models.Lesson) []SubjectEarning {
	index := make(map[string]int)
	out := make([]SubjectEarning, 0)

	for _, l := range lessons {
		i, ok := index[l.Subject]
		if !ok {
			index[l.Subject] = len(out)
			out = append(out, SubjectEarning{Subject: l.Subject, TotalAmount: decimal.Zero})
			i = len(out) - 1
		}

		out[i].Lessons++
		out[i].TotalDurationMinutes += l.DurationMinutes
		out[i].TotalAmount = out[i].TotalAmount.Add(l.TotalAmount)
	}

	return out
}
