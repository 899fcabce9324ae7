package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-billing/internal/models"
	"tutor-billing/pkg/response"
)

func TestLessonAmount(t *testing.T) {
	assertDecimal(t, "40", LessonAmount(60, decimal.RequireFromString("40")))
	assertDecimal(t, "37.5", LessonAmount(50, decimal.RequireFromString("45")))
	assertDecimal(t, "8.33", LessonAmount(20, decimal.RequireFromString("25")))
	assertDecimal(t, "0", LessonAmount(0, decimal.RequireFromString("25")))
}

func TestComputeBasePayout(t *testing.T) {
	tests := []struct {
		name      string
		amounts   []string
		wantTotal string
		wantPay   string
	}{
		{"no lessons", nil, "0", "0"},
		{"single lesson", []string{"100"}, "100", "75"},
		{"several lessons", []string{"40", "37.50", "8.33"}, "85.83", "64.3725"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var earnings []LessonEarning
			for _, a := range tt.amounts {
				earnings = append(earnings, LessonEarning{TotalAmount: decimal.RequireFromString(a)})
			}

			got := ComputeBasePayout(earnings)

			assertDecimal(t, tt.wantTotal, got.TotalEarning)
			assertDecimal(t, tt.wantPay, got.PayoutAmount)
			assert.True(t, got.PayoutAmount.Equal(got.TotalEarning.Mul(decimal.RequireFromString("0.75"))))
		})
	}
}

func TestEarningsFromLessons(t *testing.T) {
	lessons := []models.Lesson{
		{ID: "a", Subject: "Math", TotalAmount: decimal.RequireFromString("40")},
		{ID: "b", Subject: "Art", TotalAmount: decimal.RequireFromString("12.5")},
	}

	got := EarningsFromLessons(lessons)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].LessonID)
	assertDecimal(t, "12.5", got[1].TotalAmount)

	base := ComputeBasePayout(got)
	assertDecimal(t, "52.5", base.TotalEarning)
	assertDecimal(t, "39.375", base.PayoutAmount)
}

func TestApplyPenalty_Compounds(t *testing.T) {
	p := models.Payout{ID: "p1", PayoutAmount: decimal.NewFromInt(100), Status: models.PayoutPending}

	p, err := ApplyPenalty(p, decimal.NewFromInt(10), "late")
	require.NoError(t, err)
	assertDecimal(t, "90", p.PayoutAmount)
	assertDecimal(t, "10", p.PenaltyPercentage)
	assert.Equal(t, "late", p.PenaltyReason)
	assert.True(t, HasPenalty(p))

	p, err = ApplyPenalty(p, decimal.NewFromInt(10), "late again")
	require.NoError(t, err)
	assertDecimal(t, "81", p.PayoutAmount)
	assert.Equal(t, "late again", p.PenaltyReason)
}

func TestApplyPenalty_FullPenalty(t *testing.T) {
	p := models.Payout{ID: "p1", PayoutAmount: decimal.NewFromInt(100)}

	p, err := ApplyPenalty(p, decimal.NewFromInt(100), "no-show")
	require.NoError(t, err)
	assert.True(t, p.PayoutAmount.IsZero(), p.PayoutAmount.String())
}

func TestApplyPenalty_RejectsInvalidInput(t *testing.T) {
	original := models.Payout{ID: "p1", PayoutAmount: decimal.NewFromInt(100)}

	tests := []struct {
		name       string
		percentage decimal.Decimal
		reason     string
	}{
		{"zero percentage", decimal.Zero, "reason"},
		{"negative percentage", decimal.NewFromInt(-5), "reason"},
		{"above one hundred", decimal.NewFromInt(150), "reason"},
		{"empty reason", decimal.NewFromInt(10), ""},
		{"blank reason", decimal.NewFromInt(10), "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyPenalty(original, tt.percentage, tt.reason)

			assert.ErrorIs(t, err, ErrInvalidPenaltyInput)
			assert.ErrorIs(t, err, response.ErrValidation)
			assertDecimal(t, "100", got.PayoutAmount)
			assert.True(t, got.PenaltyPercentage.IsZero())
			assert.Empty(t, got.PenaltyReason)
			assert.False(t, HasPenalty(got))
		})
	}
}

func TestEarningsBySubject(t *testing.T) {
	start := time.Date(2024, time.February, 5, 16, 0, 0, 0, time.UTC)
	lessons := []models.Lesson{
		{Subject: "Math", DurationMinutes: 60, TotalAmount: decimal.RequireFromString("40"), StartTime: start},
		{Subject: "Art", DurationMinutes: 30, TotalAmount: decimal.RequireFromString("10"), StartTime: start},
		{Subject: "Math", DurationMinutes: 45, TotalAmount: decimal.RequireFromString("30"), StartTime: start},
	}

	got := EarningsBySubject(lessons)
	require.Len(t, got, 2)

	assert.Equal(t, "Math", got[0].Subject)
	assert.Equal(t, 2, got[0].Lessons)
	assert.Equal(t, 105, got[0].TotalDurationMinutes)
	assertDecimal(t, "70", got[0].TotalAmount)

	assert.Equal(t, "Art", got[1].Subject)
	assertDecimal(t, "10", got[1].TotalAmount)
}
