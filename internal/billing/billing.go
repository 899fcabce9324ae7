// Package billing holds the pure financial rules of the platform: grouping
// lessons into monthly subject summaries, building invoices and deposit
// documents, and computing tutor payouts. Nothing here touches storage.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tutor-billing/pkg/response"
)

const (
	// TaxRatePercent is the sales tax added on top of an invoice subtotal.
	TaxRatePercent = 6
	// TutorSharePercent is the part of lesson earnings paid out to the tutor.
	// The platform keeps the rest.
	TutorSharePercent = 75

	invoicePrefix = "INV"
	depositPrefix = "SD"
)

var (
	hundred     = decimal.NewFromInt(100)
	sixty       = decimal.NewFromInt(60)
	taxRate     = decimal.NewFromInt(TaxRatePercent).Div(hundred)
	tutorShare  = decimal.NewFromInt(TutorSharePercent).Div(hundred)
	hoursPlaces = int32(1)
	moneyPlaces = int32(2)
)

var ErrInvalidPeriod = fmt.Errorf("%w: month must be between 1 and 12", response.ErrValidation)

// Period is a calendar month. Lessons belong to it when their start time
// falls in [first day of month, first day of next month).
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, ErrInvalidPeriod
	}
	if year < 1 {
		return Period{}, fmt.Errorf("%w: year must be positive", response.ErrValidation)
	}

	return Period{Year: year, Month: month}, nil
}

func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// Range returns the half-open UTC interval covered by the period.
func (p Period) Range() (from, to time.Time) {
	from = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0)
	return from, to
}

func (p Period) Contains(t time.Time) bool {
	from, to := p.Range()
	return !t.Before(from) && t.Before(to)
}

// Code formats the period as YYYYMM.
func (p Period) Code() string {
	return fmt.Sprintf("%04d%02d", p.Year, int(p.Month))
}

func last4(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[len(id)-4:]
}

// RoundMoney rounds a currency amount to cents, halves away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// FormatMoney renders a currency amount with exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}
