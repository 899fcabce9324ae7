package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoiceSent   InvoiceStatus = "sent"
	InvoicePaid   InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceUnpaid, InvoiceSent, InvoicePaid:
		return true
	}
	return false
}

type DepositStatus string

const (
	DepositDraft  DepositStatus = "draft"
	DepositSent   DepositStatus = "sent"
	DepositPaid   DepositStatus = "paid"
	DepositUnpaid DepositStatus = "unpaid"
)

func (s DepositStatus) Valid() bool {
	switch s {
	case DepositDraft, DepositSent, DepositPaid, DepositUnpaid:
		return true
	}
	return false
}

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "Pending"
	PayoutInProcess PayoutStatus = "In Process"
	PayoutCompleted PayoutStatus = "Completed"
)

func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutPending, PayoutInProcess, PayoutCompleted:
		return true
	}
	return false
}

type Parent struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

type Student struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	ParentID  string    `db:"parent_id"`
	CreatedAt time.Time `db:"created_at"`
}

type Tutor struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

// Lesson is one logged tutoring session. TotalAmount is fixed when the
// lesson is logged and is what tutor payouts are summed from.
type Lesson struct {
	ID              string          `db:"id"`
	StudentID       string          `db:"student_id"`
	TutorID         string          `db:"tutor_id"`
	Subject         string          `db:"subject"`
	StartTime       time.Time       `db:"start_time"`
	DurationMinutes int             `db:"duration_minutes"`
	HourlyRate      decimal.Decimal `db:"hourly_rate"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Notes           string          `db:"notes"`
	CreatedAt       time.Time       `db:"created_at"`
}

type LessonFilter struct {
	StudentID *string
	TutorID   *string
	From      *time.Time
	To        *time.Time
}

type InvoiceLine struct {
	Subject string          `db:"subject" json:"subject"`
	Rate    decimal.Decimal `db:"rate" json:"rate"`
	Hours   decimal.Decimal `db:"hours" json:"hours"`
	Amount  decimal.Decimal `db:"amount" json:"amount"`
}

type Invoice struct {
	ID            string          `db:"id"`
	InvoiceNumber string          `db:"invoice_number"`
	StudentID     string          `db:"student_id"`
	ParentID      string          `db:"parent_id"`
	Lines         []InvoiceLine   `db:"-"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	Tax           decimal.Decimal `db:"tax"`
	Total         decimal.Decimal `db:"total"`
	Status        InvoiceStatus   `db:"status"`
	Year          int             `db:"period_year"`
	Month         time.Month      `db:"period_month"`
	CreatedAt     time.Time       `db:"created_at"`
}

type InvoiceFilter struct {
	StudentID *string
	ParentID  *string
	Status    *InvoiceStatus
	Year      *int
	Month     *time.Month
}

type SecurityDeposit struct {
	ID            string          `db:"id"`
	InvoiceNumber string          `db:"invoice_number"`
	StudentID     string          `db:"student_id"`
	ParentID      string          `db:"parent_id"`
	Amount        decimal.Decimal `db:"amount"`
	Status        DepositStatus   `db:"status"`
	Date          time.Time       `db:"deposit_date"`
	CreatedAt     time.Time       `db:"created_at"`
}

type DepositFilter struct {
	StudentID *string
	ParentID  *string
	Status    *DepositStatus
}

// Payout is a tutor's earnings for one calendar month. PenaltyReason is
// only meaningful when PenaltyPercentage is positive.
type Payout struct {
	ID                string          `db:"id"`
	TutorID           string          `db:"tutor_id"`
	Year              int             `db:"period_year"`
	Month             time.Month      `db:"period_month"`
	TotalEarning      decimal.Decimal `db:"total_earning"`
	PayoutAmount      decimal.Decimal `db:"payout_amount"`
	PenaltyPercentage decimal.Decimal `db:"penalty_percentage"`
	PenaltyReason     string          `db:"penalty_reason"`
	Status            PayoutStatus    `db:"status"`
	PayoutDate        *time.Time      `db:"payout_date"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

type PayoutFilter struct {
	TutorID *string
	Status  *PayoutStatus
	Year    *int
	Month   *time.Month
}
