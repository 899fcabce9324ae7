package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ParentRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type ParentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type StudentRequest struct {
	Name     string `json:"name" validate:"required"`
	ParentID string `json:"parent_id" validate:"required"`
}

type StudentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

type TutorRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type TutorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type LessonRequest struct {
	StudentID       string          `json:"student_id" validate:"required"`
	TutorID         string          `json:"tutor_id" validate:"required"`
	Subject         string          `json:"subject" validate:"required"`
	StartTime       string          `json:"start_time" validate:"required"`
	DurationMinutes int             `json:"duration_minutes" validate:"gte=0"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	Notes           string          `json:"notes"`
}

// LessonUpdateRequest carries the clerical fields of a lesson; student and
// tutor cannot be changed.
type LessonUpdateRequest struct {
	Subject         string          `json:"subject" validate:"required"`
	StartTime       string          `json:"start_time" validate:"required"`
	DurationMinutes int             `json:"duration_minutes" validate:"gte=0"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	Notes           string          `json:"notes"`
}

type LessonResponse struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	TutorID         string    `json:"tutor_id"`
	Subject         string    `json:"subject"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	HourlyRate      string    `json:"hourly_rate"`
	TotalAmount     string    `json:"total_amount"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type InvoiceRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Year      int    `json:"year" validate:"required,gte=1"`
	Month     int    `json:"month" validate:"required,min=1,max=12"`
}

type InvoiceLineResponse struct {
	Subject string `json:"subject"`
	Rate    string `json:"rate"`
	Hours   string `json:"hours"`
	Amount  string `json:"amount"`
}

type InvoiceResponse struct {
	ID            string                `json:"id,omitempty"`
	InvoiceNumber string                `json:"invoice_number"`
	StudentID     string                `json:"student_id"`
	ParentID      string                `json:"parent_id"`
	Lines         []InvoiceLineResponse `json:"lines"`
	Subtotal      string                `json:"subtotal"`
	Tax           string                `json:"tax"`
	Total         string                `json:"total"`
	Status        string                `json:"status"`
	Year          int                   `json:"year"`
	Month         int                   `json:"month"`
	CreatedAt     *time.Time            `json:"created_at,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type DepositRequest struct {
	StudentID string          `json:"student_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	// Date is YYYY-MM-DD; today when empty.
	Date string `json:"date,omitempty"`
}

type DepositResponse struct {
	ID            string    `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	StudentID     string    `json:"student_id"`
	ParentID      string    `json:"parent_id"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

type PayoutGenerateRequest struct {
	TutorID string `json:"tutor_id" validate:"required"`
	Year    int    `json:"year" validate:"required,gte=1"`
	Month   int    `json:"month" validate:"required,min=1,max=12"`
}

type PenaltyRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
	Reason     string          `json:"reason"`
}

type PayoutResponse struct {
	ID                string     `json:"id"`
	TutorID           string     `json:"tutor_id"`
	Year              int        `json:"year"`
	Month             int        `json:"month"`
	TotalEarning      string     `json:"total_earning"`
	PayoutAmount      string     `json:"payout_amount"`
	PenaltyPercentage string     `json:"penalty_percentage"`
	PenaltyReason     string     `json:"penalty_reason,omitempty"`
	Status            string     `json:"status"`
	PayoutDate        *time.Time `json:"payout_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type SubjectEarningResponse struct {
	Subject              string `json:"subject"`
	Lessons              int    `json:"lessons"`
	TotalDurationMinutes int    `json:"total_duration_minutes"`
	TotalAmount          string `json:"total_amount"`
}

type EarningsResponse struct {
	TutorID      string                   `json:"tutor_id"`
	Year         int                      `json:"year"`
	Month        int                      `json:"month"`
	Subjects     []SubjectEarningResponse `json:"subjects"`
	TotalEarning string                   `json:"total_earning"`
	PayoutAmount string                   `json:"payout_amount"`
	PlatformFee  string                   `json:"platform_fee"`
}
