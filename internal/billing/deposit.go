package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tutor-billing/internal/models"
	"tutor-billing/pkg/response"
)

var ErrInvalidDepositAmount = fmt.Errorf("%w: deposit amount must be positive", response.ErrValidation)

func DepositNumber(studentID string, date time.Time) string {
	return fmt.Sprintf("%s-%s-%s", depositPrefix, date.Format("20060102"), last4(studentID))
}

// BuildSecurityDeposit prepares a draft deposit document for a student's
// enrollment.
func BuildSecurityDeposit(student models.Student, amount decimal.Decimal, date time.Time) (models.SecurityDeposit, error) {
	if !amount.IsPositive() {
		return models.SecurityDeposit{}, ErrInvalidDepositAmount
	}

	return models.SecurityDeposit{
		InvoiceNumber: DepositNumber(student.ID, date),
		StudentID:     student.ID,
		ParentID:      student.ParentID,
		Amount:        RoundMoney(amount),
		Status:        models.DepositDraft,
		Date:          date,
	}, nil
}
