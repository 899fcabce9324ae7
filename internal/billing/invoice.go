package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tutor-billing/internal/models"
)

// Hours converts minutes to hours rounded to one decimal.
func Hours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(hoursPlaces)
}

// Line bills a subject summary. Hours are rounded before they are
// multiplied by the rate, so the amount is not exactly minutes*rate/60.
func Line(s SubjectSummary) models.InvoiceLine {
	hours := Hours(s.TotalDurationMinutes)

	return models.InvoiceLine{
		Subject: s.Subject,
		Rate:    s.HourlyRate,
		Hours:   hours,
		Amount:  RoundMoney(hours.Mul(s.HourlyRate)),
	}
}

// Tax is the sales tax owed on subtotal, rounded to cents.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return RoundMoney(subtotal.Mul(taxRate))
}

func InvoiceNumber(studentID string, p Period) string {
	return fmt.Sprintf("%s-%s-%s", invoicePrefix, p.Code(), last4(studentID))
}

// BuildInvoice turns subject summaries into an unpaid invoice. Line amounts
// are rounded individually and the subtotal is their sum. An empty summary
// list yields an invoice with no lines and zero totals.
func BuildInvoice(summaries []SubjectSummary, parent models.Parent, studentID string, p Period) models.Invoice {
	lines := make([]models.InvoiceLine, 0, len(summaries))
	subtotal := decimal.Zero

	for _, s := range summaries {
		line := Line(s)
		lines = append(lines, line)
		subtotal = subtotal.Add(line.Amount)
	}

	tax := Tax(subtotal)

	return models.Invoice{
		InvoiceNumber: InvoiceNumber(studentID, p),
		StudentID:     studentID,
		ParentID:      parent.ID,
		Lines:         lines,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         RoundMoney(subtotal.Add(tax)),
		Status:        models.InvoiceUnpaid,
		Year:          p.Year,
		Month:         p.Month,
	}
}
