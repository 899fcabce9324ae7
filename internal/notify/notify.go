package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"tutor-billing/internal/billing"
	"tutor-billing/internal/models"
)

type Message struct {
	To      mail.Address
	Ref     string // id of the stored document the message is about
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages synchronously; a returned error means the
// message was not accepted by the provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

func InvoiceMessage(parent models.Parent, student models.Student, inv models.Invoice) Message {
	var text strings.Builder

	fmt.Fprintf(&text, "Dear %s,\n\n", parent.Name)
	fmt.Fprintf(&text, "Please find the tutoring invoice %s for %s (%04d-%02d).\n\n",
		inv.InvoiceNumber, student.Name, inv.Year, int(inv.Month))
	fmt.Fprintf(&text, "Issued: %s\n\n", inv.CreatedAt.Format("2006-01-02"))

	for _, l := range inv.Lines {
		fmt.Fprintf(&text, "  %-20s %5sh x %8s = %10s\n",
			l.Subject, l.Hours.StringFixed(1), billing.FormatMoney(l.Rate), billing.FormatMoney(l.Amount))
	}

	fmt.Fprintf(&text, "\nSubtotal: %s\n", billing.FormatMoney(inv.Subtotal))
	fmt.Fprintf(&text, "Tax (%d%%): %s\n", billing.TaxRatePercent, billing.FormatMoney(inv.Tax))
	fmt.Fprintf(&text, "Total: %s\n", billing.FormatMoney(inv.Total))

	return Message{
		To:      mail.Address{Name: parent.Name, Address: parent.Email},
		Ref:     inv.ID,
		Subject: fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
		Text:    text.String(),
	}
}

func DepositMessage(parent models.Parent, student models.Student, dep models.SecurityDeposit) Message {
	var text strings.Builder

	fmt.Fprintf(&text, "Dear %s,\n\n", parent.Name)
	fmt.Fprintf(&text, "A security deposit of %s is due for the enrollment of %s.\n",
		billing.FormatMoney(dep.Amount), student.Name)
	fmt.Fprintf(&text, "Reference: %s (%s)\n", dep.InvoiceNumber, dep.Date.Format("2006-01-02"))

	return Message{
		To:      mail.Address{Name: parent.Name, Address: parent.Email},
		Ref:     dep.ID,
		Subject: fmt.Sprintf("Security deposit %s", dep.InvoiceNumber),
		Text:    text.String(),
	}
}
