package notify

import (
	"context"
	"log/slog"
)

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	log *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log.With(slog.String("component", "notify/log"))}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email",
		slog.String("to", msg.To.String()),
		slog.String("ref", msg.Ref),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Text),
	)
	return nil
}
