// Package transport defines the outbound message-sending contract.
package transport

import (
	"context"
	"log/slog"
)

// Sender delivers one message body to one recipient address. Send must
// honor ctx for its deadline; implementations return an error describing
// the failure reason.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// LogSender writes messages to the log instead of a real channel. Used
// when no messaging credentials are configured (local development).
type LogSender struct {
	Logger *slog.Logger
}

func (l LogSender) Send(_ context.Context, to, body string) error {
	l.Logger.Info("message (log transport)", "to", to, "body", body)
	return nil
}
