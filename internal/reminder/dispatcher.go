// Package reminder contains the day-before reminder pipeline: a cron
// driven scheduler that scans for events due tomorrow and a dispatcher
// that delivers one message per due event.
package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simoamogit/progetto-scuola/internal/domain"
	"github.com/simoamogit/progetto-scuola/internal/metrics"
	"github.com/simoamogit/progetto-scuola/internal/transport"
)

// Dispatcher formats and sends the reminder for a single event. Failures
// are recorded and returned but never panic, so a bad event cannot take
// down the batch it is part of.
type Dispatcher struct {
	sender    transport.Sender
	recipient string
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewDispatcher(sender transport.Sender, recipient string, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		recipient: recipient,
		logger:    logger.With("component", "dispatcher"),
		metrics:   m,
	}
}

// Body returns the deterministic reminder text for an event.
func Body(ev domain.Event) string {
	return fmt.Sprintf("Reminder: you have a %s check tomorrow at %s!", ev.Subject, ev.Time)
}

// Notify sends the reminder for ev to the configured recipient. Every
// attempt is logged and counted; no retry happens here.
func (d *Dispatcher) Notify(ctx context.Context, ev domain.Event) error {
	if err := d.sender.Send(ctx, d.recipient, Body(ev)); err != nil {
		d.metrics.RemindersFailed.Inc()
		d.logger.Error("reminder delivery failed", "event_id", ev.ID, "subject", ev.Subject, "err", err)
		return fmt.Errorf("notify event %d: %w", ev.ID, err)
	}
	d.metrics.RemindersSent.Inc()
	d.logger.Info("reminder sent", "event_id", ev.ID, "subject", ev.Subject, "date", ev.Date, "time", ev.Time)
	return nil
}
