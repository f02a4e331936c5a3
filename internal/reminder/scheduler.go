package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/simoamogit/progetto-scuola/internal/domain"
	"github.com/simoamogit/progetto-scuola/internal/metrics"
	"github.com/simoamogit/progetto-scuola/internal/storage"
)

// Scheduler owns the recurring reminder scan. It is constructed with its
// dependencies, started once from main, and stopped on shutdown; there
// is no ambient global timer.
type Scheduler struct {
	store      storage.EventStore
	dispatcher *Dispatcher
	interval   time.Duration
	now        func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics

	cron       *cron.Cron
	gate       context.Context
	tickCtx    context.Context
	tickCancel context.CancelFunc
}

func NewScheduler(store storage.EventStore, dispatcher *Dispatcher, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		store:      store,
		dispatcher: dispatcher,
		interval:   interval,
		now:        time.Now,
		logger:     logger.With("component", "scheduler"),
		metrics:    m,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start registers the tick job and starts the cron runner. An overlapping
// tick is skipped rather than stacked. ctx gates new ticks only; a tick
// already running when ctx is canceled finishes on its own context,
// which Stop cancels after the drain.
func (s *Scheduler) Start(ctx context.Context) error {
	s.gate = ctx
	s.tickCtx, s.tickCancel = context.WithCancel(context.WithoutCancel(ctx))
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "interval", s.interval.String())
	return nil
}

// Stop halts the timer and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.tickCancel()
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) tick() {
	if s.gate.Err() != nil {
		return
	}
	s.RunTick(s.tickCtx)
}

// RunTick performs one scan-and-dispatch cycle: find the events falling
// exactly one day ahead and notify each pending one independently. A
// delivery failure leaves the event pending for a later tick and never
// aborts the rest of the batch.
func (s *Scheduler) RunTick(ctx context.Context) {
	threshold := s.now().AddDate(0, 0, 1).Format(domain.DateLayout)

	events, err := s.store.ByDate(ctx, threshold)
	if err != nil {
		s.logger.Error("reminder scan failed", "date", threshold, "err", err)
		return
	}
	s.metrics.SchedulerTicks.Inc()
	if len(events) == 0 {
		return
	}
	s.logger.Debug("reminder scan", "date", threshold, "due", len(events))

	for _, ev := range events {
		if ev.Notified {
			continue
		}
		if err := s.dispatcher.Notify(ctx, ev); err != nil {
			// Already logged by the dispatcher; retried on a later tick.
			continue
		}
		ok, err := s.store.MarkNotified(ctx, ev.ID)
		if err != nil {
			s.logger.Error("mark notified failed", "event_id", ev.ID, "err", err)
			continue
		}
		if !ok {
			s.logger.Warn("event already notified by a concurrent tick", "event_id", ev.ID)
		}
	}
}
