// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the planner's counters. A single instance is built
// in main and handed to the components that record on it.
type Metrics struct {
	Registry *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	RemindersSent   prometheus.Counter
	RemindersFailed prometheus.Counter
	SchedulerTicks  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_commands_total",
			Help: "Inbound webhook commands by interpreted kind.",
		}, []string{"kind"}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "planner_reminders_sent_total",
			Help: "Reminder messages delivered to the transport.",
		}),
		RemindersFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "planner_reminders_failed_total",
			Help: "Reminder delivery attempts that failed.",
		}),
		SchedulerTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "planner_scheduler_ticks_total",
			Help: "Reminder scheduler scan cycles completed.",
		}),
	}
}
