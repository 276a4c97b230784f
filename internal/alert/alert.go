// Package alert rate limits violation reports into alert events and hands
// them to delivery sinks.
package alert

import (
	"time"

	"github.com/jbw9/HabitReminder/internal/habit"
)

// Event is one delivered alert. At most one event per habit leaves the
// dispatcher per cooldown span.
type Event struct {
	ID        string         `json:"id"`
	Habit     habit.ID       `json:"habit"`
	Severity  habit.Severity `json:"severity"`
	Message   string         `json:"message"`
	Metric    float64        `json:"metric"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink delivers events to one destination. Delivery gets a single attempt;
// a failing sink loses the event.
type Sink interface {
	Deliver(ev Event) error
}
