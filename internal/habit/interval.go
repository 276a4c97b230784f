package habit

import (
	"fmt"
	"time"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// intervalMachine trips once elapsed time since the last reset or alert
// strictly exceeds the interval, then re-arms itself, producing a reminder
// per interval for as long as it runs. Elapsed time is wall clock: a span
// spent disabled still counts, because the condition is real time passing,
// not observation.
type intervalMachine struct {
	cfg    Config
	start  time.Time
	metric float64
	detail string
}

func (m *intervalMachine) Evaluate(_ *landmark.Snapshot, now time.Time) (float64, bool) {
	if m.start.IsZero() {
		return 0, true
	}
	return now.Sub(m.start).Seconds(), true
}

func (m *intervalMachine) Step(_ float64, _ bool, now time.Time) Report {
	if m.start.IsZero() {
		m.start = now
	}
	elapsed := now.Sub(m.start)
	m.metric = elapsed.Seconds()

	rep := Report{Habit: m.cfg.ID, Severity: m.cfg.Severity, Metric: m.metric, Message: m.cfg.Message}
	if elapsed > m.cfg.Interval {
		m.start = now
		rep.Violating = true
		m.detail = "reminder fired"
		return rep
	}

	remaining := m.cfg.Interval - elapsed
	m.detail = fmt.Sprintf("next reminder in %s", remaining.Round(time.Second))
	return rep
}

// Reset re-arms the interval from now, clearing any pending violation. For
// hydration this is the "I drank water" acknowledgement.
func (m *intervalMachine) Reset(now time.Time) {
	m.start = now
	m.metric = 0
	m.detail = "timer reset"
}

func (m *intervalMachine) Reconfigure(cfg Config) {
	m.cfg = cfg
}

func (m *intervalMachine) State() State {
	return State{Violating: false, Metric: m.metric, Detail: m.detail}
}
