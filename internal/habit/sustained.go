package habit

import (
	"fmt"
	"time"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// sustainedMachine trips after the metric holds strictly past its threshold
// for DebounceFrames consecutive ticks. The report is edge triggered: one
// violating report per continuous streak, one cleared report when the streak
// breaks. The frame counter keeps growing past the debounce so a streak can
// never re-fire until it has been broken.
type sustainedMachine struct {
	cfg       Config
	eval      Evaluator
	streak    int
	violating bool
	metric    float64
	detail    string
}

func (m *sustainedMachine) Evaluate(s *landmark.Snapshot, _ time.Time) (float64, bool) {
	return m.eval(s)
}

func (m *sustainedMachine) Step(v float64, ok bool, _ time.Time) Report {
	rep := Report{Habit: m.cfg.ID, Severity: m.cfg.Severity, Message: m.cfg.Message}

	if !ok {
		// Missing data never advances toward violation.
		m.streak = 0
		rep.Cleared = m.clear()
		m.detail = "no data"
		rep.Metric = m.metric
		return rep
	}

	m.metric = v
	rep.Metric = v
	if exceeds(&m.cfg, v) {
		m.streak++
		m.detail = fmt.Sprintf("held %d/%d frames (%.3f)", m.streak, m.cfg.DebounceFrames, v)
		if m.streak >= m.cfg.DebounceFrames && !m.violating {
			m.violating = true
			rep.Violating = true
		}
	} else {
		m.streak = 0
		rep.Cleared = m.clear()
		m.detail = fmt.Sprintf("clear (%.3f)", v)
	}
	return rep
}

func (m *sustainedMachine) clear() bool {
	if !m.violating {
		return false
	}
	m.violating = false
	return true
}

func (m *sustainedMachine) Reset(_ time.Time) {
	m.streak = 0
	m.violating = false
	m.detail = "reset"
}

func (m *sustainedMachine) Reconfigure(cfg Config) {
	m.cfg = cfg
}

func (m *sustainedMachine) State() State {
	return State{Violating: m.violating, Metric: m.metric, Detail: m.detail}
}
