package habit

import (
	"fmt"
	"time"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// windowMachine counts discrete qualifying events inside a rolling window.
// An event is either the metric entering its qualifying zone (EventFrames at
// most one) or holding in the zone for EventFrames consecutive ticks. The
// log is pruned before every count, and a violating report fires on each
// event that lands while the pruned count is at or past MaxEvents, so a
// burst that stays over the limit keeps re-triggering but idle ticks do not.
type windowMachine struct {
	cfg        Config
	eval       Evaluator
	inZone     bool
	zoneFrames int
	events     []time.Time
	violating  bool
	lastValue  float64
	detail     string
}

func (m *windowMachine) Evaluate(s *landmark.Snapshot, _ time.Time) (float64, bool) {
	return m.eval(s)
}

func (m *windowMachine) Step(v float64, ok bool, now time.Time) Report {
	rep := Report{Habit: m.cfg.ID, Severity: m.cfg.Severity, Message: m.cfg.Message}

	event := false
	if ok {
		m.lastValue = v
		q := exceeds(&m.cfg, v)
		if m.cfg.EventFrames > 1 {
			if q {
				m.zoneFrames++
				if m.zoneFrames == m.cfg.EventFrames {
					event = true
				}
			} else {
				m.zoneFrames = 0
			}
		} else {
			event = q && !m.inZone
			m.inZone = q
		}
	} else {
		// A dropout ends the current contact; re-entry counts fresh.
		m.inZone = false
		m.zoneFrames = 0
	}

	m.events = pruneBefore(m.events, now.Add(-m.cfg.Window))
	if event {
		m.events = append(m.events, now)
	}
	count := len(m.events)

	rep.Violating = event && count >= m.cfg.MaxEvents
	wasViolating := m.violating
	m.violating = count >= m.cfg.MaxEvents
	rep.Cleared = wasViolating && !m.violating
	rep.Metric = float64(count)
	m.detail = fmt.Sprintf("%d/%d events in window (last %.3f)", count, m.cfg.MaxEvents, m.lastValue)
	return rep
}

func (m *windowMachine) Reset(_ time.Time) {
	m.events = nil
	m.inZone = false
	m.zoneFrames = 0
	m.violating = false
	m.detail = "reset"
}

func (m *windowMachine) Reconfigure(cfg Config) {
	m.cfg = cfg
}

func (m *windowMachine) State() State {
	return State{Violating: m.violating, Metric: float64(len(m.events)), Detail: m.detail}
}
