package habit

import (
	"fmt"
	"time"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// Blink sub-machine phases. A blink is only counted on the closed-to-open
// transition, and a dip must survive one confirmation tick in eyeClosing
// before it counts as closed, which filters single-frame EAR noise.
type eyePhase int

const (
	eyeOpen eyePhase = iota
	eyeClosing
	eyeClosed
)

// blinkMachine is the inverted window habit: it counts blink events inside a
// rolling window and reports violating while the pruned count sits below
// MinEvents. The report is level triggered; the dispatcher cooldown spaces
// the resulting alerts. Judgment needs a full window of continuous
// observation, restarted after any frozen span, so a gap can never read as
// "no blinks". The blink log itself survives freezes.
type blinkMachine struct {
	cfg           Config
	eval          Evaluator
	phase         eyePhase
	blinks        []time.Time
	observedSince time.Time
	violating     bool
	lastEAR       float64
	detail        string
}

func (m *blinkMachine) Evaluate(s *landmark.Snapshot, _ time.Time) (float64, bool) {
	return m.eval(s)
}

func (m *blinkMachine) Step(v float64, ok bool, now time.Time) Report {
	if m.observedSince.IsZero() {
		m.observedSince = now
	}
	if ok {
		m.lastEAR = v
		m.advance(v, now)
	}

	m.blinks = pruneBefore(m.blinks, now.Add(-m.cfg.Window))
	count := len(m.blinks)

	warm := now.Sub(m.observedSince) > m.cfg.Window
	low := warm && count < m.cfg.MinEvents

	rep := Report{
		Habit:     m.cfg.ID,
		Violating: low,
		Cleared:   m.violating && !low,
		Severity:  m.cfg.Severity,
		Metric:    float64(count),
		Message:   m.cfg.Message,
	}
	m.violating = low

	switch {
	case !warm:
		m.detail = fmt.Sprintf("warming up, %d blinks so far", count)
	case low:
		m.detail = fmt.Sprintf("low blink rate: %d/%d in window", count, m.cfg.MinEvents)
	default:
		m.detail = fmt.Sprintf("blink rate ok: %d in window (EAR %.3f)", count, m.lastEAR)
	}
	return rep
}

// advance runs the blink sub-machine one tick. Equality with the threshold
// is evidence for neither side and holds the current phase.
func (m *blinkMachine) advance(ear float64, now time.Time) {
	closed := ear < m.cfg.Threshold
	open := ear > m.cfg.Threshold
	switch m.phase {
	case eyeOpen:
		if closed {
			m.phase = eyeClosing
		}
	case eyeClosing:
		if closed {
			m.phase = eyeClosed
		} else if open {
			m.phase = eyeOpen
		}
	case eyeClosed:
		if open {
			m.phase = eyeOpen
			m.blinks = append(m.blinks, now)
		}
	}
}

func (m *blinkMachine) resumed(now time.Time) {
	m.observedSince = now
}

func (m *blinkMachine) Reset(now time.Time) {
	m.blinks = nil
	m.phase = eyeOpen
	m.violating = false
	m.observedSince = now
	m.detail = "reset"
}

func (m *blinkMachine) Reconfigure(cfg Config) {
	m.cfg = cfg
}

func (m *blinkMachine) State() State {
	return State{Violating: m.violating, Metric: float64(len(m.blinks)), Detail: m.detail}
}
