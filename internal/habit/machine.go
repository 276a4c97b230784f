package habit

import (
	"fmt"
	"time"

	"github.com/jbw9/HabitReminder/internal/landmark"
	"github.com/jbw9/HabitReminder/internal/metric"
)

// Evaluator derives one habit's scalar measurement from a snapshot. The
// second return is false when the snapshot cannot support the measurement;
// such ticks never advance a machine toward violation.
type Evaluator func(*landmark.Snapshot) (float64, bool)

// Machine is one habit's state machine. Evaluate is pure with respect to
// machine state; Step advances the machine by one tick and reports what
// fired. Callers serialize access per machine.
type Machine interface {
	Evaluate(s *landmark.Snapshot, now time.Time) (float64, bool)
	Step(value float64, ok bool, now time.Time) Report
	Reset(now time.Time)
	Reconfigure(cfg Config)
	State() State
}

// resumer is implemented by machines whose judgment depends on continuous
// observation. The registry calls it when a habit comes back from a frozen
// span so the gap cannot be mistaken for observed time.
type resumer interface {
	resumed(now time.Time)
}

// NewMachine builds the state machine for one habit config.
func NewMachine(cfg Config) (Machine, error) {
	switch cfg.Kind {
	case KindSustained:
		m := &sustainedMachine{cfg: cfg}
		eval, err := bindEvaluator(cfg.ID, &m.cfg)
		if err != nil {
			return nil, err
		}
		m.eval = eval
		return m, nil
	case KindWindow:
		m := &windowMachine{cfg: cfg}
		eval, err := bindEvaluator(cfg.ID, &m.cfg)
		if err != nil {
			return nil, err
		}
		m.eval = eval
		return m, nil
	case KindBlink:
		m := &blinkMachine{cfg: cfg}
		eval, err := bindEvaluator(cfg.ID, &m.cfg)
		if err != nil {
			return nil, err
		}
		m.eval = eval
		return m, nil
	case KindInterval:
		return &intervalMachine{cfg: cfg}, nil
	}
	return nil, fmt.Errorf("habit %q: unknown kind %q", cfg.ID, cfg.Kind)
}

// bindEvaluator resolves the measurement for a habit. Closures read geometry
// through the machine's config pointer so reconfigured radii take effect on
// the next tick.
func bindEvaluator(id ID, cfg *Config) (Evaluator, error) {
	switch id {
	case MouthBreathing, Fatigue:
		return metric.MouthAspectRatio, nil
	case BlinkRate:
		return metric.EyeAspectRatio, nil
	case EyeRubbing:
		return metric.HandEyeDistance, nil
	case FaceTouching:
		return func(s *landmark.Snapshot) (float64, bool) {
			return metric.FaceOvalDistance(s, cfg.OvalRX, cfg.OvalRY)
		}, nil
	case Posture:
		return func(s *landmark.Snapshot) (float64, bool) {
			return metric.PostureExcess(s, cfg.PostureWidth, cfg.PostureTilt)
		}, nil
	case PhoneDistraction:
		return metric.HeadDownOffset, nil
	}
	return nil, fmt.Errorf("habit %q: no metric evaluator", id)
}

// exceeds reports whether a value sits strictly on the violating side of the
// configured threshold. Equality is never violating, so a metric pinned
// exactly at threshold cannot flap.
func exceeds(cfg *Config, v float64) bool {
	if cfg.Above {
		return v > cfg.Threshold
	}
	return v < cfg.Threshold
}

// pruneBefore drops timestamps strictly older than the window, preserving
// order. It returns the pruned slice sharing the original backing array.
func pruneBefore(events []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(events) && events[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return events
	}
	return append(events[:0], events[i:]...)
}
