// Package habit implements the detector state machines that turn per-tick
// landmark measurements into debounced violation reports, and the registry
// that fans one tick out across every enabled habit.
package habit

import (
	"errors"
	"time"
)

// ErrUnknownHabit is returned by registry operations for ids that were never
// registered.
var ErrUnknownHabit = errors.New("unknown habit")

// ID identifies one tracked habit.
type ID string

// Built-in habits.
const (
	MouthBreathing   ID = "mouth_breathing"
	BlinkRate        ID = "blink_rate"
	EyeRubbing       ID = "eye_rubbing"
	FaceTouching     ID = "face_touching"
	Hydration        ID = "hydration"
	Fatigue          ID = "fatigue"
	Posture          ID = "posture"
	PhoneDistraction ID = "phone_distraction"
)

// Severity grades an alert.
type Severity string

const (
	SeverityNormal Severity = "normal"
	SeverityHigh   Severity = "high"
)

// Kind selects the state-machine shape a habit runs on.
type Kind string

const (
	// KindSustained requires the metric to stay past its threshold for a
	// consecutive run of frames.
	KindSustained Kind = "sustained"
	// KindWindow counts discrete qualifying events inside a rolling window
	// and trips when too many land in it.
	KindWindow Kind = "window"
	// KindInterval trips on elapsed time alone and re-arms itself.
	KindInterval Kind = "interval"
	// KindBlink counts blink events inside a rolling window and trips when
	// too few land in it.
	KindBlink Kind = "blink"
)

// Config is the per-habit tuning record. It is immutable while held by a
// machine; Registry.Reconfigure swaps the whole record atomically. Fields
// apply per kind: sustained machines read Threshold/Above/DebounceFrames,
// window machines Threshold/Above/EventFrames/Window/MaxEvents, interval
// machines Interval, blink machines Threshold/Window/MinEvents.
type Config struct {
	ID      ID
	Kind    Kind
	Enabled bool

	// Threshold is compared strictly: violating side is metric > Threshold
	// when Above is set, metric < Threshold otherwise.
	Threshold float64
	Above     bool

	DebounceFrames int

	// EventFrames above one makes a window event require that many
	// consecutive qualifying frames; otherwise entering the qualifying zone
	// is the event.
	EventFrames int
	Window      time.Duration
	MaxEvents   int
	MinEvents   int

	Interval time.Duration

	// Evaluator geometry. OvalRX/OvalRY shape the face-touch oval;
	// PostureWidth/PostureTilt bound the posture composite.
	OvalRX       float64
	OvalRY       float64
	PostureWidth float64
	PostureTilt  float64

	Cooldown time.Duration
	Severity Severity
	Message  string
}

// Report is the outcome of one machine step. Violating is the tick-level
// trigger signal the dispatcher consumes; Cleared marks the end of a
// violation streak. Metric carries the decision variable: the raw ratio for
// sustained habits, the pruned event count for window and blink habits, and
// elapsed seconds for interval habits.
type Report struct {
	Habit     ID
	Violating bool
	Cleared   bool
	Severity  Severity
	Metric    float64
	Message   string
}

// State is a machine's current level view, read for status snapshots.
type State struct {
	Violating bool
	Metric    float64
	Detail    string
}

// Status is the externally visible per-habit state.
type Status struct {
	ID        ID      `json:"id"`
	Kind      Kind    `json:"kind"`
	Enabled   bool    `json:"enabled"`
	Violating bool    `json:"violating"`
	Metric    float64 `json:"metric"`
	Detail    string  `json:"detail"`
	Faults    uint64  `json:"faults,omitempty"`
}
