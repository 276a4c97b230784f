package habit

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// Registry owns the full habit set and fans each tick out across the enabled
// ones. The set is fixed at construction; per-habit state is guarded by one
// mutex per entry so status reads and control operations interleave safely
// with the tick path. One producer is expected to call EvaluateTick.
type Registry struct {
	entries map[ID]*entry
	order   []ID
	log     *logrus.Entry
	now     func() time.Time
}

type entry struct {
	mu         sync.Mutex
	cfg        Config
	machine    Machine
	enabled    bool
	disabledAt time.Time
	faults     uint64
}

// NewRegistry builds a registry from habit configs, preserving their order
// for deterministic tick evaluation.
func NewRegistry(cfgs []Config, log *logrus.Entry) (*Registry, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Registry{
		entries: make(map[ID]*entry, len(cfgs)),
		log:     log,
		now:     time.Now,
	}
	for _, cfg := range cfgs {
		if _, dup := r.entries[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate habit %q", cfg.ID)
		}
		m, err := NewMachine(cfg)
		if err != nil {
			return nil, err
		}
		r.entries[cfg.ID] = &entry{cfg: cfg, machine: m, enabled: cfg.Enabled}
		r.order = append(r.order, cfg.ID)
	}
	return r, nil
}

// EvaluateTick runs one snapshot through every enabled habit in registration
// order and returns the reports that fired. Disabled habits are skipped
// without touching their state. A panicking evaluator degrades that habit's
// tick only: the fault is counted and logged, every other habit still runs.
func (r *Registry) EvaluateTick(snap *landmark.Snapshot, now time.Time) []Report {
	var fired []Report
	for _, id := range r.order {
		e := r.entries[id]
		e.mu.Lock()
		if !e.enabled {
			e.mu.Unlock()
			continue
		}
		rep, err := e.step(snap, now)
		e.mu.Unlock()
		if err != nil {
			r.log.WithField("habit", string(id)).WithError(err).Warn("evaluator fault, tick skipped")
			continue
		}
		if rep.Cleared {
			r.log.WithField("habit", string(id)).Debug("violation cleared")
		}
		if rep.Violating {
			fired = append(fired, rep)
		}
	}
	return fired
}

func (e *entry) step(snap *landmark.Snapshot, now time.Time) (rep Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			e.faults++
			err = fmt.Errorf("habit %q: evaluator panic: %v", e.cfg.ID, p)
		}
	}()
	v, ok := e.machine.Evaluate(snap, now)
	return e.machine.Step(v, ok, now), nil
}

// Enable turns a habit on. Re-enabling is a no-op; the machine resumes from
// its frozen state, and observation-based machines are told how long the
// freeze lasted so the gap cannot fire them.
func (r *Registry) Enable(id ID) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.enabled {
		return nil
	}
	e.enabled = true
	if res, ok := e.machine.(resumer); ok && !e.disabledAt.IsZero() {
		res.resumed(r.now())
	}
	e.disabledAt = time.Time{}
	r.log.WithField("habit", string(id)).Info("habit enabled")
	return nil
}

// Disable freezes a habit. Counters and event logs are kept so a later
// Enable resumes rather than restarts. Disabling twice is a no-op.
func (r *Registry) Disable(id ID) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.enabled {
		return nil
	}
	e.enabled = false
	e.disabledAt = r.now()
	r.log.WithField("habit", string(id)).Info("habit disabled")
	return nil
}

// Reset clears a habit's accumulated state. It works on disabled habits too;
// an explicit reset is the one way to discard state while frozen.
func (r *Registry) Reset(id ID) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.Reset(r.now())
	return nil
}

// Reconfigure swaps a habit's config atomically. Accumulated state survives
// unless reset is set. The machine kind is structural and cannot change.
// Enablement is not touched; use Enable and Disable for that.
func (r *Registry) Reconfigure(id ID, cfg Config, reset bool) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.Kind != e.cfg.Kind {
		return fmt.Errorf("habit %q: kind %q cannot change to %q", id, e.cfg.Kind, cfg.Kind)
	}
	cfg.ID = id
	e.cfg = cfg
	e.machine.Reconfigure(cfg)
	if reset {
		e.machine.Reset(r.now())
	}
	return nil
}

// Statuses returns the current per-habit view. Safe to call concurrently
// with ticking; each entry is locked just long enough to copy its state.
func (r *Registry) Statuses() map[ID]Status {
	out := make(map[ID]Status, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		e.mu.Lock()
		st := e.machine.State()
		out[id] = Status{
			ID:        id,
			Kind:      e.cfg.Kind,
			Enabled:   e.enabled,
			Violating: st.Violating,
			Metric:    st.Metric,
			Detail:    st.Detail,
			Faults:    e.faults,
		}
		e.mu.Unlock()
	}
	return out
}

// Config returns a copy of a habit's current config.
func (r *Registry) Config(id ID) (Config, error) {
	e, err := r.entry(id)
	if err != nil {
		return Config{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg, nil
}

// IDs returns the habit ids in registration order.
func (r *Registry) IDs() []ID {
	out := make([]ID, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) entry(id ID) (*entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHabit, id)
	}
	return e, nil
}
