package habit

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

func quietLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestRegistry(t *testing.T, cfgs ...Config) *Registry {
	t.Helper()
	r, err := NewRegistry(cfgs, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// quickMouth is the mouth-breathing habit with a three-frame debounce so
// registry tests do not need hundreds of ticks.
func quickMouth() Config {
	cfg := mouthConfig()
	cfg.DebounceFrames = 3
	return cfg
}

// faultyMachine stands in for a machine whose evaluator hits a panic on a
// malformed snapshot.
type faultyMachine struct{}

func (faultyMachine) Evaluate(*landmark.Snapshot, time.Time) (float64, bool) {
	panic("landmark index out of range")
}
func (faultyMachine) Step(float64, bool, time.Time) Report { return Report{} }
func (faultyMachine) Reset(time.Time)                      {}
func (faultyMachine) Reconfigure(Config)                   {}
func (faultyMachine) State() State                         { return State{} }

func TestRegistryUnknownHabit(t *testing.T) {
	r := newTestRegistry(t, quickMouth())

	if err := r.Enable("juggling"); !errors.Is(err, ErrUnknownHabit) {
		t.Errorf("Enable: expected ErrUnknownHabit, got %v", err)
	}
	if err := r.Disable("juggling"); !errors.Is(err, ErrUnknownHabit) {
		t.Errorf("Disable: expected ErrUnknownHabit, got %v", err)
	}
	if err := r.Reset("juggling"); !errors.Is(err, ErrUnknownHabit) {
		t.Errorf("Reset: expected ErrUnknownHabit, got %v", err)
	}
	if err := r.Reconfigure("juggling", quickMouth(), false); !errors.Is(err, ErrUnknownHabit) {
		t.Errorf("Reconfigure: expected ErrUnknownHabit, got %v", err)
	}
	if _, err := r.Config("juggling"); !errors.Is(err, ErrUnknownHabit) {
		t.Errorf("Config: expected ErrUnknownHabit, got %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry([]Config{quickMouth(), quickMouth()}, quietLog()); err == nil {
		t.Fatal("expected an error for a duplicate habit id")
	}
}

func TestRegistryEnableDisable(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tick := func(i int) time.Time { return start.Add(time.Duration(i) * 33 * time.Millisecond) }
	open := landmark.Snap(start, landmark.OpenMouthFace())

	t.Run("idempotent in both directions", func(t *testing.T) {
		r := newTestRegistry(t, quickMouth())
		for i := 0; i < 2; i++ {
			if err := r.Disable(MouthBreathing); err != nil {
				t.Fatal(err)
			}
		}
		if r.Statuses()[MouthBreathing].Enabled {
			t.Error("expected the habit to report disabled")
		}
		for i := 0; i < 2; i++ {
			if err := r.Enable(MouthBreathing); err != nil {
				t.Fatal(err)
			}
		}
		if !r.Statuses()[MouthBreathing].Enabled {
			t.Error("expected the habit to report enabled")
		}
	})

	t.Run("disabled habits are skipped, not reset", func(t *testing.T) {
		r := newTestRegistry(t, quickMouth())

		// Two of the three debounce frames, then a freeze.
		r.EvaluateTick(open, tick(1))
		r.EvaluateTick(open, tick(2))
		if err := r.Disable(MouthBreathing); err != nil {
			t.Fatal(err)
		}
		for i := 3; i < 40; i++ {
			if reps := r.EvaluateTick(open, tick(i)); len(reps) != 0 {
				t.Fatalf("disabled habit produced a report on tick %d", i)
			}
		}

		// The retained streak completes on the first tick back.
		if err := r.Enable(MouthBreathing); err != nil {
			t.Fatal(err)
		}
		reps := r.EvaluateTick(open, tick(40))
		if len(reps) != 1 || reps[0].Habit != MouthBreathing {
			t.Fatalf("expected the resumed streak to fire, got %v", reps)
		}
	})

	t.Run("reset clears state while disabled", func(t *testing.T) {
		r := newTestRegistry(t, quickMouth())

		r.EvaluateTick(open, tick(1))
		r.EvaluateTick(open, tick(2))
		if err := r.Disable(MouthBreathing); err != nil {
			t.Fatal(err)
		}
		if err := r.Reset(MouthBreathing); err != nil {
			t.Fatal(err)
		}
		if err := r.Enable(MouthBreathing); err != nil {
			t.Fatal(err)
		}

		// The old streak is gone; a full three fresh frames are needed.
		if reps := r.EvaluateTick(open, tick(3)); len(reps) != 0 {
			t.Fatalf("expected no report after reset, got %v", reps)
		}
		r.EvaluateTick(open, tick(4))
		if reps := r.EvaluateTick(open, tick(5)); len(reps) != 1 {
			t.Fatalf("expected the fresh streak to fire on its third frame, got %v", reps)
		}
	})
}

func TestRegistryBlinkResume(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	r := newTestRegistry(t, blinkConfig())

	clk := start
	r.now = func() time.Time { return clk }
	neutral := landmark.Snap(start, landmark.NeutralFace())

	// A couple of warm-up ticks, then a ten minute freeze with no blinks.
	r.EvaluateTick(neutral, start)
	r.EvaluateTick(neutral, start.Add(2*time.Second))
	clk = start.Add(2 * time.Second)
	if err := r.Disable(BlinkRate); err != nil {
		t.Fatal(err)
	}
	clk = start.Add(10 * time.Minute)
	if err := r.Enable(BlinkRate); err != nil {
		t.Fatal(err)
	}

	// The frozen span must not read as a minute without blinks.
	if reps := r.EvaluateTick(neutral, clk); len(reps) != 0 {
		t.Fatalf("re-enable tick produced a report from the frozen gap: %v", reps)
	}

	// A fresh observed minute without blinks still gets judged.
	reps := r.EvaluateTick(neutral, clk.Add(61*time.Second))
	if len(reps) != 1 || reps[0].Habit != BlinkRate {
		t.Fatalf("expected a blink-rate report after a fresh observed minute, got %v", reps)
	}
}

func TestRegistryFaultIsolation(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	rub := Config{
		ID: EyeRubbing, Kind: KindWindow, Enabled: true,
		Threshold: 0.02, Above: false, MaxEvents: 1, Window: 30 * time.Second,
		Severity: SeverityNormal, Message: "Stop rubbing your eyes!",
	}
	r := newTestRegistry(t, quickMouth(), rub)
	r.entries[MouthBreathing].machine = faultyMachine{}

	snap := landmark.Snap(start, landmark.NeutralFace(), landmark.HandAtEye())
	reps := r.EvaluateTick(snap, start)
	if len(reps) != 1 || reps[0].Habit != EyeRubbing {
		t.Fatalf("expected the healthy habit to fire despite the fault, got %v", reps)
	}

	r.EvaluateTick(snap, start.Add(time.Second))
	if got := r.Statuses()[MouthBreathing].Faults; got != 2 {
		t.Errorf("expected 2 recorded faults, got %d", got)
	}
	if got := r.Statuses()[EyeRubbing].Faults; got != 0 {
		t.Errorf("expected no faults on the healthy habit, got %d", got)
	}
}

func TestRegistryReportOrder(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	phone := Config{
		ID: PhoneDistraction, Kind: KindSustained, Enabled: true,
		Threshold: 0.15, Above: true, DebounceFrames: 1,
		Severity: SeverityNormal, Message: "Put your phone away!",
	}
	rub := Config{
		ID: EyeRubbing, Kind: KindWindow, Enabled: true,
		Threshold: 0.02, Above: false, MaxEvents: 1, Window: 30 * time.Second,
		Severity: SeverityNormal, Message: "Stop rubbing your eyes!",
	}
	mouth := quickMouth()
	mouth.DebounceFrames = 1

	r := newTestRegistry(t, phone, rub, mouth)

	// One snapshot that violates all three at once: open mouth, head
	// pitched down, fingertip at the eye.
	face := landmark.OpenMouthFace()
	face.Points[landmark.NoseTip].Y = 0.55
	snap := landmark.Snap(start, face, landmark.HandAtEye())

	reps := r.EvaluateTick(snap, start)
	want := []ID{PhoneDistraction, EyeRubbing, MouthBreathing}
	if len(reps) != len(want) {
		t.Fatalf("expected %d reports, got %v", len(want), reps)
	}
	for i, id := range want {
		if reps[i].Habit != id {
			t.Errorf("report %d: expected %s, got %s", i, id, reps[i].Habit)
		}
	}

	ids := r.IDs()
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("id %d: expected %s, got %s", i, id, ids[i])
		}
	}

	// Nothing re-fires while every violation level is just held.
	if reps := r.EvaluateTick(snap, start.Add(33*time.Millisecond)); len(reps) != 0 {
		t.Errorf("held violations must not repeat, got %v", reps)
	}
}

func TestRegistryReconfigure(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tick := func(i int) time.Time { return start.Add(time.Duration(i) * 33 * time.Millisecond) }
	open := landmark.Snap(start, landmark.OpenMouthFace())

	t.Run("kind is structural", func(t *testing.T) {
		r := newTestRegistry(t, quickMouth())
		cfg := quickMouth()
		cfg.Kind = KindWindow
		if err := r.Reconfigure(MouthBreathing, cfg, false); err == nil {
			t.Fatal("expected a kind change to be rejected")
		}
	})

	t.Run("new config is visible and keyed by the path id", func(t *testing.T) {
		r := newTestRegistry(t, quickMouth())
		cfg := quickMouth()
		cfg.ID = "" // the registry fixes the id to the addressed habit
		cfg.Threshold = 0.09
		if err := r.Reconfigure(MouthBreathing, cfg, false); err != nil {
			t.Fatal(err)
		}
		got, err := r.Config(MouthBreathing)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != MouthBreathing {
			t.Errorf("expected the stored id to be %s, got %q", MouthBreathing, got.ID)
		}
		if got.Threshold != 0.09 {
			t.Errorf("expected threshold 0.09, got %g", got.Threshold)
		}
	})

	t.Run("reset flag discards the streak", func(t *testing.T) {
		r := newTestRegistry(t, quickMouth())
		r.EvaluateTick(open, tick(1))
		r.EvaluateTick(open, tick(2))
		if err := r.Reconfigure(MouthBreathing, quickMouth(), true); err != nil {
			t.Fatal(err)
		}
		if reps := r.EvaluateTick(open, tick(3)); len(reps) != 0 {
			t.Fatalf("expected the reset to discard the streak, got %v", reps)
		}
	})

	t.Run("enablement is untouched", func(t *testing.T) {
		r := newTestRegistry(t, quickMouth())
		if err := r.Disable(MouthBreathing); err != nil {
			t.Fatal(err)
		}
		if err := r.Reconfigure(MouthBreathing, quickMouth(), false); err != nil {
			t.Fatal(err)
		}
		if r.Statuses()[MouthBreathing].Enabled {
			t.Error("reconfigure must not re-enable a disabled habit")
		}
	})
}
