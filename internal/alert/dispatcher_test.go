package alert

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/habit"
)

func quietLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// captureSink records every delivered event.
type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Deliver(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *captureSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

type failSink struct{}

func (failSink) Deliver(Event) error { return errors.New("notifier offline") }

func violating(id habit.ID) habit.Report {
	return habit.Report{
		Habit: id, Violating: true, Severity: habit.SeverityNormal,
		Metric: 0.08, Message: "test message",
	}
}

func TestDispatcherCooldown(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("first violation mints an event", func(t *testing.T) {
		d := NewDispatcher(nil, nil, quietLog())
		ev, ok := d.Offer(violating(habit.MouthBreathing), start)
		if !ok {
			t.Fatal("expected the first violation to pass the gate")
		}
		if ev.ID == "" {
			t.Error("expected a generated event id")
		}
		if ev.Habit != habit.MouthBreathing || ev.Message != "test message" {
			t.Errorf("event fields not carried over: %+v", ev)
		}
		if !ev.Timestamp.Equal(start) {
			t.Errorf("expected timestamp %v, got %v", start, ev.Timestamp)
		}
	})

	t.Run("suppressed just inside the cooldown", func(t *testing.T) {
		d := NewDispatcher(nil, nil, quietLog())
		d.Offer(violating(habit.MouthBreathing), start)
		if _, ok := d.Offer(violating(habit.MouthBreathing), start.Add(time.Minute-time.Millisecond)); ok {
			t.Error("a violation inside the cooldown must be suppressed")
		}
	})

	t.Run("passes at and past the cooldown", func(t *testing.T) {
		d := NewDispatcher(nil, nil, quietLog())
		d.Offer(violating(habit.MouthBreathing), start)
		if _, ok := d.Offer(violating(habit.MouthBreathing), start.Add(time.Minute)); !ok {
			t.Error("a violation exactly at the cooldown boundary must pass")
		}

		d = NewDispatcher(nil, nil, quietLog())
		d.Offer(violating(habit.MouthBreathing), start)
		if _, ok := d.Offer(violating(habit.MouthBreathing), start.Add(time.Minute+time.Millisecond)); !ok {
			t.Error("a violation past the cooldown must pass")
		}
	})

	t.Run("cooldowns are per habit", func(t *testing.T) {
		d := NewDispatcher(nil, nil, quietLog())
		if _, ok := d.Offer(violating(habit.MouthBreathing), start); !ok {
			t.Fatal("first habit should pass")
		}
		if _, ok := d.Offer(violating(habit.BlinkRate), start); !ok {
			t.Error("a different habit must not share the cooldown")
		}
	})

	t.Run("non-violating reports never emit", func(t *testing.T) {
		d := NewDispatcher(nil, nil, quietLog())
		rep := violating(habit.MouthBreathing)
		rep.Violating = false
		if _, ok := d.Offer(rep, start); ok {
			t.Error("a non-violating report must not mint an event")
		}
	})

	t.Run("reset opens every gate", func(t *testing.T) {
		d := NewDispatcher(nil, nil, quietLog())
		d.Offer(violating(habit.MouthBreathing), start)
		d.ResetCooldowns()
		if _, ok := d.Offer(violating(habit.MouthBreathing), start.Add(time.Second)); !ok {
			t.Error("expected the gate to open after a cooldown reset")
		}
	})

	t.Run("config cooldown overrides the default", func(t *testing.T) {
		short := func(habit.ID) time.Duration { return 10 * time.Second }
		d := NewDispatcher(nil, short, quietLog())
		d.Offer(violating(habit.MouthBreathing), start)
		if _, ok := d.Offer(violating(habit.MouthBreathing), start.Add(5*time.Second)); ok {
			t.Error("expected suppression inside the configured cooldown")
		}
		if _, ok := d.Offer(violating(habit.MouthBreathing), start.Add(10*time.Second)); !ok {
			t.Error("expected a pass at the configured cooldown")
		}
	})

	t.Run("non-positive config cooldown falls back to the default", func(t *testing.T) {
		zero := func(habit.ID) time.Duration { return 0 }
		d := NewDispatcher(nil, zero, quietLog())
		d.Offer(violating(habit.MouthBreathing), start)
		if _, ok := d.Offer(violating(habit.MouthBreathing), start.Add(59*time.Second)); ok {
			t.Error("expected the default cooldown to apply")
		}
	})
}

func TestDispatcherDelivery(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	sink := &captureSink{}
	d := NewDispatcher(sink, nil, quietLog())
	d.Start()

	d.Offer(violating(habit.MouthBreathing), start)
	d.Offer(violating(habit.BlinkRate), start)
	d.Offer(violating(habit.Hydration), start)
	d.Stop() // drains the queue before returning

	got := sink.all()
	if len(got) != 3 {
		t.Fatalf("expected 3 delivered events, got %d", len(got))
	}
	want := []habit.ID{habit.MouthBreathing, habit.BlinkRate, habit.Hydration}
	seen := make(map[string]bool)
	for i, ev := range got {
		if ev.Habit != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], ev.Habit)
		}
		if seen[ev.ID] {
			t.Errorf("duplicate event id %q", ev.ID)
		}
		seen[ev.ID] = true
	}
}

func TestDispatcherQueueOverflow(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	sink := &captureSink{}
	tiny := func(habit.ID) time.Duration { return time.Nanosecond }

	// No pump yet, so the queue only fills.
	d := NewDispatcher(sink, tiny, quietLog())
	for i := 0; i < queueSize+2; i++ {
		if _, ok := d.Offer(violating(habit.MouthBreathing), start.Add(time.Duration(i)*time.Millisecond)); !ok {
			t.Fatalf("offer %d should have passed the cooldown gate", i)
		}
	}
	if got := d.Dropped(); got != 2 {
		t.Errorf("expected 2 dropped events, got %d", got)
	}

	d.Start()
	d.Stop()
	if got := len(sink.all()); got != queueSize {
		t.Errorf("expected the %d queued events to be delivered, got %d", queueSize, got)
	}
}

func TestDispatcherSinkFailure(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	sink := &captureSink{}
	d := NewDispatcher(MultiSink{failSink{}, sink}, nil, quietLog())
	d.Start()

	d.Offer(violating(habit.MouthBreathing), start)
	d.Stop()

	// The failing sink loses its copy; the healthy one still delivers.
	if got := len(sink.all()); got != 1 {
		t.Fatalf("expected 1 delivered event despite the failing sink, got %d", got)
	}
	if d.Dropped() != 0 {
		t.Error("sink failures are not queue drops")
	}
}
