package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/habit"
)

// DefaultCooldown damps habits whose config does not set its own cooldown.
const DefaultCooldown = time.Minute

// queueSize bounds undelivered events. Cooldowns keep the normal rate near
// one event per habit per minute, so a full queue means the sinks are stuck;
// new events are then dropped rather than stalling the tick path.
const queueSize = 64

// CooldownFunc resolves the cooldown for a habit, usually from its live
// config.
type CooldownFunc func(habit.ID) time.Duration

// Dispatcher gates violating reports into alert events, at most one per
// habit per cooldown. The cooldown clock is wall time, so it keeps damping
// across disable/enable cycles. Delivery runs on a single pump goroutine
// behind a bounded queue; Offer never blocks.
type Dispatcher struct {
	sink     Sink
	cooldown CooldownFunc
	log      *logrus.Entry

	mu      sync.Mutex
	last    map[habit.ID]time.Time
	dropped uint64

	queue chan Event
	stop  chan struct{}
	done  chan struct{}
}

// NewDispatcher wires a dispatcher to its sink. A nil cooldown func applies
// DefaultCooldown to every habit. Start must be called before events are
// delivered.
func NewDispatcher(sink Sink, cooldown CooldownFunc, log *logrus.Entry) *Dispatcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Dispatcher{
		sink:     sink,
		cooldown: cooldown,
		log:      log,
		last:     make(map[habit.ID]time.Time),
		queue:    make(chan Event, queueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery pump.
func (d *Dispatcher) Start() {
	go d.pump()
}

// Stop ends delivery after draining whatever is already queued.
func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done
}

// Offer applies the cooldown gate to one violating report. When the habit is
// out of cooldown it mints an event, queues it for delivery and returns it.
// With the queue full the event still consumes the cooldown but is dropped
// and counted.
func (d *Dispatcher) Offer(rep habit.Report, now time.Time) (Event, bool) {
	if !rep.Violating {
		return Event{}, false
	}

	d.mu.Lock()
	cd := d.cooldownFor(rep.Habit)
	if last, seen := d.last[rep.Habit]; seen && now.Sub(last) < cd {
		d.mu.Unlock()
		return Event{}, false
	}
	d.last[rep.Habit] = now
	d.mu.Unlock()

	ev := Event{
		ID:        uuid.NewString(),
		Habit:     rep.Habit,
		Severity:  rep.Severity,
		Message:   rep.Message,
		Metric:    rep.Metric,
		Timestamp: now,
	}

	select {
	case d.queue <- ev:
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		d.log.WithField("habit", string(rep.Habit)).Warn("alert queue full, event dropped")
	}
	return ev, true
}

// ResetCooldowns forgets every habit's last alert, letting the next
// violation through immediately.
func (d *Dispatcher) ResetCooldowns() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = make(map[habit.ID]time.Time)
}

// Dropped reports how many events were lost to a full queue.
func (d *Dispatcher) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *Dispatcher) cooldownFor(id habit.ID) time.Duration {
	if d.cooldown != nil {
		if cd := d.cooldown(id); cd > 0 {
			return cd
		}
	}
	return DefaultCooldown
}

func (d *Dispatcher) pump() {
	defer close(d.done)
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		case <-d.stop:
			for {
				select {
				case ev := <-d.queue:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Deliver(ev); err != nil {
		d.log.WithField("habit", string(ev.Habit)).WithError(err).Warn("alert sink unavailable, event dropped")
	}
}
