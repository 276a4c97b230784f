package source

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// Replay streams snapshots from a recorded JSONL capture file, applying the
// same decoding and timestamp discipline as the live sidecar. A non-zero
// interval paces playback at that rate; zero plays as fast as the consumer
// keeps up.
type Replay struct {
	path     string
	interval time.Duration
	log      *logrus.Entry

	mu      sync.Mutex
	out     chan *landmark.Snapshot
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewReplay creates a Replay source over the given capture file.
func NewReplay(path string, interval time.Duration, log *logrus.Entry) *Replay {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Replay{
		path:     path,
		interval: interval,
		log:      log,
		out:      make(chan *landmark.Snapshot),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start opens the capture file and begins playback.
func (r *Replay) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}

	r.started = true

	r.log.WithField("path", r.path).Info("replaying capture file")

	go func() {
		defer func() {
			f.Close()
			close(r.out)
			close(r.done)
		}()

		var pace <-chan time.Time
		if r.interval > 0 {
			ticker := time.NewTicker(r.interval)
			defer ticker.Stop()
			pace = ticker.C
		}

		stream(f, r.out, r.stop, pace, r.log)
	}()

	return nil
}

// Stop ends playback and waits for the reader to exit.
func (r *Replay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return nil
	}

	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	<-r.done

	return nil
}

// Snapshots returns the playback channel.
func (r *Replay) Snapshots() <-chan *landmark.Snapshot {
	return r.out
}
