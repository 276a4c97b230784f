package source

import (
	"sync"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// Scripted plays back a canned snapshot sequence, standing in for the
// landmark service in tests. With loop set the sequence repeats until Stop;
// timestamp ordering across passes is the script author's concern.
type Scripted struct {
	snaps []*landmark.Snapshot
	loop  bool

	mu      sync.Mutex
	out     chan *landmark.Snapshot
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewScripted creates a Scripted source over the given snapshots.
func NewScripted(snaps []*landmark.Snapshot, loop bool) *Scripted {
	return &Scripted{
		snaps: snaps,
		loop:  loop,
		out:   make(chan *landmark.Snapshot),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start begins playback.
func (s *Scripted) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true

	go s.play()

	return nil
}

func (s *Scripted) play() {
	defer func() {
		close(s.out)
		close(s.done)
	}()

	for {
		for _, snap := range s.snaps {
			select {
			case s.out <- snap:
			case <-s.stop:
				return
			}
		}
		if !s.loop {
			return
		}
	}
}

// Stop ends playback and waits for the player to exit.
func (s *Scripted) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done

	return nil
}

// Snapshots returns the playback channel.
func (s *Scripted) Snapshots() <-chan *landmark.Snapshot {
	return s.out
}
