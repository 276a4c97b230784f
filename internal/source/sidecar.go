package source

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// Sidecar runs the external landmark service as a child process and streams
// the snapshots it prints on stdout, one JSON record per line. The service
// owns the camera and the models; this side only reads.
type Sidecar struct {
	command string
	args    []string
	log     *logrus.Entry

	mu      sync.Mutex
	cmd     *exec.Cmd
	out     chan *landmark.Snapshot
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewSidecar creates a Sidecar for the given landmark service command.
// The process is started by Start.
func NewSidecar(command string, args []string, log *logrus.Entry) *Sidecar {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Sidecar{
		command: command,
		args:    args,
		log:     log,
		out:     make(chan *landmark.Snapshot),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the landmark service and begins reading its output.
func (s *Sidecar) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	cmd := exec.Command(s.command, s.args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Surface the service's own diagnostics
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	s.cmd = cmd
	s.started = true

	s.log.WithField("command", s.command).Info("landmark service started")

	go s.read(stdout)

	return nil
}

func (s *Sidecar) read(r io.Reader) {
	defer func() {
		close(s.out)
		close(s.done)
	}()

	stream(r, s.out, s.stop, nil, s.log)
}

// Stop kills the landmark service and waits for the reader to drain. The
// service exits by our signal, so its exit status is not treated as an error.
func (s *Sidecar) Stop() error {
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

	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	<-s.done

	s.log.Info("landmark service stopped")

	return nil
}

// Snapshots returns the channel the service's snapshots arrive on.
func (s *Sidecar) Snapshots() <-chan *landmark.Snapshot {
	return s.out
}
