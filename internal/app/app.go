// Package app wires the snapshot source, habit registry, alert dispatcher
// and alert history into the running HabitReminder engine.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/alert"
	"github.com/jbw9/HabitReminder/internal/config"
	"github.com/jbw9/HabitReminder/internal/habit"
	"github.com/jbw9/HabitReminder/internal/source"
	"github.com/jbw9/HabitReminder/internal/store"
)

// Pipeline timing constants.
const (
	// StatusInterval is how often habit status frames are broadcast to
	// websocket clients.
	StatusInterval = time.Second
	// PruneInterval is how often alert history beyond the retention window
	// is deleted.
	PruneInterval = time.Hour
)

// StatusBroadcaster receives periodic habit status frames.
type StatusBroadcaster interface {
	BroadcastStatus(statuses map[habit.ID]habit.Status)
}

// Config holds configuration options for the application.
type Config struct {
	Settings *config.Config    // engine settings: tick rate, habit tuning, alerting
	Source   source.Source     // snapshot producer
	Sink     alert.Sink        // where dispatched alerts are delivered
	Store    *store.Store      // optional alert history, pruned on a timer
	Status   StatusBroadcaster // optional status frame receiver
	Log      *logrus.Entry
}

// App owns the detection pipeline: snapshots from the source are evaluated
// against the habit registry, and the resulting reports flow through the
// cooldown dispatcher to the configured sink.
type App struct {
	config     Config
	registry   *habit.Registry
	dispatcher *alert.Dispatcher
	log        *logrus.Entry

	// settingsMu guards config.Settings, which hot reloads swap out while
	// the pipeline reads it.
	settingsMu sync.RWMutex

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
}

// New creates an App instance with the given configuration.
func New(cfg Config) (*App, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	registry, err := habit.NewRegistry(cfg.Settings.HabitConfigs(), log)
	if err != nil {
		return nil, fmt.Errorf("build habit registry: %w", err)
	}

	// Cooldowns track the live per-habit configuration.
	cooldown := func(id habit.ID) time.Duration {
		c, err := registry.Config(id)
		if err != nil {
			return 0
		}
		return c.Cooldown
	}

	return &App{
		config:     cfg,
		registry:   registry,
		dispatcher: alert.NewDispatcher(cfg.Sink, cooldown, log),
		log:        log,
	}, nil
}

// Registry returns the habit registry, for the control API.
func (a *App) Registry() *habit.Registry {
	return a.registry
}

// Dispatcher returns the alert dispatcher.
func (a *App) Dispatcher() *alert.Dispatcher {
	return a.dispatcher
}

// Start launches the snapshot source and the pipeline goroutine. The app
// runs at most once; Start on a running or stopped app is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}

	if err := a.config.Source.Start(); err != nil {
		return fmt.Errorf("start snapshot source: %w", err)
	}

	a.dispatcher.Start()

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	a.started = true

	go a.run(a.stopCh, a.doneCh)

	a.log.Info("habit engine started")
	return nil
}

// Stop shuts the pipeline down: the run loop exits, the source stops
// producing and the dispatcher drains any queued alerts.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started || a.stopped {
		return
	}
	a.stopped = true

	close(a.stopCh)
	<-a.doneCh

	if err := a.config.Source.Stop(); err != nil {
		a.log.WithError(err).Warn("error stopping snapshot source")
	}
	a.dispatcher.Stop()

	a.log.Info("habit engine stopped")
}

// ApplyConfig pushes freshly loaded settings into the running registry:
// per-habit tuning goes through Reconfigure with detector state preserved,
// enablement through Enable and Disable. Server address, database path and
// source selection need a restart and are ignored here.
func (a *App) ApplyConfig(cfg *config.Config) error {
	a.settingsMu.Lock()
	a.config.Settings = cfg
	a.settingsMu.Unlock()

	for _, hc := range cfg.HabitConfigs() {
		if err := a.registry.Reconfigure(hc.ID, hc, false); err != nil {
			return fmt.Errorf("reconfigure %s: %w", hc.ID, err)
		}

		var err error
		if hc.Enabled {
			err = a.registry.Enable(hc.ID)
		} else {
			err = a.registry.Disable(hc.ID)
		}
		if err != nil {
			return fmt.Errorf("toggle %s: %w", hc.ID, err)
		}
	}

	a.log.Info("engine settings applied")
	return nil
}
