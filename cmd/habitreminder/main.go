// HabitReminder watches a stream of face and hand landmarks for unhealthy
// desk habits and nudges the user when one trips.
package main

import (
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jbw9/HabitReminder/internal/alert"
	"github.com/jbw9/HabitReminder/internal/app"
	"github.com/jbw9/HabitReminder/internal/config"
	"github.com/jbw9/HabitReminder/internal/logging"
	"github.com/jbw9/HabitReminder/internal/server"
	"github.com/jbw9/HabitReminder/internal/source"
	"github.com/jbw9/HabitReminder/internal/store"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the configuration file")
	replayPath := flag.String("replay", "", "replay a recorded capture file instead of the landmark service")
	staticDir := flag.String("web", "", "directory of dashboard files to serve")
	flag.Parse()

	// Optional .env overrides must land before the logger and the config
	// loader read the environment
	godotenv.Load()

	log := logging.Component("main")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if *replayPath != "" {
		cfg.Source.Replay = *replayPath
		cfg.Source.Command = ""
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		log.WithError(err).Fatal("failed to create data directory")
	}
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to open alert history")
	}
	defer st.Close()

	hub := server.NewEventsHub(logging.Component("events"))

	sinks := alert.MultiSink{
		&alert.LogSink{Log: logging.Component("alert")},
		&alert.StoreSink{Alerts: st.Alerts()},
		hub,
	}
	if cfg.Alerts.NotifierCommand != "" {
		sinks = append(sinks, &alert.CommandSink{
			Command: cfg.Alerts.NotifierCommand,
			Args:    cfg.Alerts.NotifierArgs,
			Timeout: time.Duration(cfg.Alerts.NotifierTimeoutSeconds) * time.Second,
		})
	}

	engine, err := app.New(app.Config{
		Settings: cfg,
		Source:   buildSource(cfg),
		Sink:     sinks,
		Store:    st,
		Status:   hub,
		Log:      logging.Component("engine"),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build engine")
	}

	if err := engine.Start(); err != nil {
		log.WithError(err).Fatal("failed to start engine")
	}
	defer engine.Stop()

	watcher := config.NewWatcher(*configPath, engine.ApplyConfig, logging.Component("config"))
	if err := watcher.Start(); err != nil {
		log.WithError(err).Warn("config hot reload disabled")
	} else {
		defer watcher.Stop()
	}

	srv := server.New(server.Config{
		StaticDir: *staticDir,
		Store:     st,
		Registry:  engine.Registry(),
		Events:    hub,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Server.Addr)
	}()
	log.WithField("addr", cfg.Server.Addr).Info("control server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-errCh:
		log.WithError(err).Error("server stopped")
	}
}

// buildSource picks the snapshot source: a capture file when replay is set,
// otherwise the external landmark service. With neither configured the
// engine idles and only the control surface is live.
func buildSource(cfg *config.Config) source.Source {
	if cfg.Source.Replay != "" {
		return source.NewReplay(cfg.Source.Replay, cfg.TickInterval(), logging.Component("source"))
	}
	if cfg.Source.Command != "" {
		return source.NewSidecar(cfg.Source.Command, cfg.Source.Args, logging.Component("source"))
	}
	return source.NewScripted(nil, false)
}
