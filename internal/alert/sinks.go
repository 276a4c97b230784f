package alert

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/store"
)

// LogSink writes events to the structured log.
type LogSink struct {
	Log *logrus.Entry
}

func (s *LogSink) Deliver(ev Event) error {
	s.Log.WithFields(logrus.Fields{
		"habit":    string(ev.Habit),
		"severity": string(ev.Severity),
		"alert":    ev.ID,
	}).Info(ev.Message)
	return nil
}

// StoreSink appends events to the alert history database.
type StoreSink struct {
	Alerts *store.AlertRepository
}

func (s *StoreSink) Deliver(ev Event) error {
	return s.Alerts.Insert(&store.Alert{
		ID:        ev.ID,
		HabitID:   string(ev.Habit),
		Severity:  string(ev.Severity),
		Message:   ev.Message,
		Metric:    ev.Metric,
		CreatedAt: ev.Timestamp,
	})
}

// MultiSink fans one event out to several sinks. Every sink sees the event
// even when an earlier one fails; failures are joined into one error.
type MultiSink []Sink

func (m MultiSink) Deliver(ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
