package app

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// run is the main pipeline loop. Every snapshot is evaluated at its own
// capture timestamp, so a replayed capture produces the same alerts as the
// live session it was recorded from.
func (a *App) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	statusTicker := time.NewTicker(StatusInterval)
	defer statusTicker.Stop()

	pruneTicker := time.NewTicker(PruneInterval)
	defer pruneTicker.Stop()

	snapshots := a.config.Source.Snapshots()

	for {
		select {
		case <-stopCh:
			return

		case snap, ok := <-snapshots:
			if !ok {
				// Replay ended or the landmark service died. Keep serving
				// status frames and history; a nil channel never fires.
				a.log.Info("snapshot source closed")
				snapshots = nil
				continue
			}
			a.tick(snap)

		case <-statusTicker.C:
			if a.config.Status != nil {
				a.config.Status.BroadcastStatus(a.registry.Statuses())
			}

		case <-pruneTicker.C:
			a.prune(time.Now())
		}
	}
}

// tick runs one evaluation pass and hands violating reports to the
// dispatcher. Nothing here blocks: delivery happens on the dispatcher's own
// goroutine.
func (a *App) tick(snap *landmark.Snapshot) {
	for _, rep := range a.registry.EvaluateTick(snap, snap.Timestamp) {
		if rep.Cleared {
			a.log.WithField("habit", string(rep.Habit)).Debug("habit cleared")
			continue
		}
		if ev, ok := a.dispatcher.Offer(rep, snap.Timestamp); ok {
			a.log.WithFields(logrus.Fields{
				"habit":  string(ev.Habit),
				"metric": ev.Metric,
			}).Debug("alert queued")
		}
	}
}

// prune deletes alert history older than the configured retention window.
func (a *App) prune(now time.Time) {
	if a.config.Store == nil {
		return
	}

	a.settingsMu.RLock()
	days := a.config.Settings.Alerts.RetentionDays
	a.settingsMu.RUnlock()
	if days <= 0 {
		return
	}

	cutoff := now.AddDate(0, 0, -days)
	removed, err := a.config.Store.Alerts().DeleteBefore(cutoff)
	if err != nil {
		a.log.WithError(err).Warn("failed to prune alert history")
		return
	}
	if removed > 0 {
		a.log.WithFields(logrus.Fields{
			"removed": removed,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("pruned alert history")
	}
}
