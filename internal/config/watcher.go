package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher reloads the config file when it changes and hands the result to
// an apply callback. A file that fails to load or apply is rejected; the
// previous configuration stays live.
type Watcher struct {
	path  string
	apply func(*Config) error
	log   *logrus.Entry
	stop  chan struct{}
	done  chan struct{}
}

// NewWatcher builds a watcher for the config file at path.
func NewWatcher(path string, apply func(*Config) error, log *logrus.Entry) *Watcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Watcher{
		path:  path,
		apply: apply,
		log:   log,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the
// file itself so editors that replace the file on save are still seen.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}
	go w.loop(watcher)
	return nil
}

// Stop ends watching.
func (w *Watcher) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Watcher) loop(watcher *fsnotify.Watcher) {
	defer close(w.done)
	defer watcher.Close()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}

			// Small delay to ensure the write is complete
			time.Sleep(50 * time.Millisecond)

			cfg, err := Load(w.path)
			if err != nil {
				w.log.WithError(err).Warn("config reload rejected, previous config stays live")
				continue
			}
			if err := w.apply(cfg); err != nil {
				w.log.WithError(err).Warn("config reload failed to apply")
				continue
			}
			w.log.Info("configuration reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("config watcher error")

		case <-w.stop:
			return
		}
	}
}
