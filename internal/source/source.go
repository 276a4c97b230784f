// Package source supplies landmark snapshots to the evaluation pipeline.
// The live implementation bridges an external landmark service process;
// scripted and replay implementations stand in for it in tests and offline
// runs. All three speak the same newline-delimited JSON snapshot format.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/landmark"
)

// maxLineBytes bounds one snapshot line. A full face mesh serializes to
// roughly 10KB, so this leaves generous headroom.
const maxLineBytes = 1 << 20

// Source produces landmark snapshots for the evaluation pipeline. The
// snapshot channel is closed when the source stops or its input runs out.
// A source is started at most once.
type Source interface {
	Start() error
	Stop() error
	Snapshots() <-chan *landmark.Snapshot
}

// wireSnapshot is the one-line JSON record the landmark service emits and
// replay files store.
type wireSnapshot struct {
	TimestampMS int64                    `json:"timestamp_ms"`
	Face        *landmark.FaceLandmarks  `json:"face,omitempty"`
	Hands       []landmark.HandLandmarks `json:"hands,omitempty"`
}

// Marshal returns the single-line JSON encoding of a snapshot, the format
// the sidecar stream and replay files carry.
func Marshal(snap *landmark.Snapshot) ([]byte, error) {
	return json.Marshal(wireSnapshot{
		TimestampMS: snap.Timestamp.UnixMilli(),
		Face:        snap.Face,
		Hands:       snap.Hands,
	})
}

// decodeLine parses one wire record into a snapshot.
func decodeLine(line []byte) (*landmark.Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, err
	}
	if w.TimestampMS <= 0 {
		return nil, fmt.Errorf("missing timestamp")
	}
	return &landmark.Snapshot{
		Face:      w.Face,
		Hands:     w.Hands,
		Timestamp: time.UnixMilli(w.TimestampMS).UTC(),
	}, nil
}

// stream decodes newline-delimited snapshots from r and sends them on out
// until r is exhausted or stop closes. Malformed lines and non-increasing
// timestamps are dropped with a warning; timestamps must advance strictly.
// A non-nil pace channel gates each send, so playback can be slowed to a
// fixed rate.
func stream(r io.Reader, out chan<- *landmark.Snapshot, stop <-chan struct{}, pace <-chan time.Time, log *logrus.Entry) {
	var last time.Time

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		snap, err := decodeLine(line)
		if err != nil {
			log.WithError(err).Warn("malformed snapshot line, dropped")
			continue
		}

		if !snap.Timestamp.After(last) {
			log.WithField("timestamp", snap.Timestamp.UnixMilli()).Warn("non-increasing snapshot timestamp, dropped")
			continue
		}
		last = snap.Timestamp

		if pace != nil {
			select {
			case <-pace:
			case <-stop:
				return
			}
		}

		select {
		case out <- snap:
		case <-stop:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		log.WithError(err).Warn("snapshot stream read error")
	}
}
