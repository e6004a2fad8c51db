package journal

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/events"
)

// Recorder stamps change events, appends them to the WAL when one is configured
// and publishes them to live subscribers.
type Recorder struct {
	mu    sync.Mutex
	store *WALStore
	feed  *events.Broadcaster[domain.ChangeEventRecord]
	l     *zap.Logger
	now   func() time.Time
	seq   uint64
}

// NewRecorder creates a recorder. store may be nil, in which case events are numbered in memory only.
func NewRecorder(l *zap.Logger, store *WALStore, feed *events.Broadcaster[domain.ChangeEventRecord]) *Recorder {
	r := &Recorder{store: store, feed: feed, l: l, now: time.Now}
	if store != nil {
		r.seq = store.CurrentIndex()
	}
	return r
}

// Record journals one successful mutation with its post-mutation value as payload.
func (r *Recorder) Record(kind domain.ChangeType, targetID string, payload any) (domain.ChangeEventRecord, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.ChangeEventRecord{}, errors.Wrap(err, "marshal change payload")
	}

	event := domain.ChangeEvent{
		ID:       uuid.NewString(),
		Type:     kind,
		TargetID: targetID,
		At:       r.now().UTC(),
		Payload:  raw,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var rec domain.ChangeEventRecord
	if r.store != nil {
		idx, err := r.store.Append(event)
		if err != nil {
			return domain.ChangeEventRecord{}, err
		}
		r.seq = idx
	} else {
		r.seq++
	}
	rec = domain.ChangeEventRecord{Index: r.seq, Event: event}

	// published under mu so subscribers see indexes in order; Publish never blocks
	r.feed.Publish(rec)
	r.l.Debug("change recorded",
		zap.String("type", string(kind)),
		zap.String("target", targetID),
		zap.Uint64("index", rec.Index))

	return rec, nil
}

// EventsAfter replays journaled events after index. Without a WAL nothing is replayed.
func (r *Recorder) EventsAfter(index uint64) ([]domain.ChangeEventRecord, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.EventsAfter(index)
}

// Feed returns the live event broadcaster.
func (r *Recorder) Feed() *events.Broadcaster[domain.ChangeEventRecord] {
	return r.feed
}
