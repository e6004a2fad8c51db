// Package journal records successful dashboard mutations in a write-ahead log.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

const (
	DefaultDir   = "./wal/journal"
	segmentLimit = 100
	maxSegments  = 10

	changeKeyPrefix = "change_"
)

// WALStore persists change events in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed change journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "journal_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes the event to the WAL and returns its index.
func (s *WALStore) Append(event domain.ChangeEvent) (uint64, error) {
	if s == nil || s.wal == nil {
		return 0, errors.New("journal is not initialized")
	}
	if event.Type == "" {
		return 0, errors.New("change event type is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return 0, errors.Wrap(err, "marshal change event")
	}

	key := fmt.Sprintf("%s%s", changeKeyPrefix, event.Type)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, key, payload); err != nil {
		return 0, errors.Wrapf(err, "write change event %d", nextIndex)
	}

	return nextIndex, nil
}

// EventsAfter returns all change events written after the provided WAL index.
// Entries evicted with old segments are skipped.
func (s *WALStore) EventsAfter(index uint64) ([]domain.ChangeEventRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.ChangeEventRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, changeKeyPrefix) {
			continue
		}

		var event domain.ChangeEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrapf(err, "decode change event %d", idx)
		}
		records = append(records, domain.ChangeEventRecord{Index: idx, Event: event})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
