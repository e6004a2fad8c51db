package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/events"
)

// DefaultResolution how often the scheduler checks for due streams.
const DefaultResolution = time.Second

// StreamRefresher refreshes the asset fields fed by one stream.
type StreamRefresher interface {
	Refresh(ctx context.Context, stream domain.StreamID) error
}

// Scheduler ticks enabled streams when their interval elapses.
type Scheduler struct {
	configs    *Manager
	refresher  StreamRefresher
	ticks      *events.Broadcaster[domain.StreamTick]
	resolution time.Duration
	now        func() time.Time
	l          *zap.Logger
}

// NewScheduler creates a scheduler. ticks may be nil.
func NewScheduler(l *zap.Logger, configs *Manager, refresher StreamRefresher,
	ticks *events.Broadcaster[domain.StreamTick], resolution time.Duration) *Scheduler {
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	return &Scheduler{
		configs:    configs,
		refresher:  refresher,
		ticks:      ticks,
		resolution: resolution,
		now:        time.Now,
		l:          l,
	}
}

// Run checks due streams every resolution until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	s.l.Info("Starting refresh scheduler", zap.Duration("resolution", s.resolution))

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Context done, stopping refresh scheduler")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick refreshes every due stream once and returns the ticks produced.
// A failed refresh leaves lastUpdated untouched so the stream is retried next tick.
func (s *Scheduler) Tick(ctx context.Context) []domain.StreamTick {
	now := s.now()
	var produced []domain.StreamTick

	for _, stream := range s.configs.Due(now) {
		if err := s.refresher.Refresh(ctx, stream); err != nil {
			s.l.Error("stream refresh failed", zap.String("stream", stream.String()), zap.Error(err))
			continue
		}
		if err := s.configs.Touch(stream, now); err != nil {
			s.l.Error("failed to stamp stream refresh", zap.String("stream", stream.String()), zap.Error(err))
			continue
		}

		tick := domain.StreamTick{Stream: stream, At: now}
		s.ticks.Publish(tick)
		produced = append(produced, tick)
		s.l.Debug("stream refreshed", zap.String("stream", stream.String()))
	}

	return produced
}
