// Package tracking owns the partner's physical position: it runs the single
// sensor subscription and retains only the latest known sample.
package tracking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/ports"
	"partnerfeed/internal/pkg/errs"
)

// ErrTrackerAlreadyStarted is returned when Start is called on a running tracker.
var ErrTrackerAlreadyStarted = errs.NewValueIsInvalidError("tracker is already started")

// Tracker subscribes to the position source and exposes the latest known
// fix plus its staleness. Exactly one sensor subscription is active per
// tracker; Stop releases it and a new Start is required to resume.
//
// A permission refusal is reported to the caller of Start and leaves the
// tracker stopped; the feed simply renders unranked in that case.
type Tracker struct {
	source ports.PositionSource
	opts   ports.WatchOptions
	logger *slog.Logger

	mu          sync.Mutex
	latest      *kernel.PositionSample
	sub         ports.Subscription
	subscribers map[int]func(kernel.PositionSample)
	nextSubID   int
	started     bool
}

// NewTracker creates a tracker over the given position source. The watch
// options bound how often the sensor may deliver samples.
func NewTracker(source ports.PositionSource, opts ports.WatchOptions, logger *slog.Logger) *Tracker {
	return &Tracker{
		source:      source,
		opts:        opts,
		logger:      logger.With("component", "position_tracker"),
		subscribers: make(map[int]func(kernel.PositionSample)),
	}
}

// Start requests sensor permission and begins watching. Returns
// ports.ErrPermissionDenied (wrapped) when access is refused, in which case
// ranking is simply unavailable, and ErrTrackerAlreadyStarted when the
// tracker is already running.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return ErrTrackerAlreadyStarted
	}
	t.mu.Unlock()

	if err := t.source.RequestPermission(ctx); err != nil {
		t.logger.WarnContext(ctx, "Position permission not granted, ranking disabled", "error", err)
		return err
	}

	sub, err := t.source.Watch(t.opts, t.onSample)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.sub = sub
	t.started = true
	t.mu.Unlock()

	return nil
}

// Stop releases the sensor subscription. The last fix is retained so
// consumers keep a (stale) position until a restart delivers a fresh one.
func (t *Tracker) Stop() {
	t.mu.Lock()
	sub := t.sub
	t.sub = nil
	t.started = false
	t.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// LastFix returns the most recent sample, or false when none has arrived yet.
func (t *Tracker) LastFix() (kernel.PositionSample, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest == nil {
		return kernel.PositionSample{}, false
	}
	return *t.latest, true
}

// LastPoint returns the coordinate of the most recent sample in the form the
// ranker consumes, or nil when no fix exists.
func (t *Tracker) LastPoint() *kernel.GeoPoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest == nil {
		return nil
	}
	point := t.latest.Point()
	return &point
}

// FixAge reports how old the latest sample is, or false when none exists.
func (t *Tracker) FixAge(now time.Time) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest == nil {
		return 0, false
	}
	return t.latest.Age(now), true
}

// Subscribe registers a handler for new samples. Handlers see each sample at
// most once and only the latest sample is retained between deliveries.
func (t *Tracker) Subscribe(handler func(kernel.PositionSample)) ports.Subscription {
	t.mu.Lock()
	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = handler
	t.mu.Unlock()

	return ports.SubscriptionFunc(func() {
		t.mu.Lock()
		delete(t.subscribers, id)
		t.mu.Unlock()
	})
}

// onSample replaces the retained sample and notifies subscribers outside the lock.
func (t *Tracker) onSample(sample kernel.PositionSample) {
	if err := sample.Validate(); err != nil {
		t.logger.Warn("Dropping invalid position sample", "error", err)
		return
	}

	t.mu.Lock()
	t.latest = &sample
	handlers := make([]func(kernel.PositionSample), 0, len(t.subscribers))
	for _, handler := range t.subscribers {
		handlers = append(handlers, handler)
	}
	t.mu.Unlock()

	for _, handler := range handlers {
		handler(sample)
	}
}
