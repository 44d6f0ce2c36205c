// Package redistrack implements the position source over a Redis pub/sub
// channel. The device-side tracker publishes raw GPS fixes to the channel;
// this adapter applies the interval and displacement gating before samples
// reach the application.
package redistrack

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/ports"
)

// fixMessage is the wire shape of a GPS fix on the channel.
type fixMessage struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ObservedAt int64   `json:"observedAt"`
}

// Source implements ports.PositionSource over a Redis channel.
//
// Permission maps to configuration: when tracking is disabled the permission
// request is refused and no connection is attempted, mirroring a user
// declining sensor access on a device.
type Source struct {
	client  *redis.Client
	channel string
	enabled bool
	logger  *slog.Logger
}

// NewSource creates a position source reading fixes from the given channel.
func NewSource(client *redis.Client, channel string, enabled bool, logger *slog.Logger) *Source {
	return &Source{
		client:  client,
		channel: channel,
		enabled: enabled,
		logger:  logger.With("component", "position_source"),
	}
}

// RequestPermission verifies that tracking is enabled and the fix stream is
// reachable. Returns ports.ErrPermissionDenied when tracking is disabled.
func (s *Source) RequestPermission(ctx context.Context) error {
	if !s.enabled {
		return fmt.Errorf("position tracking disabled: %w", ports.ErrPermissionDenied)
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("reach fix stream: %w", err)
	}
	return nil
}

// Watch subscribes to the fix channel and delivers gated samples to the
// handler until the subscription is released. A sample passes the gate only
// when the minimum interval has elapsed and the device has moved at least the
// minimum displacement since the last delivered sample.
func (s *Source) Watch(
	opts ports.WatchOptions, handler func(kernel.PositionSample),
) (ports.Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := s.client.Subscribe(ctx, s.channel)

	// Force the subscription to be established before returning.
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to fix channel %s: %w", s.channel, err)
	}

	go s.consume(ctx, pubsub, opts, handler)

	return ports.SubscriptionFunc(func() {
		cancel()
		if err := pubsub.Close(); err != nil {
			s.logger.Warn("Closing fix subscription failed", "error", err)
		}
	}), nil
}

func (s *Source) consume(
	ctx context.Context,
	pubsub *redis.PubSub,
	opts ports.WatchOptions,
	handler func(kernel.PositionSample),
) {
	var last *kernel.PositionSample

	for message := range pubsub.Channel() {
		sample, err := s.decode(message.Payload)
		if err != nil {
			s.logger.Warn("Dropping malformed fix", "error", err)
			continue
		}

		if !passesGate(last, sample, opts) {
			continue
		}

		last = &sample
		handler(sample)

		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Source) decode(payload string) (kernel.PositionSample, error) {
	var message fixMessage
	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		return kernel.PositionSample{}, fmt.Errorf("decode fix: %w", err)
	}

	point, err := kernel.NewGeoPoint(message.Latitude, message.Longitude)
	if err != nil {
		return kernel.PositionSample{}, err
	}

	return kernel.NewPositionSample(point, time.Unix(message.ObservedAt, 0))
}

// passesGate applies the watch options against the last delivered sample.
// The first sample always passes.
func passesGate(last *kernel.PositionSample, next kernel.PositionSample, opts ports.WatchOptions) bool {
	if last == nil {
		return true
	}

	if next.ObservedAt().Sub(last.ObservedAt()) < opts.MinInterval {
		return false
	}

	distanceKm, err := last.Point().DistanceTo(next.Point())
	if err != nil {
		return false
	}
	return distanceKm*1000 >= opts.MinDisplacementMeters
}
