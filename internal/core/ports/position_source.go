package ports

import (
	"context"
	"errors"
	"time"

	"partnerfeed/internal/core/domain/model/kernel"
)

// ErrPermissionDenied is returned by RequestPermission when the user or
// platform refuses access to the position sensor. It is non-fatal: the feed
// stays usable, only ranking is disabled.
var ErrPermissionDenied = errors.New("position permission denied")

// WatchOptions bound how often the position source delivers samples. A sample
// is only emitted when both the minimum interval has elapsed and the device
// has moved at least the minimum displacement since the last delivery.
type WatchOptions struct {
	MinInterval           time.Duration
	MinDisplacementMeters float64
}

// PositionSource abstracts the device location sensor.
type PositionSource interface {
	// RequestPermission asks for sensor access. Returns ErrPermissionDenied
	// (possibly wrapped) when access is refused.
	RequestPermission(ctx context.Context) error

	// Watch starts delivering position samples to the handler at
	// sensor-determined intervals gated by opts. The returned subscription
	// must be released to free the sensor.
	Watch(opts WatchOptions, handler func(kernel.PositionSample)) (Subscription, error)
}
