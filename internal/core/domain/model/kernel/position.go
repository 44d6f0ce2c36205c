package kernel

import (
	"time"

	"partnerfeed/internal/pkg/errs"
	"partnerfeed/internal/pkg/guard"
)

// ErrPositionSampleIsNotConstructed is returned when attempting to use an
// improperly initialized PositionSample.
var ErrPositionSampleIsNotConstructed = errs.NewValueIsRequiredError(
	"position sample must be created via NewPositionSample constructor")

// PositionSample is a single fix from the position sensor: a geographic point
// plus the wall-clock moment it was observed. Only the most recent sample is
// ever retained by consumers; no history is kept.
type PositionSample struct {
	point      GeoPoint
	observedAt time.Time
	guard      guard.ConstructorGuard
}

// NewPositionSample creates a PositionSample from a validated point and timestamp.
// The timestamp must not be zero.
func NewPositionSample(point GeoPoint, observedAt time.Time) (PositionSample, error) {
	if err := point.Validate(); err != nil {
		return PositionSample{}, err
	}

	if observedAt.IsZero() {
		return PositionSample{}, errs.NewValueIsRequiredError("observedAt")
	}

	return PositionSample{
		point:      point,
		observedAt: observedAt,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the sample was properly constructed via NewPositionSample.
func (s PositionSample) Validate() error {
	return s.guard.Validate(ErrPositionSampleIsNotConstructed)
}

// Point returns the geographic coordinate of the fix.
func (s PositionSample) Point() GeoPoint {
	return s.point
}

// ObservedAt returns when the fix was taken.
func (s PositionSample) ObservedAt() time.Time {
	return s.observedAt
}

// Age reports how old the sample is relative to now.
func (s PositionSample) Age(now time.Time) time.Duration {
	return now.Sub(s.observedAt)
}
