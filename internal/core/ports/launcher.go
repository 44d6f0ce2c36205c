package ports

import "partnerfeed/internal/core/domain/model/kernel"

// Launcher abstracts the device's external URL handling: opening turn-by-turn
// navigation to a coordinate and dialing a phone number. Both are
// fire-and-forget; no result is consumed beyond the launch error itself.
type Launcher interface {
	// OpenDirections launches external navigation to the given point.
	OpenDirections(destination kernel.GeoPoint) error

	// Dial launches the device dialer with the given phone number.
	Dial(phoneNumber string) error
}
