// Package weblauncher implements the external launcher by building the
// standard URL schemes for navigation and dialing and handing them to a
// dispatch function. The server-side default just logs the launch; a device
// shell swaps in a dispatcher that actually opens the URL.
package weblauncher

import (
	"fmt"
	"log/slog"
	"net/url"

	"partnerfeed/internal/core/domain/model/kernel"
)

// DispatchFunc receives the launch URL. Returning an error marks the launch
// as failed; the caller decides how to surface it.
type DispatchFunc func(launchURL string) error

// Launcher implements ports.Launcher.
type Launcher struct {
	dispatch DispatchFunc
	logger   *slog.Logger
}

// NewLauncher creates a launcher with the given dispatcher. A nil dispatcher
// logs the URL and succeeds.
func NewLauncher(dispatch DispatchFunc, logger *slog.Logger) *Launcher {
	l := &Launcher{
		dispatch: dispatch,
		logger:   logger.With("component", "launcher"),
	}
	if l.dispatch == nil {
		l.dispatch = l.logOnly
	}
	return l
}

// OpenDirections launches turn-by-turn navigation to the destination.
func (l *Launcher) OpenDirections(destination kernel.GeoPoint) error {
	if err := destination.Validate(); err != nil {
		return err
	}
	return l.dispatch(DirectionsURL(destination))
}

// Dial launches the dialer with the given phone number.
func (l *Launcher) Dial(phoneNumber string) error {
	if phoneNumber == "" {
		return fmt.Errorf("dial: empty phone number")
	}
	return l.dispatch(DialURL(phoneNumber))
}

// DirectionsURL builds the universal maps directions URL for a destination.
func DirectionsURL(destination kernel.GeoPoint) string {
	query := url.Values{}
	query.Set("api", "1")
	query.Set("destination",
		fmt.Sprintf("%f,%f", destination.Latitude(), destination.Longitude()))
	return "https://www.google.com/maps/dir/?" + query.Encode()
}

// DialURL builds the tel scheme URL for a phone number.
func DialURL(phoneNumber string) string {
	return "tel:" + phoneNumber
}

func (l *Launcher) logOnly(launchURL string) error {
	l.logger.Info("Launch requested", "url", launchURL)
	return nil
}
