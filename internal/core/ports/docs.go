// Package ports defines the contracts between the core and its external
// collaborators: the session provider, the remote record store (orders,
// partner profiles, customers) with its change-notification streams, the
// device position sensor and the external navigation/dialer launcher.
// Every long-lived registration returns a Subscription that the owning scope
// must release.
package ports
