package ports

// Subscription is the handle returned by every observe/watch call in the
// application. Each owning scope must call Unsubscribe exactly once when it
// ends (component teardown, partner switch, explicit stop); an unreleased
// subscription is a resource leak.
type Subscription interface {
	// Unsubscribe releases the subscription. Implementations must tolerate
	// repeated calls.
	Unsubscribe()
}

// SubscriptionFunc adapts a release function to the Subscription interface.
type SubscriptionFunc func()

// Unsubscribe calls the wrapped release function.
func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}
