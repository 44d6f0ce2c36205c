// Package identity resolves the authenticated session to a delivery-partner
// profile and keeps that resolution live against session and remote-profile
// changes.
package identity

import (
	"context"
	"log/slog"
	"sync"

	"partnerfeed/internal/core/domain/model/partner"
	"partnerfeed/internal/core/ports"
	"partnerfeed/internal/pkg/errs"
)

// ErrResolverAlreadyStarted is returned when Start is called on a running resolver.
var ErrResolverAlreadyStarted = errs.NewValueIsInvalidError("resolver is already started")

// Resolver maps the authenticated session to a partner profile and publishes
// every change of that resolution: sign-in resolves, sign-out unresolves
// synchronously, and remote INSERT/UPDATE events on the matching profile
// record republish without a new sign-in.
//
// An unresolved partner is published as a nil profile. Resolution failures
// (no session, no matching record, query error) are swallowed and published
// as unresolved; they are never fatal.
type Resolver struct {
	sessions      ports.SessionProvider
	partners      ports.PartnerRepository
	requiredGroup string
	logger        *slog.Logger

	mu          sync.Mutex
	current     *partner.Profile
	subscribers map[int]func(*partner.Profile)
	nextSubID   int
	sessionSub  ports.Subscription
	profileSub  ports.Subscription
	started     bool
}

// NewResolver creates a resolver over the given session provider and partner
// store. When requiredGroup is non-empty, sessions lacking that group
// membership resolve to unresolved: only delivery partners may use this client.
func NewResolver(
	sessions ports.SessionProvider,
	partners ports.PartnerRepository,
	requiredGroup string,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		sessions:      sessions,
		partners:      partners,
		requiredGroup: requiredGroup,
		logger:        logger.With("component", "identity_resolver"),
		subscribers:   make(map[int]func(*partner.Profile)),
	}
}

// Start subscribes to session events and performs the initial resolution.
// Returns ErrResolverAlreadyStarted if called twice without Stop.
func (r *Resolver) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrResolverAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	r.mu.Lock()
	r.sessionSub = r.sessions.Subscribe(func(event ports.SessionEvent) {
		switch event.Kind {
		case ports.SessionSignedIn:
			r.resolve(context.Background())
		case ports.SessionSignedOut:
			// Unresolve synchronously, before any further feed activity.
			r.dropProfileSubscription()
			r.publish(nil)
		}
	})
	r.mu.Unlock()

	r.resolve(ctx)
	return nil
}

// Stop releases the session and profile subscriptions. The last published
// resolution stays in place; a stopped resolver can be restarted with Start.
func (r *Resolver) Stop() {
	r.mu.Lock()
	sessionSub := r.sessionSub
	r.sessionSub = nil
	r.started = false
	r.mu.Unlock()

	if sessionSub != nil {
		sessionSub.Unsubscribe()
	}
	r.dropProfileSubscription()
}

// Current returns the last published profile, or false when unresolved.
func (r *Resolver) Current() (partner.Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return partner.Profile{}, false
	}
	return *r.current, true
}

// Subscribe registers a handler for resolution changes. The handler is
// invoked immediately with the current resolution so late subscribers do not
// miss the state they joined in.
func (r *Resolver) Subscribe(handler func(*partner.Profile)) ports.Subscription {
	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = handler
	current := r.current
	r.mu.Unlock()

	handler(current)

	return ports.SubscriptionFunc(func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	})
}

// resolve performs one session-to-profile resolution and re-arms the remote
// profile observation for the resolved subject.
func (r *Resolver) resolve(ctx context.Context) {
	session, err := r.sessions.Current(ctx)
	if err != nil {
		r.dropProfileSubscription()
		r.publish(nil)
		return
	}

	if r.requiredGroup != "" && !session.InGroup(r.requiredGroup) {
		r.logger.WarnContext(ctx, "Session lacks required group, treating as unresolved",
			"subject", session.Subject, "group", r.requiredGroup)
		r.dropProfileSubscription()
		r.publish(nil)
		return
	}

	profile, err := r.partners.FindBySubject(ctx, session.Subject)
	if err != nil {
		r.logger.WarnContext(ctx, "Partner profile lookup failed, treating as unresolved",
			"subject", session.Subject, "error", err)
		r.dropProfileSubscription()
		r.publish(nil)
		return
	}

	r.observeProfile(session.Subject)
	r.publish(&profile)
}

// observeProfile replaces the profile subscription with one for the given
// subject. The old subscription is released first so no stale callback can
// arrive after the switch.
func (r *Resolver) observeProfile(subject string) {
	r.dropProfileSubscription()

	sub, err := r.partners.ObserveBySubject(subject, func(event ports.PartnerEvent) {
		if event.Op != ports.OpInsert && event.Op != ports.OpUpdate {
			return
		}
		updated := event.Profile
		r.publish(&updated)
	})
	if err != nil {
		// Resolution still succeeded; only live profile edits are lost.
		r.logger.Warn("Profile observation failed", "subject", subject, "error", err)
		return
	}

	r.mu.Lock()
	r.profileSub = sub
	r.mu.Unlock()
}

func (r *Resolver) dropProfileSubscription() {
	r.mu.Lock()
	sub := r.profileSub
	r.profileSub = nil
	r.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// publish replaces the current resolution and notifies subscribers outside
// the lock.
func (r *Resolver) publish(profile *partner.Profile) {
	r.mu.Lock()
	r.current = profile
	handlers := make([]func(*partner.Profile), 0, len(r.subscribers))
	for _, handler := range r.subscribers {
		handlers = append(handlers, handler)
	}
	r.mu.Unlock()

	for _, handler := range handlers {
		handler(profile)
	}
}
