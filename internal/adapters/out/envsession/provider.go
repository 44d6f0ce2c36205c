// Package envsession provides a session provider backed by static
// configuration. The subject and group memberships come from the environment;
// sign-in and sign-out are explicit calls, used by the HTTP surface to drive
// the session lifecycle without a real identity provider.
package envsession

import (
	"context"
	"sync"

	"partnerfeed/internal/core/ports"
	"partnerfeed/internal/pkg/errs"
)

// ErrNotSignedIn is returned by Current when no session is active.
var ErrNotSignedIn = errs.NewObjectNotFoundError("session", "no active session")

// Provider implements ports.SessionProvider with one configured identity.
type Provider struct {
	session ports.Session

	mu          sync.Mutex
	signedIn    bool
	subscribers map[int]func(ports.SessionEvent)
	nextSubID   int
}

// NewProvider creates a provider for the configured identity. The session
// starts signed in when startSignedIn is set.
func NewProvider(subject string, groups []string, startSignedIn bool) *Provider {
	return &Provider{
		session:     ports.Session{Subject: subject, Groups: groups},
		signedIn:    startSignedIn,
		subscribers: make(map[int]func(ports.SessionEvent)),
	}
}

// Current returns the configured session, or ErrNotSignedIn when signed out.
func (p *Provider) Current(_ context.Context) (ports.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.signedIn {
		return ports.Session{}, ErrNotSignedIn
	}
	return p.session, nil
}

// Subscribe registers a handler for session events.
func (p *Provider) Subscribe(handler func(ports.SessionEvent)) ports.Subscription {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = handler
	p.mu.Unlock()

	return ports.SubscriptionFunc(func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	})
}

// SignIn activates the session and emits a signed-in event. Signing in twice
// is a no-op.
func (p *Provider) SignIn() {
	p.mu.Lock()
	if p.signedIn {
		p.mu.Unlock()
		return
	}
	p.signedIn = true
	p.mu.Unlock()

	p.emit(ports.SessionEvent{Kind: ports.SessionSignedIn})
}

// SignOut ends the session and emits a signed-out event. Signing out twice is
// a no-op.
func (p *Provider) SignOut() {
	p.mu.Lock()
	if !p.signedIn {
		p.mu.Unlock()
		return
	}
	p.signedIn = false
	p.mu.Unlock()

	p.emit(ports.SessionEvent{Kind: ports.SessionSignedOut})
}

func (p *Provider) emit(event ports.SessionEvent) {
	p.mu.Lock()
	handlers := make([]func(ports.SessionEvent), 0, len(p.subscribers))
	for _, handler := range p.subscribers {
		handlers = append(handlers, handler)
	}
	p.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}
