package ports

import "context"

// SessionEventKind discriminates the events emitted by the session provider.
type SessionEventKind int

const (
	// SessionSignedIn fires after a user completes sign-in.
	SessionSignedIn SessionEventKind = iota + 1

	// SessionSignedOut fires after the session ends.
	SessionSignedOut
)

// SessionEvent is a single auth state change.
type SessionEvent struct {
	Kind SessionEventKind
}

// Session describes the authenticated session as far as this client needs it:
// a stable subject identifier and the group memberships used to gate access.
type Session struct {
	Subject string
	Groups  []string
}

// InGroup reports whether the session carries the given group membership.
func (s Session) InGroup(group string) bool {
	for _, g := range s.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// SessionProvider abstracts the authentication provider. Sign-in/sign-out
// flows themselves live outside this core; only the current session and its
// change events are consumed here.
type SessionProvider interface {
	// Current returns the active session, or an error when nobody is
	// signed in. The error is not fatal; it simply resolves to an
	// unresolved partner profile.
	Current(ctx context.Context) (Session, error)

	// Subscribe registers a handler for session events. The returned
	// subscription must be released when the owning scope ends.
	Subscribe(handler func(SessionEvent)) Subscription
}
