package ports

import (
	"context"

	"partnerfeed/internal/core/domain/model/partner"
)

// PartnerEvent is a change notification for a partner profile record.
// Unlike order events it carries the changed profile itself: the identity
// resolver republishes the element directly instead of re-querying.
type PartnerEvent struct {
	Op      OpType
	Profile partner.Profile
}

// PartnerRepository defines the remote-store contract for partner profiles.
type PartnerRepository interface {
	// FindBySubject returns the first profile whose subject matches, or an
	// errs.ObjectNotFoundError when none exists.
	FindBySubject(ctx context.Context, subject string) (partner.Profile, error)

	// ObserveBySubject registers a handler for changes to the profile with
	// the given subject. The returned subscription must be released when
	// the owning scope ends.
	ObserveBySubject(subject string, handler func(PartnerEvent)) (Subscription, error)
}
