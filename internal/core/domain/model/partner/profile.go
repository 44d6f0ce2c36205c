// Package partner contains the delivery-partner profile: the identity record
// joined to the authenticated session. The profile's display name is the join
// key used to find the partner's orders.
package partner

import (
	"errors"
	"fmt"

	"partnerfeed/internal/pkg/errs"
	"partnerfeed/internal/pkg/guard"
)

// ErrProfileIsNotConstructed is returned when attempting to use an improperly
// initialized Profile.
var ErrProfileIsNotConstructed = errs.NewValueIsRequiredError(
	"profile must be created via NewProfile constructor")

// Profile is the delivery-partner identity record. It is resolved from the
// authenticated session subject and owned by the identity resolver; the rest
// of the application only ever sees published copies.
//
// Profile is a value object: remote edits (e.g. a display-name change) arrive
// as a fresh Profile published by the resolver, never as in-place mutation.
type Profile struct { //nolint:recvcheck //using for validation
	subject string
	name    string
	guard   guard.ConstructorGuard
}

// NewProfile creates a Profile from the session subject and the partner's
// display name. Both are required: the subject joins the profile to the
// session, the name joins it to the partner's orders.
func NewProfile(subject, name string) (Profile, error) {
	profile := Profile{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(profile.setSubject(subject), profile.setName(name)); err != nil {
		return Profile{}, err
	}

	return profile, nil
}

// Validate checks if the Profile was properly constructed via NewProfile.
func (p Profile) Validate() error {
	return p.guard.Validate(ErrProfileIsNotConstructed)
}

// Subject returns the session subject identifier the profile was resolved from.
func (p Profile) Subject() string {
	return p.subject
}

// Name returns the partner's display name, the owner key on orders.
func (p Profile) Name() string {
	return p.name
}

// String returns a human-readable representation. Implements fmt.Stringer.
func (p Profile) String() string {
	return fmt.Sprintf("Profile(%s,%s)", p.subject, p.name)
}

// IsEqual compares two profiles by subject and name.
func (p Profile) IsEqual(other Profile) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.subject == other.subject && p.name == other.name, nil
}

func (p *Profile) setSubject(subject string) error {
	if subject == "" {
		return errs.NewValueIsRequiredError("subject")
	}
	p.subject = subject
	return nil
}

func (p *Profile) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	p.name = name
	return nil
}
