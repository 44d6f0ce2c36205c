package identity_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerfeed/internal/core/application/identity"
	"partnerfeed/internal/core/domain/model/partner"
	"partnerfeed/internal/core/ports"
	"partnerfeed/internal/pkg/errs"
)

const partnerGroup = "DeliveryPartners"

type fakeSessionProvider struct {
	session    ports.Session
	sessionErr error
	handler    func(ports.SessionEvent)
	released   bool
}

func (f *fakeSessionProvider) Current(_ context.Context) (ports.Session, error) {
	if f.sessionErr != nil {
		return ports.Session{}, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeSessionProvider) Subscribe(handler func(ports.SessionEvent)) ports.Subscription {
	f.handler = handler
	return ports.SubscriptionFunc(func() { f.released = true })
}

func (f *fakeSessionProvider) signIn(subject string, groups ...string) {
	f.session = ports.Session{Subject: subject, Groups: groups}
	f.sessionErr = nil
	f.handler(ports.SessionEvent{Kind: ports.SessionSignedIn})
}

func (f *fakeSessionProvider) signOut() {
	f.sessionErr = errors.New("no active session")
	f.handler(ports.SessionEvent{Kind: ports.SessionSignedOut})
}

type fakePartnerRepository struct {
	profiles      map[string]partner.Profile
	findErr       error
	observeErr    error
	handlers      map[string]func(ports.PartnerEvent)
	releasedCount int
	observedOrder []string
}

func newFakePartnerRepository() *fakePartnerRepository {
	return &fakePartnerRepository{
		profiles: make(map[string]partner.Profile),
		handlers: make(map[string]func(ports.PartnerEvent)),
	}
}

func (f *fakePartnerRepository) add(t *testing.T, subject, name string) partner.Profile {
	t.Helper()
	profile, err := partner.NewProfile(subject, name)
	require.NoError(t, err)
	f.profiles[subject] = profile
	return profile
}

func (f *fakePartnerRepository) FindBySubject(_ context.Context, subject string) (partner.Profile, error) {
	if f.findErr != nil {
		return partner.Profile{}, f.findErr
	}
	profile, ok := f.profiles[subject]
	if !ok {
		return partner.Profile{}, errs.NewObjectNotFoundError("subject", nil)
	}
	return profile, nil
}

func (f *fakePartnerRepository) ObserveBySubject(
	subject string, handler func(ports.PartnerEvent),
) (ports.Subscription, error) {
	if f.observeErr != nil {
		return nil, f.observeErr
	}
	f.handlers[subject] = handler
	f.observedOrder = append(f.observedOrder, subject)
	return ports.SubscriptionFunc(func() { f.releasedCount++ }), nil
}

func (f *fakePartnerRepository) pushUpdate(t *testing.T, subject, newName string) {
	t.Helper()
	profile, err := partner.NewProfile(subject, newName)
	require.NoError(t, err)
	f.handlers[subject](ports.PartnerEvent{Op: ports.OpUpdate, Profile: profile})
}

func newResolver(
	sessions ports.SessionProvider, partners ports.PartnerRepository,
) *identity.Resolver {
	return identity.NewResolver(sessions, partners, partnerGroup, slog.Default())
}

func TestResolverResolvesSignedInPartner(t *testing.T) {
	sessions := &fakeSessionProvider{
		session: ports.Session{Subject: "sub-1", Groups: []string{partnerGroup}},
	}
	partners := newFakePartnerRepository()
	want := partners.add(t, "sub-1", "John")

	resolver := newResolver(sessions, partners)
	require.NoError(t, resolver.Start(context.Background()))

	got, ok := resolver.Current()
	require.True(t, ok)
	equal, err := got.IsEqual(want)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestResolverUnresolvedWithoutSession(t *testing.T) {
	sessions := &fakeSessionProvider{sessionErr: errors.New("no active session")}
	partners := newFakePartnerRepository()

	resolver := newResolver(sessions, partners)
	require.NoError(t, resolver.Start(context.Background()))

	_, ok := resolver.Current()
	assert.False(t, ok)
}

func TestResolverRejectsSessionOutsideGroup(t *testing.T) {
	sessions := &fakeSessionProvider{
		session: ports.Session{Subject: "sub-1", Groups: []string{"Customers"}},
	}
	partners := newFakePartnerRepository()
	partners.add(t, "sub-1", "John")

	resolver := newResolver(sessions, partners)
	require.NoError(t, resolver.Start(context.Background()))

	_, ok := resolver.Current()
	assert.False(t, ok, "a session outside the partner group must stay unresolved")
}

func TestResolverUnresolvedWhenLookupFails(t *testing.T) {
	sessions := &fakeSessionProvider{
		session: ports.Session{Subject: "sub-1", Groups: []string{partnerGroup}},
	}

	t.Run("no matching record", func(t *testing.T) {
		partners := newFakePartnerRepository()
		resolver := newResolver(sessions, partners)
		require.NoError(t, resolver.Start(context.Background()))

		_, ok := resolver.Current()
		assert.False(t, ok)
	})

	t.Run("query error", func(t *testing.T) {
		partners := newFakePartnerRepository()
		partners.findErr = errors.New("store unavailable")
		resolver := newResolver(sessions, partners)
		require.NoError(t, resolver.Start(context.Background()))

		_, ok := resolver.Current()
		assert.False(t, ok, "lookup errors resolve to unresolved, never panic or crash")
	})
}

func TestResolverSignInSignOutCycle(t *testing.T) {
	sessions := &fakeSessionProvider{sessionErr: errors.New("no active session")}
	partners := newFakePartnerRepository()
	partners.add(t, "sub-1", "John")

	resolver := newResolver(sessions, partners)
	require.NoError(t, resolver.Start(context.Background()))

	var published []*partner.Profile
	resolver.Subscribe(func(profile *partner.Profile) {
		published = append(published, profile)
	})
	require.Len(t, published, 1, "subscription replays the current resolution")
	assert.Nil(t, published[0])

	sessions.signIn("sub-1", partnerGroup)
	require.Len(t, published, 2)
	require.NotNil(t, published[1])
	assert.Equal(t, "John", published[1].Name())

	sessions.signOut()
	require.Len(t, published, 3)
	assert.Nil(t, published[2], "sign-out publishes unresolved synchronously")
	assert.Equal(t, 1, partners.releasedCount, "sign-out releases the profile observation")
}

func TestResolverRepublishesRemoteProfileEdit(t *testing.T) {
	sessions := &fakeSessionProvider{
		session: ports.Session{Subject: "sub-1", Groups: []string{partnerGroup}},
	}
	partners := newFakePartnerRepository()
	partners.add(t, "sub-1", "John")

	resolver := newResolver(sessions, partners)
	require.NoError(t, resolver.Start(context.Background()))

	var published []*partner.Profile
	resolver.Subscribe(func(profile *partner.Profile) {
		published = append(published, profile)
	})
	require.Len(t, published, 1)

	partners.pushUpdate(t, "sub-1", "Johnny")
	require.Len(t, published, 2)
	assert.Equal(t, "Johnny", published[1].Name(), "remote edits republish without a new sign-in")
}

func TestResolverSwitchReleasesOldObservationFirst(t *testing.T) {
	sessions := &fakeSessionProvider{
		session: ports.Session{Subject: "sub-1", Groups: []string{partnerGroup}},
	}
	partners := newFakePartnerRepository()
	partners.add(t, "sub-1", "John")
	partners.add(t, "sub-2", "Jane")

	resolver := newResolver(sessions, partners)
	require.NoError(t, resolver.Start(context.Background()))
	require.Equal(t, []string{"sub-1"}, partners.observedOrder)

	sessions.signIn("sub-2", partnerGroup)
	assert.Equal(t, 1, partners.releasedCount, "old profile observation released on switch")
	assert.Equal(t, []string{"sub-1", "sub-2"}, partners.observedOrder)

	got, ok := resolver.Current()
	require.True(t, ok)
	assert.Equal(t, "Jane", got.Name())
}

func TestResolverStartTwice(t *testing.T) {
	sessions := &fakeSessionProvider{sessionErr: errors.New("no active session")}
	partners := newFakePartnerRepository()

	resolver := newResolver(sessions, partners)
	require.NoError(t, resolver.Start(context.Background()))
	require.ErrorIs(t, resolver.Start(context.Background()), identity.ErrResolverAlreadyStarted)
}

func TestResolverStopReleasesSubscriptions(t *testing.T) {
	sessions := &fakeSessionProvider{
		session: ports.Session{Subject: "sub-1", Groups: []string{partnerGroup}},
	}
	partners := newFakePartnerRepository()
	partners.add(t, "sub-1", "John")

	resolver := newResolver(sessions, partners)
	require.NoError(t, resolver.Start(context.Background()))

	resolver.Stop()
	assert.True(t, sessions.released)
	assert.Equal(t, 1, partners.releasedCount)
}
