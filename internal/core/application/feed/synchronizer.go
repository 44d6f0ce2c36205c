// Package feed maintains the live, filtered set of a partner's open orders
// against the remote order collection and its change stream.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/core/domain/model/partner"
	"partnerfeed/internal/core/ports"
)

// Synchronizer materializes the invariant
//
//	published set = {orders | owner == profile.Name() && status != DELIVERED}
//
// and keeps it current by re-deriving on every partner-profile change and on
// every change notification from the remote order collection. Re-derivation
// always issues one fresh owner-filtered query and replaces the published
// value whole; there is no incremental patching.
//
// Consistency note: derivations are not serialized against each other. Each
// one is stamped with a generation; a derivation that resolves after a newer
// one has started is discarded, so the published value is always from the
// newest derivation that managed to finish. There is no queueing or
// back-pressure beyond that.
//
// Exactly one subscription to the order change stream is alive at a time.
// Switching profiles releases the old subscription before establishing the
// new one. An unresolved profile publishes the empty set and holds no remote
// subscription at all.
type Synchronizer struct {
	orders ports.OrderRepository
	logger *slog.Logger

	mu          sync.Mutex
	profile     *partner.Profile
	published   []*order.Order
	orderSub    ports.Subscription
	subscribers map[int]func([]*order.Order)
	nextSubID   int
	generation  uint64
}

// NewSynchronizer creates a synchronizer over the given order store.
// It publishes nothing until SetProfile is called.
func NewSynchronizer(orders ports.OrderRepository, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		orders:      orders,
		logger:      logger.With("component", "feed_synchronizer"),
		published:   []*order.Order{},
		subscribers: make(map[int]func([]*order.Order)),
	}
}

// SetProfile switches the synchronizer to a new partner resolution. A nil
// profile (unresolved) publishes the empty set. The old change subscription
// is always released before any new one is established.
func (s *Synchronizer) SetProfile(ctx context.Context, profile *partner.Profile) {
	s.mu.Lock()
	oldSub := s.orderSub
	s.orderSub = nil
	s.profile = profile
	gen := s.nextGenerationLocked()
	s.mu.Unlock()

	if oldSub != nil {
		oldSub.Unsubscribe()
	}

	if profile == nil {
		s.publish(gen, []*order.Order{})
		return
	}

	sub, err := s.orders.Observe(func(ports.OrderEvent) {
		// Any change to the collection triggers a full re-derivation.
		s.Refresh(context.Background())
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Order observation failed, feed will only refresh on demand",
			"partner", profile.Name(), "error", err)
	} else {
		s.mu.Lock()
		s.orderSub = sub
		s.mu.Unlock()
	}

	s.derive(ctx, gen)
}

// Refresh forces one re-derivation for the current profile. Used by the
// change-stream handler and by callers implementing their own retry policy.
func (s *Synchronizer) Refresh(ctx context.Context) {
	s.mu.Lock()
	gen := s.nextGenerationLocked()
	s.mu.Unlock()

	s.derive(ctx, gen)
}

// Snapshot returns a copy of the currently published order set.
func (s *Synchronizer) Snapshot() []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]*order.Order, len(s.published))
	copy(snapshot, s.published)
	return snapshot
}

// Subscribe registers a handler for published-set replacements. The handler
// is invoked immediately with the current set.
func (s *Synchronizer) Subscribe(handler func([]*order.Order)) ports.Subscription {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = handler
	current := make([]*order.Order, len(s.published))
	copy(current, s.published)
	s.mu.Unlock()

	handler(current)

	return ports.SubscriptionFunc(func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	})
}

// Stop releases the order change subscription. The last published set stays
// in place for any remaining readers.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	sub := s.orderSub
	s.orderSub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// derive runs one query-and-replace cycle for the given generation.
func (s *Synchronizer) derive(ctx context.Context, gen uint64) {
	s.mu.Lock()
	profile := s.profile
	s.mu.Unlock()

	if profile == nil {
		s.publish(gen, []*order.Order{})
		return
	}

	result, err := s.orders.GetByOwner(ctx, profile.Name())
	if err != nil {
		// Degrade to the stale set; retry policy belongs to the caller.
		s.logger.WarnContext(ctx, "Feed derivation failed, keeping previous set",
			"partner", profile.Name(), "error", err)
		return
	}

	open := make([]*order.Order, 0, len(result))
	for _, o := range result {
		if o.IsOpen() {
			open = append(open, o)
		}
	}

	s.publish(gen, open)
}

// publish replaces the published set if no newer derivation has started,
// then notifies subscribers outside the lock.
func (s *Synchronizer) publish(gen uint64, set []*order.Order) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.published = set
	handlers := make([]func([]*order.Order), 0, len(s.subscribers))
	for _, handler := range s.subscribers {
		handlers = append(handlers, handler)
	}
	s.mu.Unlock()

	for _, handler := range handlers {
		snapshot := make([]*order.Order, len(set))
		copy(snapshot, set)
		handler(snapshot)
	}
}

func (s *Synchronizer) nextGenerationLocked() uint64 {
	s.generation++
	return s.generation
}
