// Package inmem provides an in-memory implementation of the remote record
// store with synchronous change notifications. It backs demo mode and local
// development, where no postgres or message broker is available.
package inmem

import (
	"context"
	"sync"

	"partnerfeed/internal/core/domain/model/customer"
	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/core/domain/model/partner"
	"partnerfeed/internal/core/ports"
	"partnerfeed/internal/pkg/errs"
)

type partnerObserver struct {
	subject string
	handler func(ports.PartnerEvent)
}

// Store holds orders, partner profiles and customers in memory and fans
// change events out to observers synchronously. Aggregates are cloned on the
// way in and out so callers never share mutable state with the store.
type Store struct {
	mu               sync.RWMutex
	orders           map[kernel.UUID]*order.Order
	partners         map[string]partner.Profile
	customers        map[kernel.UUID]*customer.Customer
	orderObservers   map[int]func(ports.OrderEvent)
	partnerObservers map[int]partnerObserver
	nextObserverID   int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		orders:           make(map[kernel.UUID]*order.Order),
		partners:         make(map[string]partner.Profile),
		customers:        make(map[kernel.UUID]*customer.Customer),
		orderObservers:   make(map[int]func(ports.OrderEvent)),
		partnerObservers: make(map[int]partnerObserver),
	}
}

// Get retrieves an order by ID.
func (s *Store) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	stored, ok := s.orders[id]
	s.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return cloneOrder(stored)
}

// GetByOwner retrieves all orders assigned to the given partner display name.
func (s *Store) GetByOwner(_ context.Context, owner string) ([]*order.Order, error) {
	s.mu.RLock()
	matched := make([]*order.Order, 0)
	for _, stored := range s.orders {
		if stored.Owner() == owner {
			matched = append(matched, stored)
		}
	}
	s.mu.RUnlock()

	result := make([]*order.Order, 0, len(matched))
	for _, stored := range matched {
		cloned, err := cloneOrder(stored)
		if err != nil {
			return nil, err
		}
		result = append(result, cloned)
	}
	return result, nil
}

// Save replaces the stored order state and notifies order observers.
// Last write wins; no concurrency token is checked.
func (s *Store) Save(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	cloned, err := cloneOrder(aggregate)
	if err != nil {
		return err
	}

	s.mu.Lock()
	_, existed := s.orders[cloned.ID()]
	s.orders[cloned.ID()] = cloned
	s.mu.Unlock()

	op := ports.OpInsert
	if existed {
		op = ports.OpUpdate
	}
	s.notifyOrderObservers(ports.OrderEvent{Op: op, OrderID: cloned.ID()})
	return nil
}

// Observe registers a handler for order change events.
func (s *Store) Observe(handler func(ports.OrderEvent)) (ports.Subscription, error) {
	s.mu.Lock()
	id := s.nextObserverID
	s.nextObserverID++
	s.orderObservers[id] = handler
	s.mu.Unlock()

	return ports.SubscriptionFunc(func() {
		s.mu.Lock()
		delete(s.orderObservers, id)
		s.mu.Unlock()
	}), nil
}

// FindBySubject returns the partner profile for the given session subject.
func (s *Store) FindBySubject(_ context.Context, subject string) (partner.Profile, error) {
	s.mu.RLock()
	profile, ok := s.partners[subject]
	s.mu.RUnlock()

	if !ok {
		return partner.Profile{}, errs.NewObjectNotFoundError("partner", subject)
	}
	return profile, nil
}

// ObserveBySubject registers a handler for changes to one partner profile.
func (s *Store) ObserveBySubject(
	subject string, handler func(ports.PartnerEvent),
) (ports.Subscription, error) {
	s.mu.Lock()
	id := s.nextObserverID
	s.nextObserverID++
	s.partnerObservers[id] = partnerObserver{subject: subject, handler: handler}
	s.mu.Unlock()

	return ports.SubscriptionFunc(func() {
		s.mu.Lock()
		delete(s.partnerObservers, id)
		s.mu.Unlock()
	}), nil
}

// SavePartner stores a partner profile and notifies matching observers.
func (s *Store) SavePartner(profile partner.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	_, existed := s.partners[profile.Subject()]
	s.partners[profile.Subject()] = profile
	s.mu.Unlock()

	op := ports.OpInsert
	if existed {
		op = ports.OpUpdate
	}
	s.notifyPartnerObservers(ports.PartnerEvent{Op: op, Profile: profile})
	return nil
}

// Get retrieves a customer by ID. Implements ports.CustomerRepository through
// the Customers view below.
func (s *Store) getCustomer(id kernel.UUID) (*customer.Customer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	record, ok := s.customers[id]
	s.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("customer", id.String())
	}
	return record, nil
}

// SaveCustomer stores a customer record.
func (s *Store) SaveCustomer(record *customer.Customer) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.customers[record.ID()] = record
	s.mu.Unlock()
	return nil
}

// Customers returns the store's customer repository view.
func (s *Store) Customers() ports.CustomerRepository {
	return customerView{store: s}
}

type customerView struct {
	store *Store
}

func (v customerView) Get(_ context.Context, id kernel.UUID) (*customer.Customer, error) {
	return v.store.getCustomer(id)
}

func (s *Store) notifyOrderObservers(event ports.OrderEvent) {
	s.mu.RLock()
	handlers := make([]func(ports.OrderEvent), 0, len(s.orderObservers))
	for _, handler := range s.orderObservers {
		handlers = append(handlers, handler)
	}
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

func (s *Store) notifyPartnerObservers(event ports.PartnerEvent) {
	s.mu.RLock()
	handlers := make([]func(ports.PartnerEvent), 0, len(s.partnerObservers))
	for _, observer := range s.partnerObservers {
		if observer.subject == event.Profile.Subject() {
			handlers = append(handlers, observer.handler)
		}
	}
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// cloneOrder rebuilds an order through its factory so store and caller never
// share a mutable aggregate.
func cloneOrder(aggregate *order.Order) (*order.Order, error) {
	return order.RestoreOrder(
		aggregate.ID(),
		aggregate.Destination(),
		aggregate.Items(),
		aggregate.Total(),
		aggregate.CustomerID(),
		aggregate.Owner(),
		aggregate.Status(),
	)
}
