package order

import (
	"errors"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through the NewOrder or RestoreOrder factory methods. This ensures all
// orders are properly validated.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Order represents a delivery order assigned to a partner. It is the
// aggregate root for the order lifecycle on the client side: the partner
// drives it from Pending through OnTheWay to Delivered.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and customer reference
//   - Must have a valid delivery destination
//   - Must name the owning partner (the assignment is decided upstream)
//   - Status transitions follow the defined state machine
//   - Can only be created through NewOrder or RestoreOrder
//
// Orders are never created or deleted by this client; they arrive from the
// remote store already assigned and are only ever mutated through the
// lifecycle transitions.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// destination is the delivery point
	destination kernel.GeoPoint

	// items are the order lines, in the order the store returns them
	items []Item

	// total is the amount charged for the whole order
	total float64

	// customerID references the customer record for the detail view
	customerID kernel.UUID

	// owner is the display name of the partner the order is assigned to
	owner string

	// status is the current state in the order lifecycle
	status Status

	// isConstructed ensures the order was created via a factory method
	isConstructed bool
}

// NewOrder creates an Order in Pending status with validation. This mirrors
// how upstream dispatch hands orders to a partner and is the entry point used
// by tests and seeders; the client itself never creates orders.
func NewOrder(
	id kernel.UUID,
	destination kernel.GeoPoint,
	items []Item,
	total float64,
	customerID kernel.UUID,
	owner string,
) (*Order, error) {
	return RestoreOrder(id, destination, items, total, customerID, owner, Pending)
}

// RestoreOrder reconstructs an Order from persistence with an explicit status.
// All invariants are re-validated so corrupt records fail loudly at the edge.
func RestoreOrder(
	id kernel.UUID,
	destination kernel.GeoPoint,
	items []Item,
	total float64,
	customerID kernel.UUID,
	owner string,
	status Status,
) (*Order, error) {
	order := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setDestination(destination),
		order.setItems(items),
		order.setTotal(total),
		order.setCustomerID(customerID),
		order.setOwner(owner),
		order.setStatus(status),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed through a
// factory method. This prevents bypassing validation by directly
// instantiating the struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Destination returns the delivery point of the order.
func (o *Order) Destination() kernel.GeoPoint {
	return o.destination
}

// Items returns a copy of the order lines, preserving store order.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// Total returns the amount charged for the whole order.
func (o *Order) Total() float64 {
	return o.total
}

// CustomerID returns the customer reference for the detail view.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Owner returns the display name of the partner the order is assigned to.
func (o *Order) Owner() string {
	return o.owner
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// IsOpen reports whether the order still belongs in the live feed,
// i.e. its status is not terminal.
func (o *Order) IsOpen() bool {
	return !o.status.IsTerminal()
}

// BeginTransit moves the order to OnTheWay.
//
// Allowed from Pending and, idempotently, from OnTheWay: reopening the
// directions view must not fail. Delivered orders reject the transition.
func (o *Order) BeginTransit() error {
	newStatus, err := o.status.BeginTransit()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Complete marks the order as Delivered.
//
// Delivered is terminal: a completed order drops out of the live feed on the
// next re-derivation and accepts no further transitions.
func (o *Order) Complete() error {
	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setDestination(destination kernel.GeoPoint) error {
	if err := destination.Validate(); err != nil {
		return err
	}
	o.destination = destination
	return nil
}

func (o *Order) setItems(items []Item) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setTotal(total float64) error {
	if total < 0 {
		return errs.NewValueIsInvalidError("total")
	}
	o.total = total
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setOwner(owner string) error {
	if owner == "" {
		return errs.NewValueIsRequiredError("owner")
	}
	o.owner = owner
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
