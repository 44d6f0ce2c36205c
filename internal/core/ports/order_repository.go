package ports

import (
	"context"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
)

// OpType classifies a change event from the remote record store.
type OpType int

const (
	// OpInsert indicates a record was created.
	OpInsert OpType = iota + 1

	// OpUpdate indicates a record was modified.
	OpUpdate

	// OpDelete indicates a record was removed.
	OpDelete
)

// String returns the wire representation of the operation type.
func (t OpType) String() string {
	switch t {
	case OpInsert:
		return "INSERT"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// OpTypeFromString parses the wire representation of an operation type.
// Unknown strings yield the zero OpType.
func OpTypeFromString(s string) OpType {
	switch s {
	case "INSERT":
		return OpInsert
	case "UPDATE":
		return OpUpdate
	case "DELETE":
		return OpDelete
	default:
		return 0
	}
}

// OrderEvent is a change notification for the order collection. It carries
// only the operation and the affected order's identity: consumers re-query
// rather than patch, so the payload stays minimal.
type OrderEvent struct {
	Op      OpType
	OrderID kernel.UUID
}

// OrderRepository defines the remote-store contract for orders. The client
// never creates or deletes orders; it reads them, saves lifecycle updates and
// observes the collection for changes.
type OrderRepository interface {
	// GetByOwner retrieves all orders whose owner field matches the given
	// partner display name, in store order.
	GetByOwner(ctx context.Context, owner string) ([]*order.Order, error)

	// Get retrieves a single order by its identifier.
	// Returns an errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Save persists the given order state, replacing the remote record.
	// Last write wins; no concurrency token is checked.
	Save(ctx context.Context, aggregate *order.Order) error

	// Observe registers a handler for change events on the whole order
	// collection. The returned subscription must be released when the
	// owning scope ends.
	Observe(handler func(OrderEvent)) (Subscription, error)
}
