package ports

import (
	"context"

	"partnerfeed/internal/core/domain/model/customer"
	"partnerfeed/internal/core/domain/model/kernel"
)

// CustomerRepository defines the remote-store contract for customer records.
// Customers are read-only reference data fetched on demand for the order
// detail view; there is no observe channel for them.
type CustomerRepository interface {
	// Get retrieves a customer by its identifier.
	// Returns an errs.ObjectNotFoundError when no such customer exists.
	Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error)
}
