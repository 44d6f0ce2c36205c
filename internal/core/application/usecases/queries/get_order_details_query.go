// Package queries contains the read-side operations of the client. Queries
// never mutate state; they join remote records into view-ready responses.
package queries

import (
	"errors"

	"partnerfeed/internal/core/domain/model/customer"
	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/pkg/guard"
)

var ErrGetOrderDetailsQueryIsNotConstructed = errors.New(
	"GetOrderDetailsQuery must be created via NewGetOrderDetailsQuery constructor",
)

// GetOrderDetailsQuery retrieves a single order together with its customer
// record for the detail view.
type GetOrderDetailsQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderDetailsQuery creates a query for the given order.
func NewGetOrderDetailsQuery(orderID kernel.UUID) (GetOrderDetailsQuery, error) {
	query := GetOrderDetailsQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setOrderID(orderID); err != nil {
		return GetOrderDetailsQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderDetailsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderDetailsQueryIsNotConstructed)
}

// OrderID returns the identifier of the order being viewed.
func (q GetOrderDetailsQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q *GetOrderDetailsQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}

// GetOrderDetailsQueryResponse is the joined view of an order and its
// customer. Customer is nil when the customer record could not be fetched;
// the order itself still renders.
type GetOrderDetailsQueryResponse struct {
	Order    *order.Order
	Customer *customer.Customer
}
