package queries

import (
	"context"
	"log/slog"

	"partnerfeed/internal/core/ports"
)

// GetOrderDetailsQueryHandler joins an order with its customer record.
//
// The order is the primary record: when it cannot be fetched the query fails.
// The customer is supplementary; a failed customer fetch degrades to a
// response without customer data so the detail view still opens.
type GetOrderDetailsQueryHandler struct {
	orders    ports.OrderRepository
	customers ports.CustomerRepository
	logger    *slog.Logger
}

// NewGetOrderDetailsQueryHandler creates a handler over the remote order and
// customer stores.
func NewGetOrderDetailsQueryHandler(
	orders ports.OrderRepository,
	customers ports.CustomerRepository,
	logger *slog.Logger,
) GetOrderDetailsQueryHandler {
	return GetOrderDetailsQueryHandler{
		orders:    orders,
		customers: customers,
		logger:    logger.With("component", "order_details_query"),
	}
}

// Handle executes the query and returns the joined detail view.
func (h GetOrderDetailsQueryHandler) Handle(
	ctx context.Context, query GetOrderDetailsQuery,
) (GetOrderDetailsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderDetailsQueryResponse{}, err
	}

	aggregate, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderDetailsQueryResponse{}, err
	}

	response := GetOrderDetailsQueryResponse{Order: aggregate}

	record, err := h.customers.Get(ctx, aggregate.CustomerID())
	if err != nil {
		h.logger.WarnContext(ctx, "Customer lookup failed, rendering order without customer",
			"orderID", query.OrderID().String(), "error", err)
		return response, nil
	}
	response.Customer = record

	return response, nil
}
