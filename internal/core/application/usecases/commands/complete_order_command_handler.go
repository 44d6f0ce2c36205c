package commands

import (
	"context"
	"fmt"

	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/core/ports"
)

const completeOrderPrompt = "Mark this order as delivered?"

// CompleteOrderResult is the outcome of a complete-order command.
//
// Completed signals the caller to leave the order's detail view: the order is
// terminal and about to vanish from the live feed. A declined confirmation or
// a failed save leaves Completed false and the view open.
type CompleteOrderResult struct {
	Completed bool
	Order     *order.Order
}

// CompleteOrderCommandHandler marks an order Delivered behind an explicit
// confirmation gate. Delivered is irreversible, so the confirmation is
// mandatory and a decline is a silent no-op with no store write.
type CompleteOrderCommandHandler struct {
	orders    ports.OrderRepository
	confirmer Confirmer
}

// NewCompleteOrderCommandHandler creates a handler over the remote order store
// and the confirmation gate.
func NewCompleteOrderCommandHandler(
	orders ports.OrderRepository, confirmer Confirmer,
) CompleteOrderCommandHandler {
	return CompleteOrderCommandHandler{
		orders:    orders,
		confirmer: confirmer,
	}
}

// Handle processes the complete-order command. On a failed save the order
// stays in its previous status in the store and no leave signal is produced;
// retrying the command is safe.
func (h CompleteOrderCommandHandler) Handle(
	ctx context.Context, cmd CompleteOrderCommand,
) (CompleteOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CompleteOrderResult{}, err
	}

	aggregate, err := h.orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return CompleteOrderResult{}, err
	}

	confirmed, err := h.confirmer.Confirm(ctx, completeOrderPrompt)
	if err != nil {
		return CompleteOrderResult{Order: aggregate}, fmt.Errorf("confirm delivery: %w", err)
	}
	if !confirmed {
		return CompleteOrderResult{Order: aggregate}, nil
	}

	if err = aggregate.Complete(); err != nil {
		return CompleteOrderResult{Order: aggregate}, err
	}

	if err = h.orders.Save(ctx, aggregate); err != nil {
		result := CompleteOrderResult{Order: aggregate}
		if stored, getErr := h.orders.Get(ctx, cmd.OrderID()); getErr == nil {
			result.Order = stored
		}
		return result, fmt.Errorf("save order status: %w", err)
	}

	return CompleteOrderResult{Completed: true, Order: aggregate}, nil
}
