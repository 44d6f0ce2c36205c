package commands

import (
	"context"
	"fmt"

	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/core/ports"
)

// BeginTransitCommandHandler moves an order to OnTheWay and opens external
// navigation to its destination.
//
// The transition is persisted before navigation launches: a partner who never
// reaches the road still shows as OnTheWay, which matches what dispatch sees.
// When persistence fails the store copy is re-read and returned alongside the
// error so the caller renders the authoritative state, not the failed local one.
type BeginTransitCommandHandler struct {
	orders   ports.OrderRepository
	launcher ports.Launcher
}

// NewBeginTransitCommandHandler creates a handler over the remote order store
// and the external navigation launcher.
func NewBeginTransitCommandHandler(
	orders ports.OrderRepository, launcher ports.Launcher,
) BeginTransitCommandHandler {
	return BeginTransitCommandHandler{
		orders:   orders,
		launcher: launcher,
	}
}

// Handle processes the begin-transit command and returns the resulting order
// state. Delivered orders reject the transition; repeating it on an order
// already OnTheWay succeeds, so reopening navigation never fails.
func (h BeginTransitCommandHandler) Handle(
	ctx context.Context, cmd BeginTransitCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	aggregate, err := h.orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = aggregate.BeginTransit(); err != nil {
		return aggregate, err
	}

	if err = h.orders.Save(ctx, aggregate); err != nil {
		return h.reconcile(ctx, cmd, fmt.Errorf("save order status: %w", err))
	}

	if err = h.launcher.OpenDirections(aggregate.Destination()); err != nil {
		// The status change is already persisted; only navigation failed.
		return aggregate, fmt.Errorf("open directions: %w", err)
	}

	return aggregate, nil
}

// reconcile re-reads the store copy after a failed save so the caller sees the
// authoritative state. When even the re-read fails the original error stands.
func (h BeginTransitCommandHandler) reconcile(
	ctx context.Context, cmd BeginTransitCommand, cause error,
) (*order.Order, error) {
	stored, getErr := h.orders.Get(ctx, cmd.OrderID())
	if getErr != nil {
		return nil, cause
	}
	return stored, cause
}
