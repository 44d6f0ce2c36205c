package commands

import (
	"errors"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/pkg/guard"
)

var ErrBeginTransitCommandIsNotConstructed = errors.New(
	"BeginTransitCommand must be created via NewBeginTransitCommand constructor",
)

// BeginTransitCommand represents the partner heading out with an order:
// the order moves to OnTheWay and external navigation is launched.
type BeginTransitCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewBeginTransitCommand creates a command to start transit for the given order.
func NewBeginTransitCommand(orderID kernel.UUID) (BeginTransitCommand, error) {
	command := BeginTransitCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return BeginTransitCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c BeginTransitCommand) Validate() error {
	return c.guard.Validate(ErrBeginTransitCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to take on the road.
func (c BeginTransitCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *BeginTransitCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
