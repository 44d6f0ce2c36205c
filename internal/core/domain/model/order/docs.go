// Package order contains the order aggregate of the partner client: the
// delivery order with its destination, lines, customer reference, owning
// partner and lifecycle status. The status state machine drives the only
// mutations this client ever performs (begin transit, complete).
package order
