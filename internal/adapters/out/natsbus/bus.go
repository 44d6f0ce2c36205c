// Package natsbus carries the change-notification streams of the remote
// record store over NATS subjects. The postgres repositories publish an event
// after every successful write and implement their observe operations by
// subscribing here, so every running client converges on the same store state.
package natsbus

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"partnerfeed/internal/core/ports"
)

const (
	// OrdersSubject carries change events for the whole order collection.
	OrdersSubject = "partnerfeed.orders"

	// partnerSubjectPrefix prefixes per-partner profile change subjects.
	partnerSubjectPrefix = "partnerfeed.partners."
)

// PartnerSubject returns the NATS subject carrying profile changes for one
// session subject.
func PartnerSubject(sessionSubject string) string {
	return partnerSubjectPrefix + sessionSubject
}

// Bus is a thin JSON publish/subscribe wrapper over a NATS connection.
type Bus struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// Connect establishes a NATS connection for the bus.
func Connect(url string, logger *slog.Logger) (*Bus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}

	return &Bus{
		conn:   conn,
		logger: logger.With("component", "change_bus"),
	}, nil
}

// Close drains and closes the underlying connection.
func (b *Bus) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn("Draining nats connection failed", "error", err)
	}
	b.conn.Close()
}

// Publish marshals the message as JSON and publishes it on the subject.
func (b *Bus) Publish(subject string, message any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	if err = b.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish change event on %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers a handler for raw payloads on the subject. Decoding is
// left to the caller, which knows the message shape for its subject.
func (b *Bus) Subscribe(subject string, handler func(payload []byte)) (ports.Subscription, error) {
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}

	return ports.SubscriptionFunc(func() {
		if unsubErr := sub.Unsubscribe(); unsubErr != nil {
			b.logger.Warn("Unsubscribe failed", "subject", subject, "error", unsubErr)
		}
	}), nil
}
