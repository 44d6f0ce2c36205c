package order

import (
	"fmt"

	"partnerfeed/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery order as seen by the
// partner client. It implements a small state machine with defined
// transitions:
//
//	Pending ──┬──> OnTheWay ──> Delivered
//	          │        │
//	          └────────┘
//	  (begin transit is idempotent)
//
// Delivered is terminal; no transition leads out of it. The string forms
// match the wire representation used by the remote store.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of an order handed to the partner.
	// The partner has not started driving to the customer yet.
	Pending

	// OnTheWay indicates the partner is en route to the delivery point.
	OnTheWay

	// Delivered indicates the order has been handed over to the customer.
	// This is a final state; delivered orders drop out of the live feed.
	Delivered
)

// getStatusStrings returns the wire representation for every Status value.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Pending:   "PENDING",
		OnTheWay:  "ON_THE_WAY",
		Delivered: "DELIVERED",
	}
}

// getValidStatusStrings returns only valid Status values, to support validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "PENDING",
		OnTheWay:  "ON_THE_WAY",
		Delivered: "DELIVERED",
	}
}

// StatusFromString parses the wire representation of a status.
// Returns an error for any string that does not name a valid status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// Valid statuses are Pending, OnTheWay and Delivered; Unknown (0) and any
// other values are invalid. Used to vet status values arriving from the
// remote store before use.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status, or "UNKNOWN" for
// invalid values. Implements fmt.Stringer and is safe on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transitions are defined for the status.
func (s Status) IsTerminal() bool {
	return s == Delivered
}

// BeginTransit transitions the status to OnTheWay.
//
// Valid transitions:
//   - Pending -> OnTheWay (partner starts driving)
//   - OnTheWay -> OnTheWay (idempotent; reopening directions is allowed)
//
// Invalid transitions:
//   - Delivered -> OnTheWay (terminal status)
//   - Unknown -> OnTheWay (invalid initial state)
//
// Returns (OnTheWay, nil) on a valid transition, or (0, error) otherwise.
func (s Status) BeginTransit() (Status, error) {
	if s != Pending && s != OnTheWay {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to begin transit", s.String()),
		)
	}

	return OnTheWay, nil
}

// Complete transitions the status to Delivered.
//
// Valid transitions:
//   - Pending -> Delivered (handover without a recorded transit leg)
//   - OnTheWay -> Delivered (normal flow)
//
// Invalid transitions:
//   - Delivered -> Delivered (already terminal)
//   - Unknown -> Delivered (invalid initial state)
//
// Returns (Delivered, nil) on a valid transition, or (0, error) otherwise.
func (s Status) Complete() (Status, error) {
	if s != Pending && s != OnTheWay {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}

	return Delivered, nil
}
