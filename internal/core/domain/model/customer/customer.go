// Package customer contains the read-only customer reference data joined to
// an order when it is opened for detail viewing. Customers are never part of
// the live feed and never mutated by this client.
package customer

import (
	"errors"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/pkg/errs"
)

// ErrCustomerIsNotConstructed is returned when a Customer instance was not
// created through the NewCustomer factory method.
var ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer")

// Address is the delivery address block shown on the order detail view.
// All fields are free text as entered by the customer.
type Address struct {
	FlatNo   string
	Street   string
	Landmark string
	Pincode  string
}

// Customer is the read model for the person receiving an order: a name, a
// dialable phone number and the address block. Fetched on demand by the order
// details query, never cached beyond the call.
type Customer struct {
	id          kernel.UUID
	name        string
	phoneNumber string
	address     Address

	isConstructed bool
}

// NewCustomer creates a Customer with validation. Name and phone number are
// required; address fields may be partially empty.
func NewCustomer(id kernel.UUID, name, phoneNumber string, address Address) (*Customer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errs.NewValueIsRequiredError("name")
	}
	if phoneNumber == "" {
		return nil, errs.NewValueIsRequiredError("phoneNumber")
	}

	return &Customer{
		id:            id,
		name:          name,
		phoneNumber:   phoneNumber,
		address:       address,
		isConstructed: true,
	}, nil
}

// Validate ensures the Customer was created through NewCustomer.
func (c *Customer) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCustomerIsNotConstructed
	}
	return nil
}

// ID returns the customer's unique identifier.
func (c *Customer) ID() kernel.UUID {
	return c.id
}

// Name returns the customer's name.
func (c *Customer) Name() string {
	return c.name
}

// PhoneNumber returns the customer's dialable phone number.
func (c *Customer) PhoneNumber() string {
	return c.phoneNumber
}

// Address returns the delivery address block.
func (c *Customer) Address() Address {
	return c.address
}
