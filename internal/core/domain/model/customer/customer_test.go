package customer_test

import (
	"testing"

	"partnerfeed/internal/core/domain/model/customer"
	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	address := customer.Address{
		FlatNo:   "14B",
		Street:   "8th Cross",
		Landmark: "Opp. water tank",
		Pincode:  "560085",
	}

	c, err := customer.NewCustomer(id, "Meena", "+919876543210", address)

	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.True(t, c.ID().IsEqual(id))
	assert.Equal(t, "Meena", c.Name())
	assert.Equal(t, "+919876543210", c.PhoneNumber())
	assert.Equal(t, address, c.Address())
}

func TestNewCustomer_InvalidInput(t *testing.T) {
	t.Run("zero_id", func(t *testing.T) {
		_, err := customer.NewCustomer(kernel.UUID{}, "Meena", "+919876543210", customer.Address{})
		require.Error(t, err)
	})

	t.Run("empty_name", func(t *testing.T) {
		_, err := customer.NewCustomer(kernel.NewUUID(), "", "+919876543210", customer.Address{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("empty_phone", func(t *testing.T) {
		_, err := customer.NewCustomer(kernel.NewUUID(), "Meena", "", customer.Address{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestCustomer_Validate_NotConstructed(t *testing.T) {
	var c customer.Customer

	err := c.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, customer.ErrCustomerIsNotConstructed)
}
