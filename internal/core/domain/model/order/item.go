package order

import (
	"errors"
	"fmt"

	"partnerfeed/internal/pkg/errs"
	"partnerfeed/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when attempting to use an improperly
// initialized Item.
var ErrItemIsNotConstructed = errs.NewValueIsRequiredError(
	"item must be created via NewItem constructor")

// Item is a single line of an order: a product, its weight in kilograms and
// the amount charged for it. Items are embedded in the order and never change
// on the client side.
type Item struct { //nolint:recvcheck //using for validation
	productName string
	weightKg    float64
	amount      float64
	guard       guard.ConstructorGuard
}

// NewItem creates an order line with validation. The product name must be
// non-empty, the weight positive and the amount non-negative.
func NewItem(productName string, weightKg, amount float64) (Item, error) {
	item := Item{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setProductName(productName),
		item.setWeightKg(weightKg),
		item.setAmount(amount),
	); err != nil {
		return Item{}, err
	}

	return item, nil
}

// Validate checks if the Item was properly constructed via NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

// ProductName returns the product name.
func (i Item) ProductName() string {
	return i.productName
}

// WeightKg returns the line weight in kilograms.
func (i Item) WeightKg() float64 {
	return i.weightKg
}

// Amount returns the amount charged for the line.
func (i Item) Amount() float64 {
	return i.amount
}

func (i *Item) setProductName(productName string) error {
	if productName == "" {
		return errs.NewValueIsRequiredError("productName")
	}
	i.productName = productName
	return nil
}

func (i *Item) setWeightKg(weightKg float64) error {
	if weightKg <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("weightKg",
			fmt.Errorf("%v is not greater than 0", weightKg))
	}
	i.weightKg = weightKg
	return nil
}

func (i *Item) setAmount(amount float64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%v is negative", amount))
	}
	i.amount = amount
	return nil
}
