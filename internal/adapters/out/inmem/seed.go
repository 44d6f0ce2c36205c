package inmem

import (
	"context"
	"fmt"

	"github.com/jaswdr/faker"

	"partnerfeed/internal/core/domain/model/customer"
	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/core/domain/model/partner"
)

// SeedOptions shape the demo dataset.
type SeedOptions struct {
	// PartnerSubject and PartnerName identify the demo partner the orders
	// are assigned to.
	PartnerSubject string
	PartnerName    string

	// BaseLatitude and BaseLongitude anchor the generated delivery
	// destinations; orders scatter within roughly a tenth of a degree.
	BaseLatitude  float64
	BaseLongitude float64

	// OrderCount is the number of open orders to generate.
	OrderCount int
}

// Seed fills the store with a demo partner and a set of pending orders with
// generated customers, for running without a real backend.
func Seed(store *Store, opts SeedOptions) error {
	fake := faker.New()

	profile, err := partner.NewProfile(opts.PartnerSubject, opts.PartnerName)
	if err != nil {
		return fmt.Errorf("seed partner: %w", err)
	}
	if err = store.SavePartner(profile); err != nil {
		return fmt.Errorf("seed partner: %w", err)
	}

	for i := 0; i < opts.OrderCount; i++ {
		record, customerErr := customer.NewCustomer(
			kernel.NewUUID(),
			fake.Person().Name(),
			fake.Phone().Number(),
			customer.Address{
				FlatNo:   fake.Address().BuildingNumber(),
				Street:   fake.Address().StreetName(),
				Landmark: fake.Company().Name(),
				Pincode:  fake.Address().PostCode(),
			},
		)
		if customerErr != nil {
			return fmt.Errorf("seed customer: %w", customerErr)
		}
		if err = store.SaveCustomer(record); err != nil {
			return fmt.Errorf("seed customer: %w", err)
		}

		destination, pointErr := kernel.NewGeoPoint(
			opts.BaseLatitude+fake.Float64(4, 0, 100)/1000,
			opts.BaseLongitude+fake.Float64(4, 0, 100)/1000,
		)
		if pointErr != nil {
			return fmt.Errorf("seed destination: %w", pointErr)
		}

		itemCount := fake.IntBetween(1, 3)
		items := make([]order.Item, 0, itemCount)
		var total float64
		for j := 0; j < itemCount; j++ {
			amount := fake.Float64(2, 80, 400)
			item, itemErr := order.NewItem(
				fake.Lorem().Word(),
				fake.Float64(2, 1, 20)/10,
				amount,
			)
			if itemErr != nil {
				return fmt.Errorf("seed item: %w", itemErr)
			}
			items = append(items, item)
			total += amount
		}

		aggregate, orderErr := order.NewOrder(
			kernel.NewUUID(), destination, items, total, record.ID(), profile.Name())
		if orderErr != nil {
			return fmt.Errorf("seed order: %w", orderErr)
		}
		if err = store.Save(context.Background(), aggregate); err != nil {
			return fmt.Errorf("seed order: %w", err)
		}
	}

	return nil
}
