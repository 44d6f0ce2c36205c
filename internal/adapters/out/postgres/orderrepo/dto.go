// Package orderrepo persists order aggregates in postgres and carries their
// change notifications over the shared change bus, so every running client
// sees the same order collection and converges on writes.
package orderrepo

import (
	"github.com/google/uuid"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
)

// OrderDTO is the database representation of an order aggregate. The owner
// name is indexed because the live feed re-queries by owner on every change.
type OrderDTO struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerName   string         `gorm:"index"`
	Destination DestinationDTO `gorm:"embedded;embeddedPrefix:destination_"`
	Items       ItemsDTO       `gorm:"type:jsonb;serializer:json"`
	Total       float64
	CustomerID  uuid.UUID `gorm:"type:uuid"`
	Status      int
}

// TableName overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// DestinationDTO is the embedded delivery coordinate within the order table.
type DestinationDTO struct {
	Latitude  float64
	Longitude float64
}

// ItemDTO is one order line inside the jsonb items column.
type ItemDTO struct {
	ProductName string  `json:"productName"`
	WeightKg    float64 `json:"weightKg"`
	Amount      float64 `json:"amount"`
}

// ItemsDTO is the jsonb-serialized list of order lines.
type ItemsDTO []ItemDTO

// changeMessage is the wire shape of an order change event on the bus.
type changeMessage struct {
	Op      string `json:"op"`
	OrderID string `json:"orderId"`
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	domainItems := aggregate.Items()
	items := make(ItemsDTO, 0, len(domainItems))
	for _, item := range domainItems {
		items = append(items, ItemDTO{
			ProductName: item.ProductName(),
			WeightKg:    item.WeightKg(),
			Amount:      item.Amount(),
		})
	}

	return OrderDTO{
		ID:        aggregate.ID().Bytes(),
		OwnerName: aggregate.Owner(),
		Destination: DestinationDTO{
			Latitude:  aggregate.Destination().Latitude(),
			Longitude: aggregate.Destination().Longitude(),
		},
		Items:      items,
		Total:      aggregate.Total(),
		CustomerID: aggregate.CustomerID().Bytes(),
		Status:     int(aggregate.Status()),
	}
}

// toDomain reconstructs an order aggregate from its database representation.
// All invariants are re-validated through RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromString(dto.ID.String())
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromString(dto.CustomerID.String())
	if err != nil {
		return nil, err
	}

	destination, err := kernel.NewGeoPoint(dto.Destination.Latitude, dto.Destination.Longitude)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := order.NewItem(itemDTO.ProductName, itemDTO.WeightKg, itemDTO.Amount)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		id, destination, items, dto.Total, customerID, dto.OwnerName, order.Status(dto.Status))
}
