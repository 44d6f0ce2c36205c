// Package customerrepo persists customer reference records in postgres.
// Customers have no change stream; they are fetched on demand by the order
// detail query.
package customerrepo

import (
	"github.com/google/uuid"

	"partnerfeed/internal/core/domain/model/customer"
	"partnerfeed/internal/core/domain/model/kernel"
)

// CustomerDTO is the database representation of a customer record.
type CustomerDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string
	PhoneNumber string
	FlatNo      string
	Street      string
	Landmark    string
	Pincode     string
}

// TableName overrides GORM's default naming convention to use "customers".
func (CustomerDTO) TableName() string {
	return "customers"
}

func fromDomain(record *customer.Customer) CustomerDTO {
	address := record.Address()
	return CustomerDTO{
		ID:          record.ID().Bytes(),
		Name:        record.Name(),
		PhoneNumber: record.PhoneNumber(),
		FlatNo:      address.FlatNo,
		Street:      address.Street,
		Landmark:    address.Landmark,
		Pincode:     address.Pincode,
	}
}

func toDomain(dto CustomerDTO) (*customer.Customer, error) {
	id, err := kernel.UUIDFromString(dto.ID.String())
	if err != nil {
		return nil, err
	}

	return customer.NewCustomer(id, dto.Name, dto.PhoneNumber, customer.Address{
		FlatNo:   dto.FlatNo,
		Street:   dto.Street,
		Landmark: dto.Landmark,
		Pincode:  dto.Pincode,
	})
}
