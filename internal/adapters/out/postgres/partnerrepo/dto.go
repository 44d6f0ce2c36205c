// Package partnerrepo persists delivery-partner profiles in postgres and
// carries per-partner change notifications over the shared change bus.
package partnerrepo

import (
	"partnerfeed/internal/core/domain/model/partner"
)

// PartnerDTO is the database representation of a partner profile. The session
// subject is the natural key; there is exactly one profile per subject.
type PartnerDTO struct {
	Subject string `gorm:"primaryKey"`
	Name    string
}

// TableName overrides GORM's default naming convention to use "partners".
func (PartnerDTO) TableName() string {
	return "partners"
}

// changeMessage is the wire shape of a profile change event on the bus.
// It carries the changed profile itself so observers republish directly.
type changeMessage struct {
	Op      string `json:"op"`
	Subject string `json:"subject"`
	Name    string `json:"name"`
}

func fromDomain(profile partner.Profile) PartnerDTO {
	return PartnerDTO{
		Subject: profile.Subject(),
		Name:    profile.Name(),
	}
}

func toDomain(dto PartnerDTO) (partner.Profile, error) {
	return partner.NewProfile(dto.Subject, dto.Name)
}
