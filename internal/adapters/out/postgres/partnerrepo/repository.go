package partnerrepo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"partnerfeed/internal/adapters/out/natsbus"
	"partnerfeed/internal/core/domain/model/partner"
	"partnerfeed/internal/core/ports"
	"partnerfeed/internal/pkg/errs"
)

// changeBus defines the slice of the change bus this repository needs.
type changeBus interface {
	Publish(subject string, message any) error
	Subscribe(subject string, handler func(payload []byte)) (ports.Subscription, error)
}

// GormPartnerRepository implements ports.PartnerRepository over postgres with
// per-partner change notifications on the bus.
type GormPartnerRepository struct {
	db     *gorm.DB
	bus    changeBus
	logger *slog.Logger
}

// NewGormPartnerRepository creates a new GORM partner repository.
func NewGormPartnerRepository(db *gorm.DB, bus changeBus, logger *slog.Logger) *GormPartnerRepository {
	return &GormPartnerRepository{
		db:     db,
		bus:    bus,
		logger: logger.With("component", "partner_repository"),
	}
}

// FindBySubject returns the profile for the given session subject.
func (r *GormPartnerRepository) FindBySubject(
	ctx context.Context, subject string,
) (partner.Profile, error) {
	var dto PartnerDTO
	if err := r.db.WithContext(ctx).First(&dto, "subject = ?", subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return partner.Profile{}, errs.NewObjectNotFoundError("partner", subject)
		}
		return partner.Profile{}, err
	}

	return toDomain(dto)
}

// Save upserts the profile row and publishes the change event on the
// partner's subject.
func (r *GormPartnerRepository) Save(ctx context.Context, profile partner.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	dto := fromDomain(profile)

	var existing int64
	if err := r.db.WithContext(ctx).
		Model(&PartnerDTO{}).Where("subject = ?", dto.Subject).Count(&existing).Error; err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).Create(&dto).Error; err != nil {
		return err
	}

	op := ports.OpInsert
	if existing > 0 {
		op = ports.OpUpdate
	}
	if err := r.bus.Publish(natsbus.PartnerSubject(profile.Subject()), changeMessage{
		Op:      op.String(),
		Subject: profile.Subject(),
		Name:    profile.Name(),
	}); err != nil {
		r.logger.WarnContext(ctx, "Publishing partner change failed",
			"subject", profile.Subject(), "error", err)
	}

	return nil
}

// ObserveBySubject subscribes to profile change events for one session subject.
func (r *GormPartnerRepository) ObserveBySubject(
	subject string, handler func(ports.PartnerEvent),
) (ports.Subscription, error) {
	return r.bus.Subscribe(natsbus.PartnerSubject(subject), func(payload []byte) {
		var message changeMessage
		if err := json.Unmarshal(payload, &message); err != nil {
			r.logger.Warn("Dropping malformed partner change event", "error", err)
			return
		}

		profile, err := partner.NewProfile(message.Subject, message.Name)
		if err != nil {
			r.logger.Warn("Dropping partner change event with bad profile",
				"subject", message.Subject, "error", err)
			return
		}

		handler(ports.PartnerEvent{
			Op:      ports.OpTypeFromString(message.Op),
			Profile: profile,
		})
	})
}
