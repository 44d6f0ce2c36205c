package orderrepo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"partnerfeed/internal/adapters/out/natsbus"
	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
	"partnerfeed/internal/core/ports"
	"partnerfeed/internal/pkg/errs"
)

// changeBus defines the slice of the change bus this repository needs.
type changeBus interface {
	Publish(subject string, message any) error
	Subscribe(subject string, handler func(payload []byte)) (ports.Subscription, error)
}

// GormOrderRepository implements ports.OrderRepository over postgres with
// change notifications on the bus. Saves are last-write-wins upserts; the
// matching change event is published after the row is committed.
type GormOrderRepository struct {
	db     *gorm.DB
	bus    changeBus
	logger *slog.Logger
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, bus changeBus, logger *slog.Logger) *GormOrderRepository {
	return &GormOrderRepository{
		db:     db,
		bus:    bus,
		logger: logger.With("component", "order_repository"),
	}
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByOwner retrieves all orders assigned to the given partner display name.
func (r *GormOrderRepository) GetByOwner(ctx context.Context, owner string) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Find(&dtos, "owner_name = ?", owner).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, aggregate)
	}

	return orders, nil
}

// Save upserts the order row and publishes the change event. Last write wins;
// no concurrency token is checked.
func (r *GormOrderRepository) Save(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	var existing int64
	if err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&existing).Error; err != nil {
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
	if err := r.bus.Publish(natsbus.OrdersSubject, changeMessage{
		Op:      op.String(),
		OrderID: aggregate.ID().String(),
	}); err != nil {
		// The row is saved; peers just miss the push and catch up on the
		// next event or refresh.
		r.logger.WarnContext(ctx, "Publishing order change failed",
			"orderID", aggregate.ID().String(), "error", err)
	}

	return nil
}

// Observe subscribes to order change events on the bus.
func (r *GormOrderRepository) Observe(handler func(ports.OrderEvent)) (ports.Subscription, error) {
	return r.bus.Subscribe(natsbus.OrdersSubject, func(payload []byte) {
		var message changeMessage
		if err := json.Unmarshal(payload, &message); err != nil {
			r.logger.Warn("Dropping malformed order change event", "error", err)
			return
		}

		orderID, err := kernel.UUIDFromString(message.OrderID)
		if err != nil {
			r.logger.Warn("Dropping order change event with bad ID",
				"orderID", message.OrderID, "error", err)
			return
		}

		handler(ports.OrderEvent{
			Op:      ports.OpTypeFromString(message.Op),
			OrderID: orderID,
		})
	})
}
