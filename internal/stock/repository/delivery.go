package repository

import (
	"context"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/database"
)

// DeliveryRepository handles delivery persistence
type DeliveryRepository struct {
	db *database.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *database.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// Create inserts a delivery and sets its ID
func (r *DeliveryRepository) Create(ctx context.Context, d *domain.Delivery) error {
	id, err := database.InsertRecord(ctx, r.db.Conn(ctx), Deliveries, d)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

// ListByRequest returns the deliveries of every item of a request
func (r *DeliveryRepository) ListByRequest(ctx context.Context, requestID int64) ([]*domain.Delivery, error) {
	var deliveries []*domain.Delivery
	err := r.db.Conn(ctx).SelectContext(ctx, &deliveries, `
		SELECT d.delivery_id, d.item_id, d.package_id, d.batch_id, d.quantity, d.ddt, d.delivered, d.status
		FROM deliveries d
		JOIN items i ON i.item_id = d.item_id
		WHERE i.request_id = $1
		ORDER BY d.delivery_id
	`, requestID)
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}
