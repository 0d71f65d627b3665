package repository

import (
	"context"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/errors"
)

// ItemRepository handles request item persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts an item and sets its ID
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	id, err := database.InsertRecord(ctx, r.db.Conn(ctx), Items, item)
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

// Get loads an item by ID
func (r *ItemRepository) Get(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	found, err := database.GetByKey(ctx, r.db.Conn(ctx), Items, &item, Items.Key(), id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NotFound("item")
	}
	return &item, nil
}

// Update writes every column of an item
func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	affected, err := database.UpdateRecord(ctx, r.db.Conn(ctx), Items, item)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.NotFound("item")
	}
	return nil
}

// ListByRequest returns every item of a request in insertion order
func (r *ItemRepository) ListByRequest(ctx context.Context, requestID int64) ([]*domain.Item, error) {
	var items []*domain.Item
	if err := database.ListBy(ctx, r.db.Conn(ctx), Items, &items, "request_id", requestID); err != nil {
		return nil, err
	}
	return items, nil
}

// FindActiveByPackage returns the active item of a request for a package, or nil
func (r *ItemRepository) FindActiveByPackage(ctx context.Context, requestID, packageID int64) (*domain.Item, error) {
	var items []*domain.Item
	err := r.db.Conn(ctx).SelectContext(ctx, &items,
		Items.SelectSQL()+` WHERE request_id = $1 AND package_id = $2 AND status = $3 ORDER BY item_id LIMIT 1`,
		requestID, packageID, domain.ItemActive)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// Progress returns ordered and delivered quantities for every item of a request
func (r *ItemRepository) Progress(ctx context.Context, requestID int64) ([]*domain.ItemProgress, error) {
	var rows []*domain.ItemProgress
	err := r.db.Conn(ctx).SelectContext(ctx, &rows, `
		SELECT i.item_id, i.package_id, i.status, i.quantity AS ordered,
		       COALESCE(SUM(d.quantity), 0) AS delivered
		FROM items i
		LEFT JOIN deliveries d ON d.item_id = i.item_id
		WHERE i.request_id = $1
		GROUP BY i.item_id, i.package_id, i.status, i.quantity
		ORDER BY i.item_id
	`, requestID)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		row.Remaining = max(row.Ordered-row.Delivered, 0)
	}
	return rows, nil
}

// Delivered sums the quantities delivered against an item
func (r *ItemRepository) Delivered(ctx context.Context, itemID int64) (int, error) {
	var delivered int
	err := r.db.Conn(ctx).GetContext(ctx, &delivered,
		`SELECT COALESCE(SUM(quantity), 0) FROM deliveries WHERE item_id = $1`, itemID)
	return delivered, err
}
