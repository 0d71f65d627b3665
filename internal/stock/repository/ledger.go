package repository

import (
	"context"
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/database"
)

// LedgerRepository derives stock from labels and batches; nothing is cached
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// StockOf counts the in-stock labels of active batches of a package
func (r *LedgerRepository) StockOf(ctx context.Context, packageID int64) (int, error) {
	var stock int
	err := r.db.Conn(ctx).GetContext(ctx, &stock, `
		SELECT COUNT(l.label_id)
		FROM batches b
		JOIN labels l ON l.batch_id = b.batch_id
		WHERE b.package_id = $1 AND b.status = $2 AND l.status = $3
	`, packageID, domain.BatchActive, domain.LabelInStock)
	return stock, err
}

// StockByPackage returns the stock of every enabled package
func (r *LedgerRepository) StockByPackage(ctx context.Context) ([]*domain.PackageStock, error) {
	var rows []*domain.PackageStock
	err := r.db.Conn(ctx).SelectContext(ctx, &rows, `
		SELECT p.package_id, pr.description AS product, p.packaging, p.reorder,
		       COUNT(l.label_id) AS stock
		FROM packages p
		JOIN products pr ON pr.product_id = p.product_id
		LEFT JOIN batches b ON b.package_id = p.package_id AND b.status = $1
		LEFT JOIN labels l ON l.batch_id = b.batch_id AND l.status = $2
		WHERE p.enable = TRUE
		GROUP BY p.package_id, pr.description, p.packaging, p.reorder
		ORDER BY pr.description, p.package_id
	`, domain.BatchActive, domain.LabelInStock)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		row.ReorderFlag = domain.ReorderFor(row.Stock, row.Reorder)
	}
	return rows, nil
}

// batchesExpiring lists active batches with stock whose expiration falls in [from, until]
func (r *LedgerRepository) batchesExpiring(ctx context.Context, from, until *time.Time) ([]*domain.BatchExpiry, error) {
	var rows []*domain.BatchExpiry
	err := r.db.Conn(ctx).SelectContext(ctx, &rows, `
		SELECT b.batch_id, b.package_id, pr.description AS product, b.lot, b.expiration,
		       COUNT(l.label_id) AS stock
		FROM batches b
		JOIN packages p ON p.package_id = b.package_id
		JOIN products pr ON pr.product_id = p.product_id
		JOIN labels l ON l.batch_id = b.batch_id AND l.status = $3
		WHERE b.status = $4
		  AND b.expiration IS NOT NULL
		  AND ($1::date IS NULL OR b.expiration >= $1::date)
		  AND ($2::date IS NULL OR b.expiration <= $2::date)
		GROUP BY b.batch_id, b.package_id, pr.description, b.lot, b.expiration
		ORDER BY b.expiration, b.batch_id
	`, from, until, domain.LabelInStock, domain.BatchActive)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExpiringBatches lists batches with stock expiring between today and until, inclusive
func (r *LedgerRepository) ExpiringBatches(ctx context.Context, today, until time.Time) ([]*domain.BatchExpiry, error) {
	return r.batchesExpiring(ctx, &today, &until)
}

// ExpiredBatches lists batches with stock whose expiration is before today
func (r *LedgerRepository) ExpiredBatches(ctx context.Context, today time.Time) ([]*domain.BatchExpiry, error) {
	yesterday := today.AddDate(0, 0, -1)
	return r.batchesExpiring(ctx, nil, &yesterday)
}
