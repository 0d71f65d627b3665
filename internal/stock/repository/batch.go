package repository

import (
	"context"
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/errors"
)

// BatchRepository handles batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a batch and sets its ID
func (r *BatchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	id, err := database.InsertRecord(ctx, r.db.Conn(ctx), Batches, batch)
	if err != nil {
		return err
	}
	batch.ID = id
	return nil
}

// Get loads a batch by ID
func (r *BatchRepository) Get(ctx context.Context, id int64) (*domain.Batch, error) {
	var batch domain.Batch
	found, err := database.GetByKey(ctx, r.db.Conn(ctx), Batches, &batch, Batches.Key(), id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NotFound("batch")
	}
	return &batch, nil
}

// FindActive returns the active batch of a package with the given lot and expiration, or nil
func (r *BatchRepository) FindActive(ctx context.Context, packageID int64, lot string, expiration time.Time) (*domain.Batch, error) {
	var batches []*domain.Batch
	err := r.db.Conn(ctx).SelectContext(ctx, &batches,
		Batches.SelectSQL()+` WHERE package_id = $1 AND lot = $2 AND expiration = $3 AND status = $4 LIMIT 1`,
		packageID, lot, expiration, domain.BatchActive)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}
	return batches[0], nil
}

// ListByPackage returns the batches of a package, earliest expiration first
func (r *BatchRepository) ListByPackage(ctx context.Context, packageID int64, activeOnly bool) ([]*domain.Batch, error) {
	var batches []*domain.Batch
	query := Batches.SelectSQL() + ` WHERE package_id = $1`
	if activeOnly {
		query += ` AND status = 1`
	}
	query += ` ORDER BY expiration NULLS LAST, batch_id`

	if err := r.db.Conn(ctx).SelectContext(ctx, &batches, query, packageID); err != nil {
		return nil, err
	}
	return batches, nil
}

// SetStatus changes the status of a batch
func (r *BatchRepository) SetStatus(ctx context.Context, id int64, status domain.BatchStatus) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx,
		`UPDATE batches SET status = $1 WHERE batch_id = $2`, status, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("batch")
	}
	return nil
}
