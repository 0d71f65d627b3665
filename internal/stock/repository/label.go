package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/errors"
)

// LabelRepository handles label persistence
type LabelRepository struct {
	db *database.DB
}

// NewLabelRepository creates a new label repository
func NewLabelRepository(db *database.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// NextTick mints a fresh surrogate tick from the label_ticks sequence
func (r *LabelRepository) NextTick(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.Conn(ctx).GetContext(ctx, &n, `SELECT nextval('label_ticks')`); err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", domain.MintedTickDigits, n), nil
}

// Create inserts a label and sets its ID. A label without a tick gets a minted one.
func (r *LabelRepository) Create(ctx context.Context, label *domain.Label) error {
	if label.Tick == "" {
		tick, err := r.NextTick(ctx)
		if err != nil {
			return err
		}
		label.Tick = tick
	}

	id, err := database.InsertRecord(ctx, r.db.Conn(ctx), Labels, label)
	if err != nil {
		return err
	}
	label.ID = id
	return nil
}

// Get loads a label by ID
func (r *LabelRepository) Get(ctx context.Context, id int64) (*domain.Label, error) {
	return r.getBy(ctx, Labels.Key(), id)
}

// GetByTick loads a label by its printed tick
func (r *LabelRepository) GetByTick(ctx context.Context, tick string) (*domain.Label, error) {
	return r.getBy(ctx, "tick", tick)
}

func (r *LabelRepository) getBy(ctx context.Context, column string, value interface{}) (*domain.Label, error) {
	var label domain.Label
	found, err := database.GetByKey(ctx, r.db.Conn(ctx), Labels, &label, column, value)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NotFound("label")
	}
	return &label, nil
}

// ListByBatch returns every label of a batch
func (r *LabelRepository) ListByBatch(ctx context.Context, batchID int64) ([]*domain.Label, error) {
	var labels []*domain.Label
	if err := database.ListBy(ctx, r.db.Conn(ctx), Labels, &labels, "batch_id", batchID); err != nil {
		return nil, err
	}
	return labels, nil
}

// Transition moves a label from one status to another and sets its unloaded time.
// It reports false when the label was not in the from status.
func (r *LabelRepository) Transition(ctx context.Context, id int64, from, to domain.LabelStatus, unloaded *time.Time) (bool, error) {
	result, err := r.db.Conn(ctx).ExecContext(ctx,
		`UPDATE labels SET status = $1, unloaded = $2 WHERE label_id = $3 AND status = $4`,
		to, unloaded, id, from)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// CancelInStock cancels every in-stock label of a batch and returns how many changed
func (r *LabelRepository) CancelInStock(ctx context.Context, batchID int64) (int64, error) {
	result, err := r.db.Conn(ctx).ExecContext(ctx,
		`UPDATE labels SET status = $1 WHERE batch_id = $2 AND status = $3`,
		domain.LabelCancelled, batchID, domain.LabelInStock)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Movements returns every non-cancelled label of the packages that had an
// unload in [from, to), joined with the expiration of its batch.
func (r *LabelRepository) Movements(ctx context.Context, from, to time.Time) ([]*domain.LabelMovement, error) {
	var rows []*domain.LabelMovement
	err := r.db.Conn(ctx).SelectContext(ctx, &rows, `
		SELECT l.label_id, b.package_id, l.batch_id, b.expiration, l.loaded, l.unloaded, l.status
		FROM labels l
		JOIN batches b ON b.batch_id = l.batch_id
		WHERE l.status <> $3
		  AND b.package_id IN (
			SELECT b2.package_id
			FROM labels l2
			JOIN batches b2 ON b2.batch_id = l2.batch_id
			WHERE l2.status = $4 AND l2.unloaded >= $1 AND l2.unloaded < $2
		  )
		ORDER BY b.package_id, l.label_id
	`, from, to, domain.LabelCancelled, domain.LabelUsed)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Consumption counts the labels unloaded in [from, to) for every enabled
// package, including packages with no movement.
func (r *LabelRepository) Consumption(ctx context.Context, from, to time.Time) ([]*domain.Consumption, error) {
	var rows []*domain.Consumption
	err := r.db.Conn(ctx).SelectContext(ctx, &rows, `
		SELECT p.package_id, COUNT(l.label_id) AS unloaded
		FROM packages p
		LEFT JOIN batches b ON b.package_id = p.package_id
		LEFT JOIN labels l ON l.batch_id = b.batch_id
			AND l.status = $3 AND l.unloaded >= $1 AND l.unloaded < $2
		WHERE p.enable = TRUE
		GROUP BY p.package_id
		ORDER BY p.package_id
	`, from, to, domain.LabelUsed)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
