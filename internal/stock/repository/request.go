package repository

import (
	"context"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/errors"
)

// RequestRepository handles request persistence
type RequestRepository struct {
	db *database.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a request and sets its ID
func (r *RequestRepository) Create(ctx context.Context, req *domain.Request) error {
	id, err := database.InsertRecord(ctx, r.db.Conn(ctx), Requests, req)
	if err != nil {
		return err
	}
	req.ID = id
	return nil
}

// Get loads a request by ID
func (r *RequestRepository) Get(ctx context.Context, id int64) (*domain.Request, error) {
	var req domain.Request
	found, err := database.GetByKey(ctx, r.db.Conn(ctx), Requests, &req, Requests.Key(), id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NotFound("request")
	}
	return &req, nil
}

// List returns requests newest first, optionally filtered by status
func (r *RequestRepository) List(ctx context.Context, status *domain.RequestStatus) ([]*domain.Request, error) {
	var requests []*domain.Request
	query := Requests.SelectSQL()
	args := []interface{}{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY issued DESC, request_id DESC"

	if err := r.db.Conn(ctx).SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, err
	}
	return requests, nil
}

// SetStatus changes the status of a request
func (r *RequestRepository) SetStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx,
		`UPDATE requests SET status = $1 WHERE request_id = $2`, status, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("request")
	}
	return nil
}

// Delete removes a request; its items go with it
func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	q := r.db.Conn(ctx)
	if _, err := q.ExecContext(ctx, `DELETE FROM items WHERE request_id = $1`, id); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM requests WHERE request_id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("request")
	}
	return nil
}

// NextSequence returns the number following the highest reference issued
// under stem. It takes a transaction-scoped advisory lock on stem, so callers
// inserting the new reference in the same transaction never race each other.
func (r *RequestRepository) NextSequence(ctx context.Context, stem string) (int, error) {
	q := r.db.Conn(ctx)
	if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, stem); err != nil {
		return 0, err
	}

	var last int
	err := q.GetContext(ctx, &last, `
		SELECT COALESCE(MAX(substr(reference, char_length($1::text) + 1)::int), 0)
		FROM requests
		WHERE left(reference, char_length($1::text)) = $1::text
		  AND substr(reference, char_length($1::text) + 1) ~ '^[0-9]{1,9}$'
	`, stem)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// HasDeliveries reports whether any delivery was recorded against the request
func (r *RequestRepository) HasDeliveries(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM deliveries d
			JOIN items i ON i.item_id = d.item_id
			WHERE i.request_id = $1
		)
	`, id)
	return exists, err
}
