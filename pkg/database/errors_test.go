package database_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/errors"
)

func TestMapPQError(t *testing.T) {
	tests := []struct {
		name       string
		err        *pq.Error
		sentinel   error
		status     int
		message    string
		detailsKey string
	}{
		{
			name:     "duplicate tick",
			err:      &pq.Error{Code: "23505", Constraint: "labels_tick_key"},
			sentinel: errors.ErrConflict,
			status:   http.StatusConflict,
			message:  "a label with this tick already exists",
		},
		{
			name:     "duplicate product reference",
			err:      &pq.Error{Code: "23505", Constraint: "products_reference_key"},
			sentinel: errors.ErrConflict,
			status:   http.StatusConflict,
			message:  "a product with this reference already exists",
		},
		{
			name:     "missing package",
			err:      &pq.Error{Code: "23503", Constraint: "batches_package_id_fkey"},
			sentinel: errors.ErrBadRequest,
			status:   http.StatusBadRequest,
		},
		{
			name:       "quantity check",
			err:        &pq.Error{Code: "23514", Constraint: "items_quantity_positive"},
			sentinel:   errors.ErrValidation,
			status:     http.StatusBadRequest,
			detailsKey: "quantity",
		},
		{
			name:       "not null",
			err:        &pq.Error{Code: "23502", Column: "lot"},
			sentinel:   errors.ErrValidation,
			status:     http.StatusBadRequest,
			detailsKey: "lot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := database.MapPQError(tt.err)
			require.NotNil(t, appErr)
			assert.True(t, errors.Is(appErr, tt.sentinel))
			assert.Equal(t, tt.status, appErr.StatusCode)
			if tt.message != "" {
				assert.Equal(t, tt.message, appErr.Message)
			}
			if tt.detailsKey != "" {
				assert.Contains(t, appErr.Details, tt.detailsKey)
			}
		})
	}
}

func TestMapPQError_Unmapped(t *testing.T) {
	assert.Nil(t, database.MapPQError(stderrors.New("connection refused")))
	assert.Nil(t, database.MapPQError(&pq.Error{Code: "40001"}))
}
