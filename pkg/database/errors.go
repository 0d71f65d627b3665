package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/labstock/labstock-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps CHECK constraint names from the stock schema to field messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "quantity_positive"):
		return errors.Validation(map[string]string{
			"quantity": "must be at least 1",
		})

	case strings.Contains(constraint, "pieces_per_label_positive"):
		return errors.Validation(map[string]string{
			"pieces_per_label": "must be at least 1",
		})

	case strings.Contains(constraint, "labels_per_unit_positive"):
		return errors.Validation(map[string]string{
			"labels_per_unit": "must be at least 1",
		})

	case strings.Contains(constraint, "reorder_not_negative"):
		return errors.Validation(map[string]string{
			"reorder": "must not be negative",
		})

	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "unknown status value",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.HasPrefix(constraint, "products_reference"):
		return "a product with this reference already exists"
	case strings.HasPrefix(constraint, "products_description"):
		return "a product with this description already exists"
	case strings.HasPrefix(constraint, "labels_tick"):
		return "a label with this tick already exists"
	case strings.HasPrefix(constraint, "requests_reference"):
		return "a request with this reference already exists"
	case strings.HasPrefix(constraint, "settings_name"):
		return "a setting with this name already exists"
	default:
		return "a record with these values already exists"
	}
}
