package service

import (
	"strconv"
	"time"

	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// storeError classifies an error returned by a store. Validation and
// not-found errors pass through; constraint violations are mapped; anything
// else is logged once here and surfaced as a persistence failure.
func storeError(log *logger.Logger, operation string, err error, fields map[string]interface{}) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if mapped := database.MapPQError(err); mapped != nil {
		return mapped
	}

	log.Error().
		Err(err).
		Str("operation", operation).
		Fields(fields).
		Msg("store operation failed")

	return errors.Persistence(operation, err)
}

// ids builds log fields from alternating name/value pairs
func ids(pairs ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if name, ok := pairs[i].(string); ok {
			fields[name] = pairs[i+1]
		}
	}
	return fields
}

// dateOf truncates t to its calendar date in UTC
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b
func daysBetween(a, b time.Time) int {
	return int(dateOf(b).Sub(dateOf(a)).Hours() / 24)
}

func itoa(n int) string { return strconv.Itoa(n) }

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }
