package repository

import (
	"context"
	stderrors "errors"

	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// Table registry. The first column of every table is its surrogate key;
// INSERT and UPDATE statements are generated from this metadata.
var (
	Suppliers     = database.MustTable("suppliers", "supplier_id", "reference", "description", "enable")
	Categories    = database.MustTable("categories", "category_id", "description", "enable")
	Conservations = database.MustTable("conservations", "conservation_id", "description", "enable")
	Locations     = database.MustTable("locations", "location_id", "description", "enable")
	Products      = database.MustTable("products", "product_id", "reference", "description", "enable")
	Packages      = database.MustTable("packages",
		"package_id", "product_id", "supplier_id", "packaging", "conservation_id", "category_id",
		"location_id", "ordering", "pieces_per_label", "labels_per_unit", "reorder", "price", "enable")
	Requests   = database.MustTable("requests", "request_id", "reference", "issued", "status")
	Items      = database.MustTable("items", "item_id", "request_id", "package_id", "quantity", "status", "note")
	Deliveries = database.MustTable("deliveries",
		"delivery_id", "item_id", "package_id", "batch_id", "quantity", "ddt", "delivered", "status")
	Batches  = database.MustTable("batches", "batch_id", "package_id", "lot", "expiration", "status")
	Labels   = database.MustTable("labels", "label_id", "batch_id", "tick", "loaded", "unloaded", "status")
	Settings = database.MustTable("settings", "setting_id", "name", "value")
)

// Tables returns every registered table
func Tables() []database.Table {
	return []database.Table{
		Suppliers, Categories, Conservations, Locations, Products, Packages,
		Requests, Items, Deliveries, Batches, Labels, Settings,
	}
}

// VerifySchema compares the registry with the live database and logs every mismatch
func VerifySchema(ctx context.Context, db *database.DB, log *logger.Logger) error {
	var errs []error
	for _, table := range Tables() {
		if err := table.Verify(ctx, db.Conn(ctx)); err != nil {
			log.Error().Err(err).Str("table", table.Name()).Msg("schema mismatch")
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
