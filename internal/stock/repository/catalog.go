package repository

import (
	"context"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/database"
	"github.com/labstock/labstock-backend/pkg/errors"
)

// CatalogRepository stores administrative reference records of one table
// through the generated statements of the registry.
type CatalogRepository[T any] struct {
	db       *database.DB
	table    database.Table
	resource string
}

// NewCatalogRepository creates a repository for records of type T stored in table
func NewCatalogRepository[T any](db *database.DB, table database.Table, resource string) *CatalogRepository[T] {
	return &CatalogRepository[T]{db: db, table: table, resource: resource}
}

// NewProductRepository creates the products repository
func NewProductRepository(db *database.DB) *CatalogRepository[domain.Product] {
	return NewCatalogRepository[domain.Product](db, Products, "product")
}

// NewSupplierRepository creates the suppliers repository
func NewSupplierRepository(db *database.DB) *CatalogRepository[domain.Supplier] {
	return NewCatalogRepository[domain.Supplier](db, Suppliers, "supplier")
}

// NewCategoryRepository creates the categories repository
func NewCategoryRepository(db *database.DB) *CatalogRepository[domain.Category] {
	return NewCatalogRepository[domain.Category](db, Categories, "category")
}

// NewConservationRepository creates the conservations repository
func NewConservationRepository(db *database.DB) *CatalogRepository[domain.Conservation] {
	return NewCatalogRepository[domain.Conservation](db, Conservations, "conservation")
}

// NewLocationRepository creates the locations repository
func NewLocationRepository(db *database.DB) *CatalogRepository[domain.Location] {
	return NewCatalogRepository[domain.Location](db, Locations, "location")
}

// NewPackageRepository creates the packages repository
func NewPackageRepository(db *database.DB) *CatalogRepository[domain.Package] {
	return NewCatalogRepository[domain.Package](db, Packages, "package")
}

// Create inserts record and returns its generated key
func (r *CatalogRepository[T]) Create(ctx context.Context, record *T) (int64, error) {
	return database.InsertRecord(ctx, r.db.Conn(ctx), r.table, record)
}

// Update writes every column of record
func (r *CatalogRepository[T]) Update(ctx context.Context, record *T) error {
	affected, err := database.UpdateRecord(ctx, r.db.Conn(ctx), r.table, record)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.NotFound(r.resource)
	}
	return nil
}

// Get loads a record by key
func (r *CatalogRepository[T]) Get(ctx context.Context, id int64) (*T, error) {
	var record T
	found, err := database.GetByKey(ctx, r.db.Conn(ctx), r.table, &record, r.table.Key(), id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NotFound(r.resource)
	}
	return &record, nil
}

// List returns every record ordered by key, optionally only the enabled ones
func (r *CatalogRepository[T]) List(ctx context.Context, enabledOnly bool) ([]*T, error) {
	var records []*T
	if enabledOnly {
		if err := database.ListBy(ctx, r.db.Conn(ctx), r.table, &records, "enable", true); err != nil {
			return nil, err
		}
		return records, nil
	}

	query := r.table.SelectSQL() + " ORDER BY " + r.table.Key()
	if err := r.db.Conn(ctx).SelectContext(ctx, &records, query); err != nil {
		return nil, err
	}
	return records, nil
}
