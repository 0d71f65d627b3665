package service

import (
	"context"
	"strings"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// CatalogService maintains reference data and engine settings
type CatalogService struct {
	*core
	logger *logger.Logger
}

func getRecord[T any](ctx context.Context, log *logger.Logger, store CatalogStore[T], resource string, id int64) (*T, error) {
	rec, err := store.Get(ctx, id)
	if err != nil {
		return nil, storeError(log, "get "+resource, err, ids(resource+"_id", id))
	}
	return rec, nil
}

func listRecords[T any](ctx context.Context, log *logger.Logger, store CatalogStore[T], resource string, enabledOnly bool) ([]*T, error) {
	recs, err := store.List(ctx, enabledOnly)
	if err != nil {
		return nil, storeError(log, "list "+resource, err, nil)
	}
	return recs, nil
}

// Products

// CreateProduct adds a product
func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) error {
	id, err := s.st.Products.Create(ctx, p)
	if err != nil {
		return storeError(s.logger, "create product", err, ids("reference", p.Reference))
	}
	p.ID = id
	return nil
}

// UpdateProduct edits a product
func (s *CatalogService) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := s.st.Products.Update(ctx, p); err != nil {
		return storeError(s.logger, "update product", err, ids("product_id", p.ID))
	}
	return nil
}

// GetProduct loads a product
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return getRecord(ctx, s.logger, s.st.Products, "product", id)
}

// ListProducts lists products
func (s *CatalogService) ListProducts(ctx context.Context, enabledOnly bool) ([]*domain.Product, error) {
	return listRecords(ctx, s.logger, s.st.Products, "product", enabledOnly)
}

// Suppliers

// CreateSupplier adds a supplier
func (s *CatalogService) CreateSupplier(ctx context.Context, sup *domain.Supplier) error {
	id, err := s.st.Suppliers.Create(ctx, sup)
	if err != nil {
		return storeError(s.logger, "create supplier", err, ids("reference", sup.Reference))
	}
	sup.ID = id
	return nil
}

// UpdateSupplier edits a supplier
func (s *CatalogService) UpdateSupplier(ctx context.Context, sup *domain.Supplier) error {
	if err := s.st.Suppliers.Update(ctx, sup); err != nil {
		return storeError(s.logger, "update supplier", err, ids("supplier_id", sup.ID))
	}
	return nil
}

// GetSupplier loads a supplier
func (s *CatalogService) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	return getRecord(ctx, s.logger, s.st.Suppliers, "supplier", id)
}

// ListSuppliers lists suppliers
func (s *CatalogService) ListSuppliers(ctx context.Context, enabledOnly bool) ([]*domain.Supplier, error) {
	return listRecords(ctx, s.logger, s.st.Suppliers, "supplier", enabledOnly)
}

// Categories

// SaveCategory creates a category when it has no ID and updates it otherwise
func (s *CatalogService) SaveCategory(ctx context.Context, c *domain.Category) error {
	if c.ID == 0 {
		id, err := s.st.Categories.Create(ctx, c)
		if err != nil {
			return storeError(s.logger, "create category", err, nil)
		}
		c.ID = id
	} else if err := s.st.Categories.Update(ctx, c); err != nil {
		return storeError(s.logger, "update category", err, ids("category_id", c.ID))
	}

	s.publish(ctx, events.CategoryChangedEvent{CategoryID: c.ID})
	return nil
}

// GetCategory loads a category
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return getRecord(ctx, s.logger, s.st.Categories, "category", id)
}

// ListCategories lists categories
func (s *CatalogService) ListCategories(ctx context.Context, enabledOnly bool) ([]*domain.Category, error) {
	return listRecords(ctx, s.logger, s.st.Categories, "category", enabledOnly)
}

// Conservations and locations

// SaveConservation creates or updates a storage condition
func (s *CatalogService) SaveConservation(ctx context.Context, c *domain.Conservation) error {
	if c.ID == 0 {
		id, err := s.st.Conservations.Create(ctx, c)
		if err != nil {
			return storeError(s.logger, "create conservation", err, nil)
		}
		c.ID = id
		return nil
	}
	if err := s.st.Conservations.Update(ctx, c); err != nil {
		return storeError(s.logger, "update conservation", err, ids("conservation_id", c.ID))
	}
	return nil
}

// ListConservations lists storage conditions
func (s *CatalogService) ListConservations(ctx context.Context, enabledOnly bool) ([]*domain.Conservation, error) {
	return listRecords(ctx, s.logger, s.st.Conservations, "conservation", enabledOnly)
}

// SaveLocation creates or updates a location
func (s *CatalogService) SaveLocation(ctx context.Context, l *domain.Location) error {
	if l.ID == 0 {
		id, err := s.st.Locations.Create(ctx, l)
		if err != nil {
			return storeError(s.logger, "create location", err, nil)
		}
		l.ID = id
		return nil
	}
	if err := s.st.Locations.Update(ctx, l); err != nil {
		return storeError(s.logger, "update location", err, ids("location_id", l.ID))
	}
	return nil
}

// ListLocations lists locations
func (s *CatalogService) ListLocations(ctx context.Context, enabledOnly bool) ([]*domain.Location, error) {
	return listRecords(ctx, s.logger, s.st.Locations, "location", enabledOnly)
}

// Packages

// CreatePackage adds a package of an existing product and supplier
func (s *CatalogService) CreatePackage(ctx context.Context, p *domain.Package) error {
	if err := s.checkPackage(ctx, p); err != nil {
		return err
	}
	id, err := s.st.Packages.Create(ctx, p)
	if err != nil {
		return storeError(s.logger, "create package", err, ids("product_id", p.ProductID))
	}
	p.ID = id

	s.publish(ctx, events.PackageChangedEvent{PackageID: p.ID})
	return nil
}

// UpdatePackage edits a package
func (s *CatalogService) UpdatePackage(ctx context.Context, p *domain.Package) error {
	if err := s.checkPackage(ctx, p); err != nil {
		return err
	}
	if err := s.st.Packages.Update(ctx, p); err != nil {
		return storeError(s.logger, "update package", err, ids("package_id", p.ID))
	}

	s.publish(ctx, events.PackageChangedEvent{PackageID: p.ID})
	return nil
}

func (s *CatalogService) checkPackage(ctx context.Context, p *domain.Package) error {
	if _, err := s.st.Products.Get(ctx, p.ProductID); err != nil {
		return storeError(s.logger, "get product", err, ids("product_id", p.ProductID))
	}
	if _, err := s.st.Suppliers.Get(ctx, p.SupplierID); err != nil {
		return storeError(s.logger, "get supplier", err, ids("supplier_id", p.SupplierID))
	}
	return nil
}

// GetPackage loads a package
func (s *CatalogService) GetPackage(ctx context.Context, id int64) (*domain.Package, error) {
	return getRecord(ctx, s.logger, s.st.Packages, "package", id)
}

// ListPackages lists packages
func (s *CatalogService) ListPackages(ctx context.Context, enabledOnly bool) ([]*domain.Package, error) {
	return listRecords(ctx, s.logger, s.st.Packages, "package", enabledOnly)
}

// Settings

// GetSetting returns a setting value or def when unset
func (s *CatalogService) GetSetting(ctx context.Context, name, def string) (string, error) {
	value, err := s.st.Settings.Get(ctx, name, def)
	if err != nil {
		return "", storeError(s.logger, "get setting", err, ids("name", name))
	}
	return value, nil
}

// SetSetting stores a setting value
func (s *CatalogService) SetSetting(ctx context.Context, name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Validation(map[string]string{"name": "is required"})
	}
	if err := s.st.Settings.Set(ctx, name, value); err != nil {
		return storeError(s.logger, "set setting", err, ids("name", name))
	}
	return nil
}

// ListSettings returns every stored setting
func (s *CatalogService) ListSettings(ctx context.Context) ([]*domain.Setting, error) {
	settings, err := s.st.Settings.List(ctx)
	if err != nil {
		return nil, storeError(s.logger, "list settings", err, nil)
	}
	return settings, nil
}
