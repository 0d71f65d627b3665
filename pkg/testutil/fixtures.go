package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/shopspring/decimal"
)

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Supplier creates a supplier fixture with defaults
func (f *FixtureFactory) Supplier() domain.Supplier {
	seq := f.nextSeq()
	return domain.Supplier{
		Reference:   fmt.Sprintf("SUP-%04d", seq),
		Description: fmt.Sprintf("Test Supplier %d", seq),
		Enable:      true,
	}
}

// Product creates a product fixture with defaults
func (f *FixtureFactory) Product() domain.Product {
	seq := f.nextSeq()
	return domain.Product{
		Reference:   fmt.Sprintf("PRD-%04d", seq),
		Description: fmt.Sprintf("Test Reagent %d", seq),
		Enable:      true,
	}
}

// Package creates a package fixture with defaults: by piece, one piece per label
func (f *FixtureFactory) Package(productID, supplierID int64, opts ...func(*domain.Package)) domain.Package {
	seq := f.nextSeq()
	pkg := domain.Package{
		ProductID:      productID,
		SupplierID:     supplierID,
		Packaging:      fmt.Sprintf("box of %d", seq),
		Ordering:       domain.OrderByPiece,
		PiecesPerLabel: 1,
		LabelsPerUnit:  1,
		Reorder:        0,
		Price:          decimal.RequireFromString("12.50"),
		Enable:         true,
	}

	for _, opt := range opts {
		opt(&pkg)
	}

	return pkg
}

// WithReorder sets the reorder threshold
func WithReorder(n int) func(*domain.Package) {
	return func(p *domain.Package) {
		p.Reorder = n
	}
}

// Batch creates an active batch fixture expiring at expiration
func (f *FixtureFactory) Batch(packageID int64, expiration time.Time) domain.Batch {
	seq := f.nextSeq()
	return domain.Batch{
		PackageID:  packageID,
		Lot:        fmt.Sprintf("LOT%04d", seq),
		Expiration: &expiration,
		Status:     domain.BatchActive,
	}
}

// SeedPackage inserts a supplier, a product and a package built with opts,
// returning the stored package.
func (f *FixtureFactory) SeedPackage(ctx context.Context, db *sqlx.DB, opts ...func(*domain.Package)) (domain.Package, error) {
	supplier := f.Supplier()
	if err := db.GetContext(ctx, &supplier.ID,
		`INSERT INTO suppliers (reference, description, enable) VALUES ($1, $2, $3) RETURNING supplier_id`,
		supplier.Reference, supplier.Description, supplier.Enable); err != nil {
		return domain.Package{}, fmt.Errorf("seed supplier: %w", err)
	}

	product := f.Product()
	if err := db.GetContext(ctx, &product.ID,
		`INSERT INTO products (reference, description, enable) VALUES ($1, $2, $3) RETURNING product_id`,
		product.Reference, product.Description, product.Enable); err != nil {
		return domain.Package{}, fmt.Errorf("seed product: %w", err)
	}

	pkg := f.Package(product.ID, supplier.ID, opts...)
	if err := db.GetContext(ctx, &pkg.ID, `
		INSERT INTO packages (product_id, supplier_id, packaging, ordering, pieces_per_label,
			labels_per_unit, reorder, price, enable)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING package_id
	`, pkg.ProductID, pkg.SupplierID, pkg.Packaging, pkg.Ordering, pkg.PiecesPerLabel,
		pkg.LabelsPerUnit, pkg.Reorder, pkg.Price, pkg.Enable); err != nil {
		return domain.Package{}, fmt.Errorf("seed package: %w", err)
	}

	return pkg, nil
}
