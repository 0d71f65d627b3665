package service

import (
	"context"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// LedgerService answers stock questions. Stock is always counted from labels
// at query time; nothing here is cached.
type LedgerService struct {
	*core
	logger *logger.Logger
}

// PackageLevel is the stock of one package against its reorder threshold
type PackageLevel struct {
	PackageID int64               `json:"package_id"`
	Stock     int                 `json:"stock"`
	Reorder   int                 `json:"reorder"`
	State     domain.ReorderState `json:"reorder_state"`
}

// StockOf counts the in-stock labels of active batches of a package
func (s *LedgerService) StockOf(ctx context.Context, packageID int64) (int, error) {
	if _, err := s.st.Packages.Get(ctx, packageID); err != nil {
		return 0, storeError(s.logger, "get package", err, ids("package_id", packageID))
	}

	stock, err := s.st.Ledger.StockOf(ctx, packageID)
	if err != nil {
		return 0, storeError(s.logger, "stock of package", err, ids("package_id", packageID))
	}
	return stock, nil
}

// ReorderStateOf reports the stock of a package and whether it needs reordering
func (s *LedgerService) ReorderStateOf(ctx context.Context, packageID int64) (*PackageLevel, error) {
	pkg, err := s.st.Packages.Get(ctx, packageID)
	if err != nil {
		return nil, storeError(s.logger, "get package", err, ids("package_id", packageID))
	}

	stock, err := s.st.Ledger.StockOf(ctx, packageID)
	if err != nil {
		return nil, storeError(s.logger, "stock of package", err, ids("package_id", packageID))
	}

	return &PackageLevel{
		PackageID: packageID,
		Stock:     stock,
		Reorder:   pkg.Reorder,
		State:     domain.ReorderFor(stock, pkg.Reorder),
	}, nil
}

// StockByPackage returns the stock of every enabled package
func (s *LedgerService) StockByPackage(ctx context.Context) ([]*domain.PackageStock, error) {
	rows, err := s.st.Ledger.StockByPackage(ctx)
	if err != nil {
		return nil, storeError(s.logger, "stock by package", err, nil)
	}
	for _, row := range rows {
		row.ReorderFlag = domain.ReorderFor(row.Stock, row.Reorder)
	}
	return rows, nil
}

// ReorderList returns the enabled packages that are low or empty
func (s *LedgerService) ReorderList(ctx context.Context) ([]*domain.PackageStock, error) {
	rows, err := s.StockByPackage(ctx)
	if err != nil {
		return nil, err
	}

	var out []*domain.PackageStock
	for _, row := range rows {
		if row.ReorderFlag != domain.ReorderOK {
			out = append(out, row)
		}
	}
	return out, nil
}

// ExpiringBatches returns batches with stock expiring from today through
// daysAhead days from now, with the days left for each.
func (s *LedgerService) ExpiringBatches(ctx context.Context, daysAhead int) ([]*domain.BatchExpiry, error) {
	if daysAhead < 0 {
		return nil, errors.Invalid(domain.CodeWindowInvalid, "days ahead must not be negative")
	}

	today := s.today()
	rows, err := s.st.Ledger.ExpiringBatches(ctx, today, today.AddDate(0, 0, daysAhead))
	if err != nil {
		return nil, storeError(s.logger, "expiring batches", err, ids("days", daysAhead))
	}
	for _, row := range rows {
		row.DaysLeft = daysBetween(today, row.Expiration)
	}
	return rows, nil
}

// ExpiredBatches returns batches with stock whose expiration has passed
func (s *LedgerService) ExpiredBatches(ctx context.Context) ([]*domain.BatchExpiry, error) {
	today := s.today()
	rows, err := s.st.Ledger.ExpiredBatches(ctx, today)
	if err != nil {
		return nil, storeError(s.logger, "expired batches", err, nil)
	}
	for _, row := range rows {
		row.DaysExpired = daysBetween(row.Expiration, today)
		row.DaysLeft = -row.DaysExpired
	}
	return rows, nil
}
