package service

import (
	"context"
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/repository"
	"github.com/labstock/labstock-backend/pkg/database"
)

// Transactor runs fn in one transaction carried by ctx
type Transactor interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}

// RequestStore persists procurement requests
type RequestStore interface {
	Create(ctx context.Context, req *domain.Request) error
	Get(ctx context.Context, id int64) (*domain.Request, error)
	List(ctx context.Context, status *domain.RequestStatus) ([]*domain.Request, error)
	SetStatus(ctx context.Context, id int64, status domain.RequestStatus) error
	Delete(ctx context.Context, id int64) error
	NextSequence(ctx context.Context, stem string) (int, error)
	HasDeliveries(ctx context.Context, id int64) (bool, error)
}

// ItemStore persists request items
type ItemStore interface {
	Create(ctx context.Context, item *domain.Item) error
	Get(ctx context.Context, id int64) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	ListByRequest(ctx context.Context, requestID int64) ([]*domain.Item, error)
	FindActiveByPackage(ctx context.Context, requestID, packageID int64) (*domain.Item, error)
	Progress(ctx context.Context, requestID int64) ([]*domain.ItemProgress, error)
	Delivered(ctx context.Context, itemID int64) (int, error)
}

// DeliveryStore persists deliveries
type DeliveryStore interface {
	Create(ctx context.Context, d *domain.Delivery) error
	ListByRequest(ctx context.Context, requestID int64) ([]*domain.Delivery, error)
}

// BatchStore persists batches
type BatchStore interface {
	Create(ctx context.Context, batch *domain.Batch) error
	Get(ctx context.Context, id int64) (*domain.Batch, error)
	FindActive(ctx context.Context, packageID int64, lot string, expiration time.Time) (*domain.Batch, error)
	ListByPackage(ctx context.Context, packageID int64, activeOnly bool) ([]*domain.Batch, error)
	SetStatus(ctx context.Context, id int64, status domain.BatchStatus) error
}

// LabelStore persists labels and serves the analytics reads over them
type LabelStore interface {
	Create(ctx context.Context, label *domain.Label) error
	Get(ctx context.Context, id int64) (*domain.Label, error)
	GetByTick(ctx context.Context, tick string) (*domain.Label, error)
	ListByBatch(ctx context.Context, batchID int64) ([]*domain.Label, error)
	Transition(ctx context.Context, id int64, from, to domain.LabelStatus, unloaded *time.Time) (bool, error)
	CancelInStock(ctx context.Context, batchID int64) (int64, error)
	Movements(ctx context.Context, from, to time.Time) ([]*domain.LabelMovement, error)
	Consumption(ctx context.Context, from, to time.Time) ([]*domain.Consumption, error)
}

// LedgerStore derives stock from labels
type LedgerStore interface {
	StockOf(ctx context.Context, packageID int64) (int, error)
	StockByPackage(ctx context.Context) ([]*domain.PackageStock, error)
	ExpiringBatches(ctx context.Context, today, until time.Time) ([]*domain.BatchExpiry, error)
	ExpiredBatches(ctx context.Context, today time.Time) ([]*domain.BatchExpiry, error)
}

// CatalogStore persists one kind of reference record
type CatalogStore[T any] interface {
	Create(ctx context.Context, record *T) (int64, error)
	Update(ctx context.Context, record *T) error
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, enabledOnly bool) ([]*T, error)
}

// SettingsStore is the key/value settings store
type SettingsStore interface {
	Get(ctx context.Context, name, def string) (string, error)
	Set(ctx context.Context, name, value string) error
	List(ctx context.Context) ([]*domain.Setting, error)
}

// Stores groups every store the engine reads and writes
type Stores struct {
	Tx            Transactor
	Requests      RequestStore
	Items         ItemStore
	Deliveries    DeliveryStore
	Batches       BatchStore
	Labels        LabelStore
	Ledger        LedgerStore
	Packages      CatalogStore[domain.Package]
	Products      CatalogStore[domain.Product]
	Suppliers     CatalogStore[domain.Supplier]
	Categories    CatalogStore[domain.Category]
	Conservations CatalogStore[domain.Conservation]
	Locations     CatalogStore[domain.Location]
	Settings      SettingsStore
}

// NewStores builds the PostgreSQL stores over db
func NewStores(db *database.DB) Stores {
	return Stores{
		Tx:            db,
		Requests:      repository.NewRequestRepository(db),
		Items:         repository.NewItemRepository(db),
		Deliveries:    repository.NewDeliveryRepository(db),
		Batches:       repository.NewBatchRepository(db),
		Labels:        repository.NewLabelRepository(db),
		Ledger:        repository.NewLedgerRepository(db),
		Packages:      repository.NewPackageRepository(db),
		Products:      repository.NewProductRepository(db),
		Suppliers:     repository.NewSupplierRepository(db),
		Categories:    repository.NewCategoryRepository(db),
		Conservations: repository.NewConservationRepository(db),
		Locations:     repository.NewLocationRepository(db),
		Settings:      repository.NewSettingsRepository(db),
	}
}
