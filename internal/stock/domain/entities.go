package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog article, unique by reference and by description
type Product struct {
	ID          int64  `db:"product_id" json:"product_id"`
	Reference   string `db:"reference" json:"reference" validate:"required,notblank"`
	Description string `db:"description" json:"description" validate:"required,notblank"`
	Enable      bool   `db:"enable" json:"enable"`
}

// Supplier sells packages
type Supplier struct {
	ID          int64  `db:"supplier_id" json:"supplier_id"`
	Reference   string `db:"reference" json:"reference"`
	Description string `db:"description" json:"description" validate:"required,notblank"`
	Enable      bool   `db:"enable" json:"enable"`
}

// Category groups packages for reporting
type Category struct {
	ID          int64  `db:"category_id" json:"category_id"`
	Description string `db:"description" json:"description" validate:"required,notblank"`
	Enable      bool   `db:"enable" json:"enable"`
}

// Conservation is a storage condition such as "+4°C"
type Conservation struct {
	ID          int64  `db:"conservation_id" json:"conservation_id"`
	Description string `db:"description" json:"description" validate:"required,notblank"`
	Enable      bool   `db:"enable" json:"enable"`
}

// Location is where a package is shelved
type Location struct {
	ID          int64  `db:"location_id" json:"location_id"`
	Description string `db:"description" json:"description" validate:"required,notblank"`
	Enable      bool   `db:"enable" json:"enable"`
}

// Package is a purchasable variant of a Product from one Supplier.
// Each Label of the package stands for PiecesPerLabel physical pieces.
type Package struct {
	ID             int64           `db:"package_id" json:"package_id"`
	ProductID      int64           `db:"product_id" json:"product_id" validate:"required"`
	SupplierID     int64           `db:"supplier_id" json:"supplier_id" validate:"required"`
	Packaging      string          `db:"packaging" json:"packaging"`
	ConservationID *int64          `db:"conservation_id" json:"conservation_id,omitempty"`
	CategoryID     *int64          `db:"category_id" json:"category_id,omitempty"`
	LocationID     *int64          `db:"location_id" json:"location_id,omitempty"`
	Ordering       Ordering        `db:"ordering" json:"ordering" validate:"oneof=0 1"`
	PiecesPerLabel int             `db:"pieces_per_label" json:"pieces_per_label" validate:"min=1"`
	LabelsPerUnit  int             `db:"labels_per_unit" json:"labels_per_unit" validate:"min=1"`
	Reorder        int             `db:"reorder" json:"reorder" validate:"min=0"`
	Price          decimal.Decimal `db:"price" json:"price" validate:"gte=0"`
	Enable         bool            `db:"enable" json:"enable"`
}

// Request is a procurement order sent to suppliers
type Request struct {
	ID        int64         `db:"request_id" json:"request_id"`
	Reference string        `db:"reference" json:"reference"`
	Issued    time.Time     `db:"issued" json:"issued"`
	Status    RequestStatus `db:"status" json:"status"`
}

// Item is one ordered line of a Request
type Item struct {
	ID        int64      `db:"item_id" json:"item_id"`
	RequestID int64      `db:"request_id" json:"request_id"`
	PackageID int64      `db:"package_id" json:"package_id"`
	Quantity  int        `db:"quantity" json:"quantity"`
	Status    ItemStatus `db:"status" json:"status"`
	Note      *string    `db:"note" json:"note,omitempty"`
}

// Delivery records goods received against an Item
type Delivery struct {
	ID        int64          `db:"delivery_id" json:"delivery_id"`
	ItemID    int64          `db:"item_id" json:"item_id"`
	PackageID int64          `db:"package_id" json:"package_id"`
	BatchID   int64          `db:"batch_id" json:"batch_id"`
	Quantity  int            `db:"quantity" json:"quantity"`
	DDT       string         `db:"ddt" json:"ddt"`
	Delivered time.Time      `db:"delivered" json:"delivered"`
	Status    DeliveryStatus `db:"status" json:"status"`
}

// Batch is a production lot of a Package
type Batch struct {
	ID         int64       `db:"batch_id" json:"batch_id"`
	PackageID  int64       `db:"package_id" json:"package_id"`
	Lot        string      `db:"lot" json:"lot"`
	Expiration *time.Time  `db:"expiration" json:"expiration,omitempty"`
	Status     BatchStatus `db:"status" json:"status"`
}

// Label is the atomic unit of stock
type Label struct {
	ID       int64       `db:"label_id" json:"label_id"`
	BatchID  int64       `db:"batch_id" json:"batch_id"`
	Tick     string      `db:"tick" json:"tick"`
	Loaded   time.Time   `db:"loaded" json:"loaded"`
	Unloaded *time.Time  `db:"unloaded" json:"unloaded,omitempty"`
	Status   LabelStatus `db:"status" json:"status"`
}

// MintedTickDigits is the width of ticks minted from the label sequence
const MintedTickDigits = 12

// IsMintedTick reports whether tick has the shape of a minted tick.
// Operator supplied ticks of this shape would collide with future mints.
func IsMintedTick(tick string) bool {
	if len(tick) != MintedTickDigits {
		return false
	}
	for i := 0; i < len(tick); i++ {
		if tick[i] < '0' || tick[i] > '9' {
			return false
		}
	}
	return true
}

// Setting is a key/value pair of engine settings
type Setting struct {
	ID    int64  `db:"setting_id" json:"setting_id"`
	Name  string `db:"name" json:"name"`
	Value string `db:"value" json:"value"`
}
