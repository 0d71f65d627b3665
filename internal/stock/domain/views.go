package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackageStock is the derived stock of one package
type PackageStock struct {
	PackageID   int64        `db:"package_id" json:"package_id"`
	Product     string       `db:"product" json:"product"`
	Packaging   string       `db:"packaging" json:"packaging"`
	Reorder     int          `db:"reorder" json:"reorder"`
	Stock       int          `db:"stock" json:"stock"`
	ReorderFlag ReorderState `db:"-" json:"reorder_state"`
}

// BatchExpiry is a batch with remaining stock and its distance to expiration.
// DaysLeft is negative for expired batches; DaysExpired mirrors it for reports.
type BatchExpiry struct {
	BatchID     int64     `db:"batch_id" json:"batch_id"`
	PackageID   int64     `db:"package_id" json:"package_id"`
	Product     string    `db:"product" json:"product"`
	Lot         string    `db:"lot" json:"lot"`
	Expiration  time.Time `db:"expiration" json:"expiration"`
	Stock       int       `db:"stock" json:"stock"`
	DaysLeft    int       `db:"-" json:"days_left"`
	DaysExpired int       `db:"-" json:"days_expired,omitempty"`
}

// ItemProgress reports how much of an Item has been delivered
type ItemProgress struct {
	ItemID    int64      `db:"item_id" json:"item_id"`
	PackageID int64      `db:"package_id" json:"package_id"`
	Status    ItemStatus `db:"status" json:"status"`
	Ordered   int        `db:"ordered" json:"ordered"`
	Delivered int        `db:"delivered" json:"delivered"`
	Remaining int        `db:"-" json:"remaining"`
}

// LabelMovement is a label with the expiration of its batch, the input of FEFO analysis
type LabelMovement struct {
	LabelID    int64       `db:"label_id" json:"label_id"`
	PackageID  int64       `db:"package_id" json:"package_id"`
	BatchID    int64       `db:"batch_id" json:"batch_id"`
	Expiration *time.Time  `db:"expiration" json:"expiration,omitempty"`
	Loaded     time.Time   `db:"loaded" json:"loaded"`
	Unloaded   *time.Time  `db:"unloaded" json:"unloaded,omitempty"`
	Status     LabelStatus `db:"status" json:"status"`
}

// Consumption is the number of labels of a package unloaded in a window
type Consumption struct {
	PackageID int64 `db:"package_id" json:"package_id"`
	Unloaded  int   `db:"unloaded" json:"unloaded"`
}

// FEFOReport is the first-expired-first-out compliance of a package
type FEFOReport struct {
	PackageID  int64           `json:"package_id"`
	Total      int             `json:"total"`
	Violations int             `json:"violations"`
	Efficiency decimal.Decimal `json:"efficiency"`
}

// Rotation is the ABC classification of a package
type Rotation struct {
	PackageID  int64           `json:"package_id"`
	Unloaded   int             `json:"unloaded"`
	Share      decimal.Decimal `json:"share"`
	Cumulative decimal.Decimal `json:"cumulative"`
	Class      RotationClass   `json:"class"`
}
