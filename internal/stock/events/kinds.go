package events

import (
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
)

// Kind names an engine notification
type Kind int

const (
	StockChanged Kind = iota + 1
	LabelUnloaded
	BatchCancelled
	CategoryChanged
	PackageChanged
	RequestChanged
)

// Kinds returns every notification kind
func Kinds() []Kind {
	return []Kind{StockChanged, LabelUnloaded, BatchCancelled, CategoryChanged, PackageChanged, RequestChanged}
}

func (k Kind) String() string {
	switch k {
	case StockChanged:
		return "stock_changed"
	case LabelUnloaded:
		return "label_unloaded"
	case BatchCancelled:
		return "batch_cancelled"
	case CategoryChanged:
		return "category_changed"
	case PackageChanged:
		return "package_changed"
	case RequestChanged:
		return "request_changed"
	default:
		return "unknown"
	}
}

// Event is a typed notification payload
type Event interface {
	Kind() Kind
}

// StockChangedEvent reports that the stock of some packages may have moved
type StockChangedEvent struct {
	PackageIDs []int64 `json:"package_ids"`
	Reason     string  `json:"reason"`
}

func (StockChangedEvent) Kind() Kind { return StockChanged }

// LabelUnloadedEvent reports a consumed label
type LabelUnloadedEvent struct {
	LabelID   int64     `json:"label_id"`
	BatchID   int64     `json:"batch_id"`
	PackageID int64     `json:"package_id"`
	Tick      string    `json:"tick"`
	Unloaded  time.Time `json:"unloaded"`
}

func (LabelUnloadedEvent) Kind() Kind { return LabelUnloaded }

// BatchCancelledEvent reports a written-off batch
type BatchCancelledEvent struct {
	BatchID   int64  `json:"batch_id"`
	PackageID int64  `json:"package_id"`
	Lot       string `json:"lot"`
	Cancelled int64  `json:"cancelled_labels"`
}

func (BatchCancelledEvent) Kind() Kind { return BatchCancelled }

// CategoryChangedEvent reports a created or edited category
type CategoryChangedEvent struct {
	CategoryID int64 `json:"category_id"`
}

func (CategoryChangedEvent) Kind() Kind { return CategoryChanged }

// PackageChangedEvent reports a created or edited package
type PackageChangedEvent struct {
	PackageID int64 `json:"package_id"`
}

func (PackageChangedEvent) Kind() Kind { return PackageChanged }

// RequestChangedEvent reports a request or item state change
type RequestChangedEvent struct {
	RequestID int64                `json:"request_id"`
	Status    domain.RequestStatus `json:"status"`
}

func (RequestChangedEvent) Kind() Kind { return RequestChanged }
