package domain

// LabelStatus is the state of a single stock label
type LabelStatus int

const (
	LabelCancelled LabelStatus = -1
	LabelUsed      LabelStatus = 0
	LabelInStock   LabelStatus = 1
)

func (s LabelStatus) String() string {
	switch s {
	case LabelCancelled:
		return "cancelled"
	case LabelUsed:
		return "used"
	case LabelInStock:
		return "in_stock"
	default:
		return "unknown"
	}
}

// RequestStatus is the state of a procurement request
type RequestStatus int

const (
	RequestClosed RequestStatus = 0
	RequestDraft  RequestStatus = 1
	RequestSent   RequestStatus = 2
)

func (s RequestStatus) String() string {
	switch s {
	case RequestClosed:
		return "closed"
	case RequestDraft:
		return "draft"
	case RequestSent:
		return "sent"
	default:
		return "unknown"
	}
}

// ParseRequestStatus reads the name produced by String
func ParseRequestStatus(name string) (RequestStatus, bool) {
	for _, s := range []RequestStatus{RequestClosed, RequestDraft, RequestSent} {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// ItemStatus is the state of a request line
type ItemStatus int

const (
	ItemRemoved   ItemStatus = 0
	ItemActive    ItemStatus = 1
	ItemCancelled ItemStatus = 2
)

func (s ItemStatus) String() string {
	switch s {
	case ItemRemoved:
		return "removed"
	case ItemActive:
		return "active"
	case ItemCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// BatchStatus is the state of a batch
type BatchStatus int

const (
	BatchClosed BatchStatus = 0
	BatchActive BatchStatus = 1
)

func (s BatchStatus) String() string {
	if s == BatchActive {
		return "active"
	}
	return "closed"
}

// DeliveryStatus is the state of a delivery; only Recorded exists
type DeliveryStatus int

const DeliveryRecorded DeliveryStatus = 1

// Ordering is the granularity a package is ordered in
type Ordering int

const (
	OrderByPiece   Ordering = 0
	OrderByPackage Ordering = 1
)

func (o Ordering) String() string {
	if o == OrderByPackage {
		return "by_package"
	}
	return "by_piece"
}

// ReorderState flags a package against its reorder threshold
type ReorderState string

const (
	ReorderOK    ReorderState = "ok"
	ReorderLow   ReorderState = "low"
	ReorderEmpty ReorderState = "empty"
)

// RotationClass is the ABC consumption tier of a package
type RotationClass string

const (
	ClassA RotationClass = "A"
	ClassB RotationClass = "B"
	ClassC RotationClass = "C"
)
