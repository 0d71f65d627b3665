package domain

// Validation codes returned in AppError.Code so callers can tell failures apart
const (
	CodeQuantityInvalid     = "QUANTITY_INVALID"
	CodeRequestNotDraft     = "REQUEST_NOT_DRAFT"
	CodeRequestNotSent      = "REQUEST_NOT_SENT"
	CodeRequestClosed       = "REQUEST_ALREADY_CLOSED"
	CodeRequestHasDelivery  = "REQUEST_HAS_DELIVERIES"
	CodeNoActiveItems       = "NO_ACTIVE_ITEMS"
	CodeItemNotActive       = "ITEM_NOT_ACTIVE"
	CodeItemCancelled       = "ITEM_ALREADY_CANCELLED"
	CodeItemWrongRequest    = "ITEM_NOT_IN_REQUEST"
	CodeNoteRequired        = "NOTE_REQUIRED"
	CodeDuplicatePackage    = "DUPLICATE_PACKAGE"
	CodePackageDisabled     = "PACKAGE_DISABLED"
	CodeQuantityExceeds     = "QUANTITY_EXCEEDS_REMAINING"
	CodePiecesMultiple      = "QUANTITY_NOT_MULTIPLE_OF_PIECES"
	CodeBatchRequired       = "BATCH_SELECTION_REQUIRED"
	CodeBatchAmbiguous      = "BATCH_SELECTION_AMBIGUOUS"
	CodeBatchClosed         = "BATCH_CLOSED"
	CodeBatchWrongPackage   = "BATCH_WRONG_PACKAGE"
	CodeDuplicateBatch      = "DUPLICATE_BATCH"
	CodeLotRequired         = "LOT_REQUIRED"
	CodeExpirationNotFuture = "EXPIRATION_NOT_IN_FUTURE"
	CodeLabelCountInvalid   = "LABEL_COUNT_INVALID"
	CodeLabelUnloaded       = "LABEL_ALREADY_UNLOADED"
	CodeLabelCancelled      = "LABEL_CANCELLED"
	CodeLabelInStock        = "LABEL_ALREADY_IN_STOCK"
	CodeTickReserved        = "TICK_RESERVED"
	CodeDeleteNotAllowed    = "DELETE_NOT_ALLOWED"
	CodeWindowInvalid       = "ANALYSIS_WINDOW_INVALID"
)
