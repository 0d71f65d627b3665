package handler

import (
	"net/http"

	"github.com/labstock/labstock-backend/internal/stock/service"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/httputil"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// BatchHandler handles delivery, batch and label loading endpoints
type BatchHandler struct {
	fulfillment *service.FulfillmentService
	expiration  *service.ExpirationService
	labels      *service.LabelService
	logger      *logger.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(engine *service.Engine, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		fulfillment: engine.Fulfillment,
		expiration:  engine.Expiration,
		labels:      engine.Labels,
		logger:      log,
	}
}

// loadRequest loads either one label with an optional printed tick, or count generated ones
type loadRequest struct {
	Tick  string `json:"tick"`
	Count int    `json:"count"`
}

// RecordDelivery records goods received against an item
func (h *BatchHandler) RecordDelivery(w http.ResponseWriter, r *http.Request) {
	var in service.DeliveryInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&in); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.fulfillment.RecordDelivery(r.Context(), in)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// SuggestLabels proposes a label count for ?quantity= of a package
func (h *BatchHandler) SuggestLabels(w http.ResponseWriter, r *http.Request) {
	packageID, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	quantity, err := httputil.QueryInt(r, "quantity", 0)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	count, err := h.fulfillment.SuggestLabelCount(r.Context(), packageID, quantity)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int{"quantity": quantity, "labels": count})
}

// ListByPackage lists the batches of a package; ?active=true keeps the open ones
func (h *BatchHandler) ListByPackage(w http.ResponseWriter, r *http.Request) {
	packageID, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	activeOnly, err := httputil.QueryBool(r, "active", false)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	batches, err := h.fulfillment.ListBatches(r.Context(), packageID, activeOnly)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Get gets a batch by ID
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	batch, err := h.fulfillment.GetBatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// ListLabels lists every label of a batch
func (h *BatchHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	labels, err := h.labels.ListByBatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, labels)
}

// LoadLabels mints labels against an active batch outside any delivery
func (h *BatchHandler) LoadLabels(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req loadRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if req.Tick != "" && req.Count > 1 {
		httputil.Error(w, errors.BadRequest("a printed tick loads a single label"))
		return
	}

	if req.Count < 0 || req.Count > 1 {
		labels, err := h.fulfillment.LoadLabels(r.Context(), id, req.Count)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.Created(w, labels)
		return
	}

	label, err := h.fulfillment.LoadLabel(r.Context(), id, req.Tick)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, label)
}

// WriteOff cancels the in-stock labels of a batch and closes it
func (h *BatchHandler) WriteOff(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	out, err := h.expiration.WriteOffBatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, out)
}
