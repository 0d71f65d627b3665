package handler

import (
	"net/http"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/service"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/httputil"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// RequestHandler handles procurement request endpoints
type RequestHandler struct {
	procurement *service.ProcurementService
	fulfillment *service.FulfillmentService
	logger      *logger.Logger
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(engine *service.Engine, log *logger.Logger) *RequestHandler {
	return &RequestHandler{
		procurement: engine.Procurement,
		fulfillment: engine.Fulfillment,
		logger:      log,
	}
}

type itemRequest struct {
	PackageID int64 `json:"package_id" validate:"required"`
	Quantity  int   `json:"quantity"`
}

type cancelItemRequest struct {
	Note string `json:"note"`
}

// List lists requests, optionally filtered by ?status=draft|sent|closed
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *domain.RequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := domain.ParseRequestStatus(raw)
		if !ok {
			httputil.Error(w, errors.BadRequest("invalid status"))
			return
		}
		status = &parsed
	}

	requests, err := h.procurement.ListRequests(r.Context(), status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, requests)
}

// Create opens a new draft request
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.procurement.CreateRequest(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, req)
}

// Get returns a request with the progress of its items
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	detail, err := h.procurement.GetRequest(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, detail)
}

// Delete deletes a request allowed by the delete policy
func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.procurement.DeleteRequest(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Send moves a draft request to sent
func (h *RequestHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.procurement.SendRequest(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, req)
}

// Close closes a sent request by hand
func (h *RequestHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.procurement.CloseRequest(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, req)
}

// Progress returns ordered, delivered and remaining quantities per item
func (h *RequestHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	progress, err := h.procurement.Progress(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, progress)
}

// ListItems lists every item of a request
func (h *RequestHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	items, err := h.procurement.ListItems(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// AddItem adds a package to a draft request
func (h *RequestHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req itemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.procurement.AddItem(r.Context(), id, req.PackageID, req.Quantity)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, item)
}

// UpdateItem changes the package or quantity of an item of a draft request
func (h *RequestHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := httputil.PathID(r, "itemID")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req itemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.procurement.UpdateItem(r.Context(), itemID, req.PackageID, req.Quantity)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// RemoveItem drops an item from a draft request
func (h *RequestHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := httputil.PathID(r, "itemID")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.procurement.RemoveItem(r.Context(), itemID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// CancelItem cancels an undeliverable item of a sent request
func (h *RequestHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	itemID, err := httputil.PathID(r, "itemID")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req cancelItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.procurement.CancelItem(r.Context(), id, itemID, req.Note)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// ListDeliveries lists the deliveries recorded against a request
func (h *RequestHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	deliveries, err := h.fulfillment.ListDeliveries(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, deliveries)
}
