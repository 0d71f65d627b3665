package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/service"
	"github.com/labstock/labstock-backend/pkg/httputil"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// LabelHandler handles label lifecycle endpoints
type LabelHandler struct {
	labels *service.LabelService
	logger *logger.Logger
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(engine *service.Engine, log *logger.Logger) *LabelHandler {
	return &LabelHandler{
		labels: engine.Labels,
		logger: log,
	}
}

type tickRequest struct {
	Tick string `json:"tick" validate:"required"`
}

// Get gets a label by ID
func (h *LabelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	label, err := h.labels.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, label)
}

// GetByTick gets a label by its printed tick
func (h *LabelHandler) GetByTick(w http.ResponseWriter, r *http.Request) {
	label, err := h.labels.GetByTick(r.Context(), chi.URLParam(r, "tick"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, label)
}

// Unload consumes an in-stock label
func (h *LabelHandler) Unload(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.labels.Unload)
}

// Cancel cancels an in-stock label
func (h *LabelHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.labels.Cancel)
}

// Restore puts a used or cancelled label back in stock
func (h *LabelHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.labels.Restore)
}

// UnloadByTick consumes the label carrying a scanned tick
func (h *LabelHandler) UnloadByTick(w http.ResponseWriter, r *http.Request) {
	var req tickRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	label, err := h.labels.UnloadByTick(r.Context(), req.Tick)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, label)
}

func (h *LabelHandler) byID(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) (*domain.Label, error)) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	label, err := op(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, label)
}
