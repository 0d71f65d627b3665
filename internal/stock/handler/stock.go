package handler

import (
	"context"
	"net/http"

	"github.com/labstock/labstock-backend/internal/stock/service"
	"github.com/labstock/labstock-backend/pkg/httputil"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// StockHandler handles stock ledger and expiry endpoints
type StockHandler struct {
	ledger  *service.LedgerService
	scan    func(context.Context) (*service.ScanReport, error)
	logger  *logger.Logger
}

// NewStockHandler creates a new stock handler. On-demand scans go through the
// scheduler when there is one so they share its timeout.
func NewStockHandler(engine *service.Engine, scheduler *service.ExpiryScheduler, log *logger.Logger) *StockHandler {
	scan := engine.Expiration.Scan
	if scheduler != nil {
		scan = scheduler.RunOnce
	}
	return &StockHandler{
		ledger: engine.Ledger,
		scan:   scan,
		logger: log,
	}
}

// List returns the stock and reorder state of every enabled package
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.StockByPackage(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// Reorder returns the packages that are low or out of stock
func (h *StockHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.ReorderList(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// Package returns the stock level of one package
func (h *StockHandler) Package(w http.ResponseWriter, r *http.Request) {
	packageID, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	level, err := h.ledger.ReorderStateOf(r.Context(), packageID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, level)
}

// Expiring lists batches with stock expiring within ?days= days
func (h *StockHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days, err := httputil.QueryInt(r, "days", 30)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	rows, err := h.ledger.ExpiringBatches(r.Context(), days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// Expired lists batches with stock past their expiration
func (h *StockHandler) Expired(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.ExpiredBatches(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// Scan runs the expiry scan immediately
func (h *StockHandler) Scan(w http.ResponseWriter, r *http.Request) {
	report, err := h.scan(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}
