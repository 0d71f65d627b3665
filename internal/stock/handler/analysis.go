package handler

import (
	"net/http"

	"github.com/labstock/labstock-backend/internal/stock/service"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/httputil"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// AnalysisHandler handles FEFO and ABC analysis endpoints
type AnalysisHandler struct {
	analysis *service.AnalysisService
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(engine *service.Engine, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: engine.Analysis,
		logger:   log,
	}
}

// window reads ?from=&to= (half-open, YYYY-MM-DD) or ?days= ending now
func (h *AnalysisHandler) window(r *http.Request) (service.Window, error) {
	from, err := httputil.QueryDate(r, "from")
	if err != nil {
		return service.Window{}, err
	}
	to, err := httputil.QueryDate(r, "to")
	if err != nil {
		return service.Window{}, err
	}

	switch {
	case from != nil && to != nil:
		return service.NewWindow(*from, *to)
	case from != nil || to != nil:
		return service.Window{}, errors.BadRequest("from and to must be given together")
	}

	days, err := httputil.QueryInt(r, "days", 0)
	if err != nil {
		return service.Window{}, err
	}
	return h.analysis.LastDays(days)
}

// FEFO reports first-expired-first-out efficiency per package
func (h *AnalysisHandler) FEFO(w http.ResponseWriter, r *http.Request) {
	win, err := h.window(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	reports, err := h.analysis.FEFOCompliance(r.Context(), win)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"window": win, "packages": reports})
}

// PackageFEFO reports the FEFO efficiency of one package
func (h *AnalysisHandler) PackageFEFO(w http.ResponseWriter, r *http.Request) {
	packageID, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	win, err := h.window(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.analysis.PackageFEFO(r.Context(), packageID, win)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// ABC ranks packages by consumption in the window
func (h *AnalysisHandler) ABC(w http.ResponseWriter, r *http.Request) {
	win, err := h.window(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	rotation, err := h.analysis.ABC(r.Context(), win)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"window": win, "packages": rotation})
}
