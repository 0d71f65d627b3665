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

// CatalogHandler handles reference data and settings endpoints
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(engine *service.Engine, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: engine.Catalog,
		logger:  log,
	}
}

type settingRequest struct {
	Value string `json:"value"`
}

// Records are validated against their validate tags before reaching the catalog service.

// listRecords serves a list honouring ?enabled=true
func listRecords[T any](list func(context.Context, bool) ([]*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enabledOnly, err := httputil.QueryBool(r, "enabled", false)
		if err != nil {
			httputil.Error(w, err)
			return
		}

		records, err := list(r.Context(), enabledOnly)
		if err != nil {
			httputil.Error(w, err)
			return
		}

		httputil.JSON(w, http.StatusOK, records)
	}
}

func getRecord[T any](get func(context.Context, int64) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.PathID(r, "id")
		if err != nil {
			httputil.Error(w, err)
			return
		}

		record, err := get(r.Context(), id)
		if err != nil {
			httputil.Error(w, err)
			return
		}

		httputil.JSON(w, http.StatusOK, record)
	}
}

func createRecord[T any](create func(context.Context, *T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var record T
		if err := httputil.DecodeJSON(r, &record); err != nil {
			httputil.Error(w, err)
			return
		}

		if err := httputil.Validate(&record); err != nil {
			httputil.Error(w, err)
			return
		}

		if err := create(r.Context(), &record); err != nil {
			httputil.Error(w, err)
			return
		}

		httputil.Created(w, record)
	}
}

// updateRecord decodes the body and keys it on the path ID
func updateRecord[T any](update func(context.Context, *T) error, setID func(*T, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.PathID(r, "id")
		if err != nil {
			httputil.Error(w, err)
			return
		}

		var record T
		if err := httputil.DecodeJSON(r, &record); err != nil {
			httputil.Error(w, err)
			return
		}
		setID(&record, id)

		if err := httputil.Validate(&record); err != nil {
			httputil.Error(w, err)
			return
		}

		if err := update(r.Context(), &record); err != nil {
			httputil.Error(w, err)
			return
		}

		httputil.JSON(w, http.StatusOK, record)
	}
}

// Products

func (h *CatalogHandler) ListProducts() http.HandlerFunc {
	return listRecords(h.catalog.ListProducts)
}

func (h *CatalogHandler) GetProduct() http.HandlerFunc {
	return getRecord(h.catalog.GetProduct)
}

func (h *CatalogHandler) CreateProduct() http.HandlerFunc {
	return createRecord(h.catalog.CreateProduct)
}

func (h *CatalogHandler) UpdateProduct() http.HandlerFunc {
	return updateRecord(h.catalog.UpdateProduct, func(p *domain.Product, id int64) { p.ID = id })
}

// Suppliers

func (h *CatalogHandler) ListSuppliers() http.HandlerFunc {
	return listRecords(h.catalog.ListSuppliers)
}

func (h *CatalogHandler) GetSupplier() http.HandlerFunc {
	return getRecord(h.catalog.GetSupplier)
}

func (h *CatalogHandler) CreateSupplier() http.HandlerFunc {
	return createRecord(h.catalog.CreateSupplier)
}

func (h *CatalogHandler) UpdateSupplier() http.HandlerFunc {
	return updateRecord(h.catalog.UpdateSupplier, func(s *domain.Supplier, id int64) { s.ID = id })
}

// Packages

func (h *CatalogHandler) ListPackages() http.HandlerFunc {
	return listRecords(h.catalog.ListPackages)
}

func (h *CatalogHandler) GetPackage() http.HandlerFunc {
	return getRecord(h.catalog.GetPackage)
}

func (h *CatalogHandler) CreatePackage() http.HandlerFunc {
	return createRecord(h.catalog.CreatePackage)
}

func (h *CatalogHandler) UpdatePackage() http.HandlerFunc {
	return updateRecord(h.catalog.UpdatePackage, func(p *domain.Package, id int64) { p.ID = id })
}

// Categories, conservations and locations are saved through one call each

func (h *CatalogHandler) ListCategories() http.HandlerFunc {
	return listRecords(h.catalog.ListCategories)
}

func (h *CatalogHandler) GetCategory() http.HandlerFunc {
	return getRecord(h.catalog.GetCategory)
}

func (h *CatalogHandler) CreateCategory() http.HandlerFunc {
	return createRecord(func(ctx context.Context, c *domain.Category) error {
		c.ID = 0
		return h.catalog.SaveCategory(ctx, c)
	})
}

func (h *CatalogHandler) UpdateCategory() http.HandlerFunc {
	return updateRecord(h.catalog.SaveCategory, func(c *domain.Category, id int64) { c.ID = id })
}

func (h *CatalogHandler) ListConservations() http.HandlerFunc {
	return listRecords(h.catalog.ListConservations)
}

func (h *CatalogHandler) CreateConservation() http.HandlerFunc {
	return createRecord(func(ctx context.Context, c *domain.Conservation) error {
		c.ID = 0
		return h.catalog.SaveConservation(ctx, c)
	})
}

func (h *CatalogHandler) UpdateConservation() http.HandlerFunc {
	return updateRecord(h.catalog.SaveConservation, func(c *domain.Conservation, id int64) { c.ID = id })
}

func (h *CatalogHandler) ListLocations() http.HandlerFunc {
	return listRecords(h.catalog.ListLocations)
}

func (h *CatalogHandler) CreateLocation() http.HandlerFunc {
	return createRecord(func(ctx context.Context, l *domain.Location) error {
		l.ID = 0
		return h.catalog.SaveLocation(ctx, l)
	})
}

func (h *CatalogHandler) UpdateLocation() http.HandlerFunc {
	return updateRecord(h.catalog.SaveLocation, func(l *domain.Location, id int64) { l.ID = id })
}

// Settings

// ListSettings returns every stored setting
func (h *CatalogHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.ListSettings(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, settings)
}

// GetSetting returns one setting; an unset one reads as empty
func (h *CatalogHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	value, err := h.catalog.GetSetting(r.Context(), name, "")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, domain.Setting{Name: name, Value: value})
}

// PutSetting stores a setting value
func (h *CatalogHandler) PutSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req settingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.catalog.SetSetting(r.Context(), name, req.Value); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, domain.Setting{Name: name, Value: req.Value})
}
