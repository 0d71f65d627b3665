package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/labstock/labstock-backend/internal/stock/service"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// Routes mounts every stock endpoint on r. scheduler may be nil.
func Routes(r chi.Router, engine *service.Engine, scheduler *service.ExpiryScheduler, log *logger.Logger) {
	requestHandler := NewRequestHandler(engine, log)
	batchHandler := NewBatchHandler(engine, log)
	labelHandler := NewLabelHandler(engine, log)
	stockHandler := NewStockHandler(engine, scheduler, log)
	analysisHandler := NewAnalysisHandler(engine, log)
	catalogHandler := NewCatalogHandler(engine, log)

	// Request routes
	r.Route("/requests", func(r chi.Router) {
		r.Get("/", requestHandler.List)
		r.Post("/", requestHandler.Create)
		r.Get("/{id}", requestHandler.Get)
		r.Delete("/{id}", requestHandler.Delete)
		r.Post("/{id}/send", requestHandler.Send)
		r.Post("/{id}/close", requestHandler.Close)
		r.Get("/{id}/progress", requestHandler.Progress)
		r.Get("/{id}/deliveries", requestHandler.ListDeliveries)
		r.Get("/{id}/items", requestHandler.ListItems)
		r.Post("/{id}/items", requestHandler.AddItem)
		r.Post("/{id}/items/{itemID}/cancel", requestHandler.CancelItem)
	})

	r.Route("/items", func(r chi.Router) {
		r.Put("/{itemID}", requestHandler.UpdateItem)
		r.Delete("/{itemID}", requestHandler.RemoveItem)
	})

	r.Post("/deliveries", batchHandler.RecordDelivery)

	// Batch routes
	r.Route("/batches", func(r chi.Router) {
		r.Get("/{id}", batchHandler.Get)
		r.Get("/{id}/labels", batchHandler.ListLabels)
		r.Post("/{id}/labels", batchHandler.LoadLabels)
		r.Post("/{id}/write-off", batchHandler.WriteOff)
	})

	// Label routes
	r.Route("/labels", func(r chi.Router) {
		r.Post("/unload", labelHandler.UnloadByTick)
		r.Get("/tick/{tick}", labelHandler.GetByTick)
		r.Get("/{id}", labelHandler.Get)
		r.Post("/{id}/unload", labelHandler.Unload)
		r.Post("/{id}/cancel", labelHandler.Cancel)
		r.Post("/{id}/restore", labelHandler.Restore)
	})

	// Stock ledger
	r.Route("/stock", func(r chi.Router) {
		r.Get("/", stockHandler.List)
		r.Get("/reorder", stockHandler.Reorder)
		r.Get("/expiring", stockHandler.Expiring)
		r.Get("/expired", stockHandler.Expired)
		r.Post("/scan", stockHandler.Scan)
		r.Get("/packages/{id}", stockHandler.Package)
	})

	r.Route("/analysis", func(r chi.Router) {
		r.Get("/fefo", analysisHandler.FEFO)
		r.Get("/fefo/packages/{id}", analysisHandler.PackageFEFO)
		r.Get("/abc", analysisHandler.ABC)
	})

	// Catalog routes
	r.Route("/products", func(r chi.Router) {
		r.Get("/", catalogHandler.ListProducts())
		r.Post("/", catalogHandler.CreateProduct())
		r.Get("/{id}", catalogHandler.GetProduct())
		r.Put("/{id}", catalogHandler.UpdateProduct())
	})
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", catalogHandler.ListSuppliers())
		r.Post("/", catalogHandler.CreateSupplier())
		r.Get("/{id}", catalogHandler.GetSupplier())
		r.Put("/{id}", catalogHandler.UpdateSupplier())
	})
	r.Route("/packages", func(r chi.Router) {
		r.Get("/", catalogHandler.ListPackages())
		r.Post("/", catalogHandler.CreatePackage())
		r.Get("/{id}", catalogHandler.GetPackage())
		r.Put("/{id}", catalogHandler.UpdatePackage())
		r.Get("/{id}/batches", batchHandler.ListByPackage)
		r.Get("/{id}/label-suggestion", batchHandler.SuggestLabels)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", catalogHandler.ListCategories())
		r.Post("/", catalogHandler.CreateCategory())
		r.Get("/{id}", catalogHandler.GetCategory())
		r.Put("/{id}", catalogHandler.UpdateCategory())
	})
	r.Route("/conservations", func(r chi.Router) {
		r.Get("/", catalogHandler.ListConservations())
		r.Post("/", catalogHandler.CreateConservation())
		r.Put("/{id}", catalogHandler.UpdateConservation())
	})
	r.Route("/locations", func(r chi.Router) {
		r.Get("/", catalogHandler.ListLocations())
		r.Post("/", catalogHandler.CreateLocation())
		r.Put("/{id}", catalogHandler.UpdateLocation())
	})
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", catalogHandler.ListSettings)
		r.Get("/{name}", catalogHandler.GetSetting)
		r.Put("/{name}", catalogHandler.PutSetting)
	})
}
