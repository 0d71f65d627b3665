package service

import (
	"context"
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/pkg/config"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// Engine is the single inventory engine instance. It is built once by the
// process entry point and handed to every caller.
type Engine struct {
	Procurement *ProcurementService
	Fulfillment *FulfillmentService
	Labels      *LabelService
	Ledger      *LedgerService
	Expiration  *ExpirationService
	Analysis    *AnalysisService
	Catalog     *CatalogService
}

// Option customizes the engine
type Option func(*core)

// WithClock replaces the wall clock used for dates and unload times
func WithClock(now func() time.Time) Option {
	return func(c *core) {
		c.now = now
	}
}

// core holds what every service shares
type core struct {
	st     Stores
	bus    *events.Bus
	cfg    config.StockConfig
	logger *logger.Logger
	now    func() time.Time
}

// NewEngine wires every service over the same stores and bus
func NewEngine(st Stores, bus *events.Bus, cfg config.StockConfig, log *logger.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	c := &core{st: st, bus: bus, cfg: cfg, logger: log, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	ledger := &LedgerService{core: c, logger: log.WithComponent("ledger")}
	expiration := &ExpirationService{core: c, ledger: ledger, logger: log.WithComponent("expiration")}

	return &Engine{
		Procurement: &ProcurementService{core: c, logger: log.WithComponent("procurement")},
		Fulfillment: &FulfillmentService{core: c, logger: log.WithComponent("fulfillment")},
		Labels:      &LabelService{core: c, logger: log.WithComponent("labels")},
		Ledger:      ledger,
		Expiration:  expiration,
		Analysis:    &AnalysisService{core: c, logger: log.WithComponent("analysis")},
		Catalog:     &CatalogService{core: c, logger: log.WithComponent("catalog")},
	}
}

func (c *core) today() time.Time {
	return dateOf(c.now())
}

func (c *core) publish(ctx context.Context, evs ...events.Event) {
	for _, ev := range evs {
		c.bus.Publish(ctx, ev)
	}
}

// closeIfFulfilled closes a sent request once none of its active items is
// still waiting for goods. It reports whether the request was closed.
func (c *core) closeIfFulfilled(ctx context.Context, requestID int64) (bool, error) {
	progress, err := c.st.Items.Progress(ctx, requestID)
	if err != nil {
		return false, err
	}

	for _, p := range progress {
		if p.Status == domain.ItemActive && p.Delivered < p.Ordered {
			return false, nil
		}
	}

	if err := c.st.Requests.SetStatus(ctx, requestID, domain.RequestClosed); err != nil {
		return false, err
	}
	return true, nil
}
