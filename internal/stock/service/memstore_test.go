package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/pkg/config"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// memDB is an in-memory stand-in for the PostgreSQL stores
type memDB struct {
	mu         sync.Mutex
	seq        int64
	requests   map[int64]*domain.Request
	items      map[int64]*domain.Item
	deliveries map[int64]*domain.Delivery
	batches    map[int64]*domain.Batch
	labels     map[int64]*domain.Label
	settings   map[string]string

	products      *memCatalog[domain.Product]
	suppliers     *memCatalog[domain.Supplier]
	categories    *memCatalog[domain.Category]
	conservations *memCatalog[domain.Conservation]
	locations     *memCatalog[domain.Location]
	packages      *memCatalog[domain.Package]

	// failCreateLabel makes label creation fail after this many labels
	failCreateLabel int
}

func newMemDB() *memDB {
	db := &memDB{
		requests:        map[int64]*domain.Request{},
		items:           map[int64]*domain.Item{},
		deliveries:      map[int64]*domain.Delivery{},
		batches:         map[int64]*domain.Batch{},
		labels:          map[int64]*domain.Label{},
		settings:        map[string]string{},
		failCreateLabel: -1,
	}
	db.products = newMemCatalog(db, "product",
		func(p *domain.Product) *int64 { return &p.ID }, func(p *domain.Product) bool { return p.Enable })
	db.suppliers = newMemCatalog(db, "supplier",
		func(s *domain.Supplier) *int64 { return &s.ID }, func(s *domain.Supplier) bool { return s.Enable })
	db.categories = newMemCatalog(db, "category",
		func(c *domain.Category) *int64 { return &c.ID }, func(c *domain.Category) bool { return c.Enable })
	db.conservations = newMemCatalog(db, "conservation",
		func(c *domain.Conservation) *int64 { return &c.ID }, func(c *domain.Conservation) bool { return c.Enable })
	db.locations = newMemCatalog(db, "location",
		func(l *domain.Location) *int64 { return &l.ID }, func(l *domain.Location) bool { return l.Enable })
	db.packages = newMemCatalog(db, "package",
		func(p *domain.Package) *int64 { return &p.ID }, func(p *domain.Package) bool { return p.Enable })
	return db
}

func (db *memDB) next() int64 {
	db.seq++
	return db.seq
}

func (db *memDB) stores() Stores {
	return Stores{
		Tx:            memTx{db},
		Requests:      memRequests{db},
		Items:         memItems{db},
		Deliveries:    memDeliveries{db},
		Batches:       memBatches{db},
		Labels:        memLabels{db},
		Ledger:        memLedger{db},
		Packages:      db.packages,
		Products:      db.products,
		Suppliers:     db.suppliers,
		Categories:    db.categories,
		Conservations: db.conservations,
		Locations:     db.locations,
		Settings:      memSettings{db},
	}
}

// counts reports how many batches, deliveries and labels exist
func (db *memDB) counts() (batches, deliveries, labels int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.batches), len(db.deliveries), len(db.labels)
}

type memTxKey struct{}

// memTx snapshots the workflow tables and puts them back when fn fails.
// Nested calls join the outer transaction.
type memTx struct{ db *memDB }

func (tx memTx) InTx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	saved := tx.db.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		tx.db.restore(saved)
		return err
	}
	return nil
}

type memSnapshot struct {
	requests   map[int64]*domain.Request
	items      map[int64]*domain.Item
	deliveries map[int64]*domain.Delivery
	batches    map[int64]*domain.Batch
	labels     map[int64]*domain.Label
	settings   map[string]string
}

func cloneRows[V any](rows map[int64]*V) map[int64]*V {
	out := make(map[int64]*V, len(rows))
	for id, row := range rows {
		cp := *row
		out[id] = &cp
	}
	return out
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	settings := make(map[string]string, len(db.settings))
	for k, v := range db.settings {
		settings[k] = v
	}
	return memSnapshot{
		requests:   cloneRows(db.requests),
		items:      cloneRows(db.items),
		deliveries: cloneRows(db.deliveries),
		batches:    cloneRows(db.batches),
		labels:     cloneRows(db.labels),
		settings:   settings,
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.requests = s.requests
	db.items = s.items
	db.deliveries = s.deliveries
	db.batches = s.batches
	db.labels = s.labels
	db.settings = s.settings
}

// catalog

type memCatalog[T any] struct {
	db       *memDB
	resource string
	records  map[int64]*T
	id       func(*T) *int64
	enabled  func(*T) bool
}

func newMemCatalog[T any](db *memDB, resource string, id func(*T) *int64, enabled func(*T) bool) *memCatalog[T] {
	return &memCatalog[T]{db: db, resource: resource, records: map[int64]*T{}, id: id, enabled: enabled}
}

func (c *memCatalog[T]) Create(_ context.Context, record *T) (int64, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	cp := *record
	id := c.db.next()
	*c.id(&cp) = id
	c.records[id] = &cp
	return id, nil
}

func (c *memCatalog[T]) Update(_ context.Context, record *T) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	id := *c.id(record)
	if _, ok := c.records[id]; !ok {
		return errors.NotFound(c.resource)
	}
	cp := *record
	c.records[id] = &cp
	return nil
}

func (c *memCatalog[T]) Get(_ context.Context, id int64) (*T, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, errors.NotFound(c.resource)
	}
	cp := *rec
	return &cp, nil
}

func (c *memCatalog[T]) List(_ context.Context, enabledOnly bool) ([]*T, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	var out []*T
	for _, id := range sortedKeys(c.records) {
		rec := c.records[id]
		if enabledOnly && !c.enabled(rec) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// requests

type memRequests struct{ db *memDB }

func (r memRequests) Create(_ context.Context, req *domain.Request) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req.ID = r.db.next()
	cp := *req
	r.db.requests[req.ID] = &cp
	return nil
}

func (r memRequests) Get(_ context.Context, id int64) (*domain.Request, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.requests[id]
	if !ok {
		return nil, errors.NotFound("request")
	}
	cp := *req
	return &cp, nil
}

func (r memRequests) List(_ context.Context, status *domain.RequestStatus) ([]*domain.Request, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Request
	for _, id := range sortedKeys(r.db.requests) {
		req := r.db.requests[id]
		if status != nil && req.Status != *status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (r memRequests) SetStatus(_ context.Context, id int64, status domain.RequestStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.requests[id]
	if !ok {
		return errors.NotFound("request")
	}
	req.Status = status
	return nil
}

func (r memRequests) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.requests[id]; !ok {
		return errors.NotFound("request")
	}
	for itemID, item := range r.db.items {
		if item.RequestID == id {
			delete(r.db.items, itemID)
		}
	}
	delete(r.db.requests, id)
	return nil
}

func (r memRequests) NextSequence(_ context.Context, stem string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	last := 0
	for _, req := range r.db.requests {
		if !strings.HasPrefix(req.Reference, stem) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(req.Reference, stem)); err == nil && n > last {
			last = n
		}
	}
	return last + 1, nil
}

func (r memRequests) HasDeliveries(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, d := range r.db.deliveries {
		if item, ok := r.db.items[d.ItemID]; ok && item.RequestID == id {
			return true, nil
		}
	}
	return false, nil
}

// items

type memItems struct{ db *memDB }

func (r memItems) Create(_ context.Context, item *domain.Item) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item.ID = r.db.next()
	cp := *item
	r.db.items[item.ID] = &cp
	return nil
}

func (r memItems) Get(_ context.Context, id int64) (*domain.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.items[id]
	if !ok {
		return nil, errors.NotFound("item")
	}
	cp := *item
	return &cp, nil
}

func (r memItems) Update(_ context.Context, item *domain.Item) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.items[item.ID]; !ok {
		return errors.NotFound("item")
	}
	cp := *item
	r.db.items[item.ID] = &cp
	return nil
}

func (r memItems) ListByRequest(_ context.Context, requestID int64) ([]*domain.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Item
	for _, id := range sortedKeys(r.db.items) {
		if item := r.db.items[id]; item.RequestID == requestID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memItems) FindActiveByPackage(_ context.Context, requestID, packageID int64) (*domain.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range sortedKeys(r.db.items) {
		item := r.db.items[id]
		if item.RequestID == requestID && item.PackageID == packageID && item.Status == domain.ItemActive {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memItems) delivered(itemID int64) int {
	total := 0
	for _, d := range r.db.deliveries {
		if d.ItemID == itemID {
			total += d.Quantity
		}
	}
	return total
}

func (r memItems) Progress(_ context.Context, requestID int64) ([]*domain.ItemProgress, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.ItemProgress
	for _, id := range sortedKeys(r.db.items) {
		item := r.db.items[id]
		if item.RequestID != requestID {
			continue
		}
		delivered := r.delivered(item.ID)
		out = append(out, &domain.ItemProgress{
			ItemID:    item.ID,
			PackageID: item.PackageID,
			Status:    item.Status,
			Ordered:   item.Quantity,
			Delivered: delivered,
			Remaining: max(item.Quantity-delivered, 0),
		})
	}
	return out, nil
}

func (r memItems) Delivered(_ context.Context, itemID int64) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.delivered(itemID), nil
}

// deliveries

type memDeliveries struct{ db *memDB }

func (r memDeliveries) Create(_ context.Context, d *domain.Delivery) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d.ID = r.db.next()
	cp := *d
	r.db.deliveries[d.ID] = &cp
	return nil
}

func (r memDeliveries) ListByRequest(_ context.Context, requestID int64) ([]*domain.Delivery, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Delivery
	for _, id := range sortedKeys(r.db.deliveries) {
		d := r.db.deliveries[id]
		if item, ok := r.db.items[d.ItemID]; ok && item.RequestID == requestID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

// batches

type memBatches struct{ db *memDB }

func (r memBatches) Create(_ context.Context, b *domain.Batch) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b.ID = r.db.next()
	cp := *b
	r.db.batches[b.ID] = &cp
	return nil
}

func (r memBatches) Get(_ context.Context, id int64) (*domain.Batch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.batches[id]
	if !ok {
		return nil, errors.NotFound("batch")
	}
	cp := *b
	return &cp, nil
}

func (r memBatches) FindActive(_ context.Context, packageID int64, lot string, expiration time.Time) (*domain.Batch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range sortedKeys(r.db.batches) {
		b := r.db.batches[id]
		if b.PackageID == packageID && b.Lot == lot && b.Status == domain.BatchActive &&
			b.Expiration != nil && b.Expiration.Equal(expiration) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memBatches) ListByPackage(_ context.Context, packageID int64, activeOnly bool) ([]*domain.Batch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Batch
	for _, id := range sortedKeys(r.db.batches) {
		b := r.db.batches[id]
		if b.PackageID != packageID || (activeOnly && b.Status != domain.BatchActive) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (r memBatches) SetStatus(_ context.Context, id int64, status domain.BatchStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.batches[id]
	if !ok {
		return errors.NotFound("batch")
	}
	b.Status = status
	return nil
}

// labels

type memLabels struct{ db *memDB }

func (r memLabels) Create(_ context.Context, l *domain.Label) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreateLabel == 0 {
		return fmt.Errorf("disk full")
	}
	if r.db.failCreateLabel > 0 {
		r.db.failCreateLabel--
	}
	l.ID = r.db.next()
	if l.Tick == "" {
		l.Tick = fmt.Sprintf("%0*d", domain.MintedTickDigits, l.ID)
	}
	for _, other := range r.db.labels {
		if other.Tick == l.Tick {
			return errors.Conflict("a label with this tick already exists")
		}
	}
	cp := *l
	r.db.labels[l.ID] = &cp
	return nil
}

func (r memLabels) Get(_ context.Context, id int64) (*domain.Label, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.labels[id]
	if !ok {
		return nil, errors.NotFound("label")
	}
	cp := *l
	return &cp, nil
}

func (r memLabels) GetByTick(_ context.Context, tick string) (*domain.Label, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, l := range r.db.labels {
		if l.Tick == tick {
			cp := *l
			return &cp, nil
		}
	}
	return nil, errors.NotFound("label")
}

func (r memLabels) ListByBatch(_ context.Context, batchID int64) ([]*domain.Label, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Label
	for _, id := range sortedKeys(r.db.labels) {
		if l := r.db.labels[id]; l.BatchID == batchID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memLabels) Transition(_ context.Context, id int64, from, to domain.LabelStatus, unloaded *time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.labels[id]
	if !ok || l.Status != from {
		return false, nil
	}
	l.Status = to
	l.Unloaded = unloaded
	return true, nil
}

func (r memLabels) CancelInStock(_ context.Context, batchID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, l := range r.db.labels {
		if l.BatchID == batchID && l.Status == domain.LabelInStock {
			l.Status = domain.LabelCancelled
			n++
		}
	}
	return n, nil
}

func inWindow(t *time.Time, from, to time.Time) bool {
	return t != nil && !t.Before(from) && t.Before(to)
}

func (r memLabels) Movements(_ context.Context, from, to time.Time) ([]*domain.LabelMovement, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	moved := map[int64]bool{}
	for _, l := range r.db.labels {
		if l.Status == domain.LabelUsed && inWindow(l.Unloaded, from, to) {
			moved[r.db.batches[l.BatchID].PackageID] = true
		}
	}

	var out []*domain.LabelMovement
	for _, id := range sortedKeys(r.db.labels) {
		l := r.db.labels[id]
		b := r.db.batches[l.BatchID]
		if l.Status == domain.LabelCancelled || !moved[b.PackageID] {
			continue
		}
		out = append(out, &domain.LabelMovement{
			LabelID:    l.ID,
			PackageID:  b.PackageID,
			BatchID:    b.ID,
			Expiration: b.Expiration,
			Loaded:     l.Loaded,
			Unloaded:   l.Unloaded,
			Status:     l.Status,
		})
	}
	return out, nil
}

func (r memLabels) Consumption(_ context.Context, from, to time.Time) ([]*domain.Consumption, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Consumption
	for _, pkgID := range sortedKeys(r.db.packages.records) {
		if !r.db.packages.records[pkgID].Enable {
			continue
		}
		c := &domain.Consumption{PackageID: pkgID}
		for _, l := range r.db.labels {
			if r.db.batches[l.BatchID].PackageID == pkgID && l.Status == domain.LabelUsed && inWindow(l.Unloaded, from, to) {
				c.Unloaded++
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// ledger

type memLedger struct{ db *memDB }

func (r memLedger) batchStock(batchID int64) int {
	n := 0
	for _, l := range r.db.labels {
		if l.BatchID == batchID && l.Status == domain.LabelInStock {
			n++
		}
	}
	return n
}

func (r memLedger) packageStock(packageID int64) int {
	n := 0
	for _, b := range r.db.batches {
		if b.PackageID == packageID && b.Status == domain.BatchActive {
			n += r.batchStock(b.ID)
		}
	}
	return n
}

func (r memLedger) StockOf(_ context.Context, packageID int64) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.packageStock(packageID), nil
}

func (r memLedger) StockByPackage(_ context.Context) ([]*domain.PackageStock, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.PackageStock
	for _, id := range sortedKeys(r.db.packages.records) {
		p := r.db.packages.records[id]
		if !p.Enable {
			continue
		}
		out = append(out, &domain.PackageStock{
			PackageID: id,
			Packaging: p.Packaging,
			Reorder:   p.Reorder,
			Stock:     r.packageStock(id),
		})
	}
	return out, nil
}

func (r memLedger) expiring(from, until *time.Time) []*domain.BatchExpiry {
	var out []*domain.BatchExpiry
	for _, id := range sortedKeys(r.db.batches) {
		b := r.db.batches[id]
		if b.Status != domain.BatchActive || b.Expiration == nil {
			continue
		}
		if (from != nil && b.Expiration.Before(*from)) || (until != nil && b.Expiration.After(*until)) {
			continue
		}
		stock := r.batchStock(id)
		if stock == 0 {
			continue
		}
		out = append(out, &domain.BatchExpiry{
			BatchID:    id,
			PackageID:  b.PackageID,
			Lot:        b.Lot,
			Expiration: *b.Expiration,
			Stock:      stock,
		})
	}
	return out
}

func (r memLedger) ExpiringBatches(_ context.Context, today, until time.Time) ([]*domain.BatchExpiry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.expiring(&today, &until), nil
}

func (r memLedger) ExpiredBatches(_ context.Context, today time.Time) ([]*domain.BatchExpiry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	yesterday := today.AddDate(0, 0, -1)
	return r.expiring(nil, &yesterday), nil
}

// settings

type memSettings struct{ db *memDB }

func (r memSettings) Get(_ context.Context, name, def string) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if v, ok := r.db.settings[name]; ok {
		return v, nil
	}
	return def, nil
}

func (r memSettings) Set(_ context.Context, name, value string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.settings[name] = value
	return nil
}

func (r memSettings) List(_ context.Context) ([]*domain.Setting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	names := make([]string, 0, len(r.db.settings))
	for name := range r.db.settings {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*domain.Setting, 0, len(names))
	for i, name := range names {
		out = append(out, &domain.Setting{ID: int64(i + 1), Name: name, Value: r.db.settings[name]})
	}
	return out, nil
}

// harness

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	engine *Engine
	db     *memDB
	bus    *events.Bus
	clock  *testClock
	seen   []events.Event
}

func testStockConfig() config.StockConfig {
	return config.StockConfig{
		ExpiringDays:  30,
		AnalysisDays:  30,
		ScanSchedule:  "0 6 * * *",
		RequestPrefix: "RQ",
		DeletePolicy:  config.DeleteDraftOnly,
	}
}

func newHarness(t *testing.T, mutate ...func(*config.StockConfig)) *harness {
	t.Helper()

	cfg := testStockConfig()
	for _, m := range mutate {
		m(&cfg)
	}

	h := &harness{
		db:    newMemDB(),
		bus:   events.NewBus(logger.Nop()),
		clock: &testClock{t: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)},
	}
	for _, kind := range events.Kinds() {
		h.bus.Subscribe(kind, func(_ context.Context, ev events.Event) error {
			h.seen = append(h.seen, ev)
			return nil
		})
	}
	h.engine = NewEngine(h.db.stores(), h.bus, cfg, logger.Nop(), WithClock(h.clock.now))
	return h
}

// seedPackage creates an enabled product, supplier and package
func (h *harness) seedPackage(t *testing.T, ppl, lpu int, ordering domain.Ordering, reorder int) int64 {
	t.Helper()
	ctx := context.Background()

	productID, _ := h.db.products.Create(ctx, &domain.Product{
		Reference: fmt.Sprintf("P-%d", h.db.seq+1), Description: fmt.Sprintf("Product %d", h.db.seq+1), Enable: true,
	})
	supplierID, _ := h.db.suppliers.Create(ctx, &domain.Supplier{Reference: "S", Description: "Supplier", Enable: true})
	packageID, _ := h.db.packages.Create(ctx, &domain.Package{
		ProductID:      productID,
		SupplierID:     supplierID,
		Packaging:      "box",
		Ordering:       ordering,
		PiecesPerLabel: ppl,
		LabelsPerUnit:  lpu,
		Reorder:        reorder,
		Price:          decimal.RequireFromString("12.50"),
		Enable:         true,
	})
	return packageID
}

// seedBatch creates an active batch directly in the store
func (h *harness) seedBatch(t *testing.T, packageID int64, lot string, expiration time.Time) int64 {
	t.Helper()
	exp := dateOf(expiration)
	b := &domain.Batch{PackageID: packageID, Lot: lot, Expiration: &exp, Status: domain.BatchActive}
	_ = memBatches{h.db}.Create(context.Background(), b)
	return b.ID
}

func (h *harness) kinds() []events.Kind {
	out := make([]events.Kind, 0, len(h.seen))
	for _, ev := range h.seen {
		out = append(out, ev.Kind())
	}
	return out
}
