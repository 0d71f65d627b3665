package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// FulfillmentService records deliveries and mints labels
type FulfillmentService struct {
	*core
	logger *logger.Logger
}

// NewBatch names a batch to create with the delivery
type NewBatch struct {
	Lot        string    `json:"lot"`
	Expiration time.Time `json:"expiration" validate:"required"`
}

// DeliveryInput is the goods received against one item. Exactly one of
// BatchID and NewBatch selects the batch. A nil LabelCount mints the
// suggested number of labels.
type DeliveryInput struct {
	ItemID     int64      `json:"item_id" validate:"required"`
	Quantity   int        `json:"quantity"`
	BatchID    *int64     `json:"batch_id,omitempty"`
	NewBatch   *NewBatch  `json:"new_batch,omitempty"`
	DDT        string     `json:"ddt"`
	Delivered  *time.Time `json:"delivered,omitempty"`
	LabelCount *int       `json:"label_count,omitempty"`
}

// parseDay reads a calendar date, falling back to a full timestamp
func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither YYYY-MM-DD nor RFC 3339", raw)
	}
	return t, nil
}

// UnmarshalJSON accepts the expiration as YYYY-MM-DD or RFC 3339.
func (b *NewBatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lot        string `json:"lot"`
		Expiration string `json:"expiration"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Lot = raw.Lot
	b.Expiration = time.Time{}
	if raw.Expiration == "" {
		return nil
	}
	t, err := parseDay(raw.Expiration)
	if err != nil {
		return err
	}
	b.Expiration = t
	return nil
}

// UnmarshalJSON accepts the delivered date as YYYY-MM-DD or RFC 3339.
func (in *DeliveryInput) UnmarshalJSON(data []byte) error {
	type plain DeliveryInput
	aux := struct {
		*plain
		Delivered *string `json:"delivered,omitempty"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	in.Delivered = nil
	if aux.Delivered == nil || *aux.Delivered == "" {
		return nil
	}
	t, err := parseDay(*aux.Delivered)
	if err != nil {
		return err
	}
	in.Delivered = &t
	return nil
}

// DeliveryResult lists what a delivery created or touched
type DeliveryResult struct {
	Batch         *domain.Batch    `json:"batch"`
	BatchCreated  bool             `json:"batch_created"`
	Delivery      *domain.Delivery `json:"delivery"`
	Labels        []*domain.Label  `json:"labels"`
	RequestClosed bool             `json:"request_closed"`
}

// RecordDelivery checks every precondition, then creates the batch when new,
// the delivery and its labels in one transaction, and closes the request once
// all of its active items are delivered.
func (s *FulfillmentService) RecordDelivery(ctx context.Context, in DeliveryInput) (*DeliveryResult, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	result := &DeliveryResult{}
	var requestID int64
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		item, err := s.st.Items.Get(ctx, in.ItemID)
		if err != nil {
			return err
		}
		requestID = item.RequestID
		if item.Status != domain.ItemActive {
			return errors.Invalid(domain.CodeItemNotActive, "goods can only be received for an active item")
		}

		req, err := s.st.Requests.Get(ctx, item.RequestID)
		if err != nil {
			return err
		}
		switch req.Status {
		case domain.RequestClosed:
			return errors.Invalid(domain.CodeRequestClosed, "request is closed")
		case domain.RequestDraft:
			return errors.Invalid(domain.CodeRequestNotSent, "request has not been sent")
		}

		pkg, err := s.st.Packages.Get(ctx, item.PackageID)
		if err != nil {
			return err
		}

		delivered, err := s.st.Items.Delivered(ctx, item.ID)
		if err != nil {
			return err
		}
		if in.Quantity > item.Quantity-delivered {
			return errors.Invalid(domain.CodeQuantityExceeds, "quantity exceeds what remains to be delivered").
				WithDetails(map[string]string{"remaining": itoa(max(item.Quantity-delivered, 0))})
		}
		if pkg.PiecesPerLabel > 1 && in.Quantity%pkg.PiecesPerLabel != 0 {
			return errors.Invalid(domain.CodePiecesMultiple, "quantity must be a multiple of the pieces per label").
				WithDetails(map[string]string{"pieces_per_label": itoa(pkg.PiecesPerLabel)})
		}

		batch, err := s.resolveBatch(ctx, pkg.ID, in)
		if err != nil {
			return err
		}

		count := domain.SuggestLabels(pkg, in.Quantity)
		if in.LabelCount != nil {
			count = *in.LabelCount
		}
		if count < 1 {
			return errors.Invalid(domain.CodeLabelCountInvalid, "at least one label must be minted")
		}

		// every check passed; writes start here
		if batch.ID == 0 {
			if err := s.st.Batches.Create(ctx, batch); err != nil {
				return err
			}
			result.BatchCreated = true
		}
		result.Batch = batch

		deliveredOn := s.today()
		if in.Delivered != nil {
			deliveredOn = dateOf(*in.Delivered)
		}
		delivery := &domain.Delivery{
			ItemID:    item.ID,
			PackageID: pkg.ID,
			BatchID:   batch.ID,
			Quantity:  in.Quantity,
			DDT:       strings.TrimSpace(in.DDT),
			Delivered: deliveredOn,
			Status:    domain.DeliveryRecorded,
		}
		if err := s.st.Deliveries.Create(ctx, delivery); err != nil {
			return err
		}
		result.Delivery = delivery

		result.Labels, err = s.mint(ctx, batch.ID, count)
		if err != nil {
			return err
		}

		result.RequestClosed, err = s.closeIfFulfilled(ctx, item.RequestID)
		return err
	})
	if err != nil {
		return nil, storeError(s.logger, "record delivery", err, ids("item_id", in.ItemID))
	}

	s.logger.Info().
		Int64("delivery_id", result.Delivery.ID).
		Int64("batch_id", result.Batch.ID).
		Int("labels", len(result.Labels)).
		Bool("request_closed", result.RequestClosed).
		Msg("delivery recorded")

	s.publish(ctx, events.StockChangedEvent{PackageIDs: []int64{result.Batch.PackageID}, Reason: "delivery"})
	if result.RequestClosed {
		s.publish(ctx, events.RequestChangedEvent{RequestID: requestID, Status: domain.RequestClosed})
	}
	return result, nil
}

func (s *FulfillmentService) checkInput(in DeliveryInput) error {
	if in.Quantity < 1 {
		return errors.Invalid(domain.CodeQuantityInvalid, "quantity must be at least 1")
	}
	if in.BatchID == nil && in.NewBatch == nil {
		return errors.Invalid(domain.CodeBatchRequired, "select an existing batch or describe a new one")
	}
	if in.BatchID != nil && in.NewBatch != nil {
		return errors.Invalid(domain.CodeBatchAmbiguous, "select an existing batch or a new one, not both")
	}
	if in.NewBatch != nil {
		if strings.TrimSpace(in.NewBatch.Lot) == "" {
			return errors.Invalid(domain.CodeLotRequired, "a new batch needs a lot")
		}
		if !dateOf(in.NewBatch.Expiration).After(s.today()) {
			return errors.Invalid(domain.CodeExpirationNotFuture, "expiration must be in the future")
		}
	}
	if in.LabelCount != nil && *in.LabelCount < 1 {
		return errors.Invalid(domain.CodeLabelCountInvalid, "at least one label must be minted")
	}
	return nil
}

// resolveBatch returns the selected active batch, or an unsaved new one
func (s *FulfillmentService) resolveBatch(ctx context.Context, packageID int64, in DeliveryInput) (*domain.Batch, error) {
	if in.BatchID != nil {
		batch, err := s.st.Batches.Get(ctx, *in.BatchID)
		if err != nil {
			return nil, err
		}
		if batch.PackageID != packageID {
			return nil, errors.Invalid(domain.CodeBatchWrongPackage, "batch belongs to another package")
		}
		if batch.Status != domain.BatchActive {
			return nil, errors.Invalid(domain.CodeBatchClosed, "batch is closed")
		}
		return batch, nil
	}

	lot := strings.TrimSpace(in.NewBatch.Lot)
	expiration := dateOf(in.NewBatch.Expiration)
	existing, err := s.st.Batches.FindActive(ctx, packageID, lot, expiration)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Invalid(domain.CodeDuplicateBatch, "an active batch with this lot and expiration already exists").
			WithDetails(map[string]string{"batch_id": itoa64(existing.ID)})
	}

	return &domain.Batch{
		PackageID:  packageID,
		Lot:        lot,
		Expiration: &expiration,
		Status:     domain.BatchActive,
	}, nil
}

// mint creates count in-stock labels with fresh ticks
func (s *FulfillmentService) mint(ctx context.Context, batchID int64, count int) ([]*domain.Label, error) {
	loaded := s.now()
	labels := make([]*domain.Label, 0, count)
	for i := 0; i < count; i++ {
		label := &domain.Label{
			BatchID: batchID,
			Loaded:  loaded,
			Status:  domain.LabelInStock,
		}
		if err := s.st.Labels.Create(ctx, label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// LoadLabel mints one label against an active batch outside any delivery.
// An empty tick gets a generated one.
func (s *FulfillmentService) LoadLabel(ctx context.Context, batchID int64, tick string) (*domain.Label, error) {
	tick = strings.TrimSpace(tick)
	if domain.IsMintedTick(tick) {
		return nil, errors.Invalid(domain.CodeTickReserved, "twelve digit ticks are reserved for minted labels")
	}

	var label *domain.Label
	batch, err := s.loadInto(ctx, batchID, func(ctx context.Context) error {
		label = &domain.Label{
			BatchID: batchID,
			Tick:    tick,
			Loaded:  s.now(),
			Status:  domain.LabelInStock,
		}
		return s.st.Labels.Create(ctx, label)
	})
	if err != nil {
		return nil, storeError(s.logger, "load label", err, ids("batch_id", batchID))
	}

	s.publish(ctx, events.StockChangedEvent{PackageIDs: []int64{batch.PackageID}, Reason: "load"})
	return label, nil
}

// LoadLabels mints count labels against an active batch outside any delivery
func (s *FulfillmentService) LoadLabels(ctx context.Context, batchID int64, count int) ([]*domain.Label, error) {
	if count < 1 {
		return nil, errors.Invalid(domain.CodeLabelCountInvalid, "at least one label must be minted")
	}

	var labels []*domain.Label
	batch, err := s.loadInto(ctx, batchID, func(ctx context.Context) error {
		var err error
		labels, err = s.mint(ctx, batchID, count)
		return err
	})
	if err != nil {
		return nil, storeError(s.logger, "load labels", err, ids("batch_id", batchID, "count", count))
	}

	s.logger.Info().Int64("batch_id", batchID).Int("count", count).Msg("labels loaded")
	s.publish(ctx, events.StockChangedEvent{PackageIDs: []int64{batch.PackageID}, Reason: "load"})
	return labels, nil
}

func (s *FulfillmentService) loadInto(ctx context.Context, batchID int64, fn func(context.Context) error) (*domain.Batch, error) {
	var batch *domain.Batch
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		batch, err = s.st.Batches.Get(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.Status != domain.BatchActive {
			return errors.Invalid(domain.CodeBatchClosed, "labels cannot be loaded into a closed batch")
		}
		return fn(ctx)
	})
	return batch, err
}

// SuggestLabelCount proposes how many labels a delivered quantity needs
func (s *FulfillmentService) SuggestLabelCount(ctx context.Context, packageID int64, quantity int) (int, error) {
	if quantity < 1 {
		return 0, errors.Invalid(domain.CodeQuantityInvalid, "quantity must be at least 1")
	}

	pkg, err := s.st.Packages.Get(ctx, packageID)
	if err != nil {
		return 0, storeError(s.logger, "get package", err, ids("package_id", packageID))
	}
	return domain.SuggestLabels(pkg, quantity), nil
}

// ListDeliveries returns the deliveries recorded against a request
func (s *FulfillmentService) ListDeliveries(ctx context.Context, requestID int64) ([]*domain.Delivery, error) {
	if _, err := s.st.Requests.Get(ctx, requestID); err != nil {
		return nil, storeError(s.logger, "get request", err, ids("request_id", requestID))
	}

	deliveries, err := s.st.Deliveries.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, storeError(s.logger, "list deliveries", err, ids("request_id", requestID))
	}
	return deliveries, nil
}

// GetBatch loads a batch
func (s *FulfillmentService) GetBatch(ctx context.Context, batchID int64) (*domain.Batch, error) {
	batch, err := s.st.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, storeError(s.logger, "get batch", err, ids("batch_id", batchID))
	}
	return batch, nil
}

// ListBatches returns the batches of a package, earliest expiration first
func (s *FulfillmentService) ListBatches(ctx context.Context, packageID int64, activeOnly bool) ([]*domain.Batch, error) {
	batches, err := s.st.Batches.ListByPackage(ctx, packageID, activeOnly)
	if err != nil {
		return nil, storeError(s.logger, "list batches", err, ids("package_id", packageID))
	}
	return batches, nil
}
