package service

import (
	"context"
	"strings"
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// LabelService moves labels between InStock, Used and Cancelled
type LabelService struct {
	*core
	logger *logger.Logger
}

// notInStock tells an already used label from a cancelled one
func notInStock(status domain.LabelStatus) error {
	switch status {
	case domain.LabelUsed:
		return errors.Invalid(domain.CodeLabelUnloaded, "label is already unloaded")
	case domain.LabelCancelled:
		return errors.Invalid(domain.CodeLabelCancelled, "label is cancelled")
	default:
		return nil
	}
}

// Unload consumes an in-stock label
func (s *LabelService) Unload(ctx context.Context, labelID int64) (*domain.Label, error) {
	label, err := s.st.Labels.Get(ctx, labelID)
	if err != nil {
		return nil, storeError(s.logger, "get label", err, ids("label_id", labelID))
	}
	return s.unload(ctx, label)
}

// UnloadByTick consumes the in-stock label carrying tick
func (s *LabelService) UnloadByTick(ctx context.Context, tick string) (*domain.Label, error) {
	label, err := s.st.Labels.GetByTick(ctx, strings.TrimSpace(tick))
	if err != nil {
		return nil, storeError(s.logger, "get label by tick", err, ids("tick", tick))
	}
	return s.unload(ctx, label)
}

func (s *LabelService) unload(ctx context.Context, label *domain.Label) (*domain.Label, error) {
	if err := notInStock(label.Status); err != nil {
		return nil, err
	}

	unloaded := s.now()
	packageID, err := s.move(ctx, label, domain.LabelInStock, domain.LabelUsed, &unloaded)
	if err != nil {
		return nil, storeError(s.logger, "unload label", err, ids("label_id", label.ID))
	}

	label.Status = domain.LabelUsed
	label.Unloaded = &unloaded

	s.publish(ctx,
		events.LabelUnloadedEvent{
			LabelID:   label.ID,
			BatchID:   label.BatchID,
			PackageID: packageID,
			Tick:      label.Tick,
			Unloaded:  unloaded,
		},
		events.StockChangedEvent{PackageIDs: []int64{packageID}, Reason: "unload"},
	)
	return label, nil
}

// Cancel takes an in-stock label out of stock without consuming it
func (s *LabelService) Cancel(ctx context.Context, labelID int64) (*domain.Label, error) {
	label, err := s.st.Labels.Get(ctx, labelID)
	if err != nil {
		return nil, storeError(s.logger, "get label", err, ids("label_id", labelID))
	}
	if err := notInStock(label.Status); err != nil {
		return nil, err
	}

	packageID, err := s.move(ctx, label, domain.LabelInStock, domain.LabelCancelled, label.Unloaded)
	if err != nil {
		return nil, storeError(s.logger, "cancel label", err, ids("label_id", labelID))
	}

	label.Status = domain.LabelCancelled
	s.publish(ctx, events.StockChangedEvent{PackageIDs: []int64{packageID}, Reason: "cancel"})
	return label, nil
}

// Restore puts a used or cancelled label back in stock and clears its unload time.
// A label of a closed batch is restored but does not count toward stock.
func (s *LabelService) Restore(ctx context.Context, labelID int64) (*domain.Label, error) {
	label, err := s.st.Labels.Get(ctx, labelID)
	if err != nil {
		return nil, storeError(s.logger, "get label", err, ids("label_id", labelID))
	}
	if label.Status == domain.LabelInStock {
		return nil, errors.Invalid(domain.CodeLabelInStock, "label is already in stock")
	}

	packageID, err := s.move(ctx, label, label.Status, domain.LabelInStock, nil)
	if err != nil {
		return nil, storeError(s.logger, "restore label", err, ids("label_id", labelID))
	}

	s.logger.Info().Int64("label_id", labelID).Str("from", label.Status.String()).Msg("label restored")
	label.Status = domain.LabelInStock
	label.Unloaded = nil
	s.publish(ctx, events.StockChangedEvent{PackageIDs: []int64{packageID}, Reason: "restore"})
	return label, nil
}

func (s *LabelService) move(ctx context.Context, label *domain.Label, from, to domain.LabelStatus, unloaded *time.Time) (int64, error) {
	var packageID int64
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.transition(ctx, label.ID, from, to, unloaded); err != nil {
			return err
		}
		batch, err := s.st.Batches.Get(ctx, label.BatchID)
		if err != nil {
			return err
		}
		packageID = batch.PackageID
		return nil
	})
	return packageID, err
}

// transition applies a conditional status change. When another caller moved
// the label first, the error reflects the status it holds now.
func (s *LabelService) transition(ctx context.Context, labelID int64, from, to domain.LabelStatus, unloaded *time.Time) error {
	ok, err := s.st.Labels.Transition(ctx, labelID, from, to, unloaded)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	current, err := s.st.Labels.Get(ctx, labelID)
	if err != nil {
		return err
	}
	if current.Status == domain.LabelInStock {
		return errors.Invalid(domain.CodeLabelInStock, "label is already in stock")
	}
	if err := notInStock(current.Status); err != nil {
		return err
	}
	return errors.Conflict("label changed concurrently")
}

// Get loads a label
func (s *LabelService) Get(ctx context.Context, labelID int64) (*domain.Label, error) {
	label, err := s.st.Labels.Get(ctx, labelID)
	if err != nil {
		return nil, storeError(s.logger, "get label", err, ids("label_id", labelID))
	}
	return label, nil
}

// GetByTick loads the label carrying tick
func (s *LabelService) GetByTick(ctx context.Context, tick string) (*domain.Label, error) {
	label, err := s.st.Labels.GetByTick(ctx, strings.TrimSpace(tick))
	if err != nil {
		return nil, storeError(s.logger, "get label by tick", err, ids("tick", tick))
	}
	return label, nil
}

// ListByBatch returns every label of a batch
func (s *LabelService) ListByBatch(ctx context.Context, batchID int64) ([]*domain.Label, error) {
	if _, err := s.st.Batches.Get(ctx, batchID); err != nil {
		return nil, storeError(s.logger, "get batch", err, ids("batch_id", batchID))
	}

	labels, err := s.st.Labels.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, storeError(s.logger, "list labels", err, ids("batch_id", batchID))
	}
	return labels, nil
}
