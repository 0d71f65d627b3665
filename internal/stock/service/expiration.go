package service

import (
	"context"
	"time"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// ExpirationService writes off batches and runs the expiry scan
type ExpirationService struct {
	*core
	ledger *LedgerService
	logger *logger.Logger
}

// WriteOff is the outcome of writing off one batch
type WriteOff struct {
	Batch     *domain.Batch `json:"batch"`
	Cancelled int64         `json:"cancelled_labels"`
}

// ScanReport is the outcome of one expiry scan
type ScanReport struct {
	At         time.Time             `json:"at"`
	Expiring   []*domain.BatchExpiry `json:"expiring"`
	Expired    []*domain.BatchExpiry `json:"expired"`
	WrittenOff []*WriteOff           `json:"written_off,omitempty"`
}

// WriteOffBatch cancels every in-stock label of an active batch and closes it.
// The batch never reopens; its labels stay individually restorable.
func (s *ExpirationService) WriteOffBatch(ctx context.Context, batchID int64) (*WriteOff, error) {
	out := &WriteOff{}
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		batch, err := s.st.Batches.Get(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.Status != domain.BatchActive {
			return errors.Invalid(domain.CodeBatchClosed, "batch is already closed")
		}

		out.Cancelled, err = s.st.Labels.CancelInStock(ctx, batchID)
		if err != nil {
			return err
		}
		if err := s.st.Batches.SetStatus(ctx, batchID, domain.BatchClosed); err != nil {
			return err
		}

		batch.Status = domain.BatchClosed
		out.Batch = batch
		return nil
	})
	if err != nil {
		return nil, storeError(s.logger, "write off batch", err, ids("batch_id", batchID))
	}

	s.logger.Info().
		Int64("batch_id", batchID).
		Str("lot", out.Batch.Lot).
		Int64("cancelled_labels", out.Cancelled).
		Msg("batch written off")

	s.publish(ctx,
		events.BatchCancelledEvent{
			BatchID:   batchID,
			PackageID: out.Batch.PackageID,
			Lot:       out.Batch.Lot,
			Cancelled: out.Cancelled,
		},
		events.StockChangedEvent{PackageIDs: []int64{out.Batch.PackageID}, Reason: "write_off"},
	)
	return out, nil
}

// Scan collects expiring and expired batches and, when auto write-off is on,
// writes off every expired one. A failed write-off is logged and skipped.
func (s *ExpirationService) Scan(ctx context.Context) (*ScanReport, error) {
	report := &ScanReport{At: s.now()}

	var err error
	report.Expiring, err = s.ledger.ExpiringBatches(ctx, s.cfg.ExpiringDays)
	if err != nil {
		return nil, err
	}
	report.Expired, err = s.ledger.ExpiredBatches(ctx)
	if err != nil {
		return nil, err
	}

	if s.cfg.AutoWriteOff {
		for _, expired := range report.Expired {
			wo, err := s.WriteOffBatch(ctx, expired.BatchID)
			if err != nil {
				s.logger.Error().Err(err).Int64("batch_id", expired.BatchID).Msg("automatic write-off failed")
				continue
			}
			report.WrittenOff = append(report.WrittenOff, wo)
		}
	}

	s.logger.Info().
		Int("expiring", len(report.Expiring)).
		Int("expired", len(report.Expired)).
		Int("written_off", len(report.WrittenOff)).
		Msg("expiry scan completed")
	return report, nil
}
