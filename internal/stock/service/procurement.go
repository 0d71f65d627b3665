package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/internal/stock/events"
	"github.com/labstock/labstock-backend/pkg/config"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// SettingRequestPrefix overrides the configured request reference prefix
const SettingRequestPrefix = "request_prefix"

// ProcurementService drives the Request/Item state machine
type ProcurementService struct {
	*core
	logger *logger.Logger
}

// RequestDetail is a request with the delivery progress of its items
type RequestDetail struct {
	*domain.Request
	Items []*domain.ItemProgress `json:"items"`
}

// CreateRequest opens a new draft request dated today with the next free reference
func (s *ProcurementService) CreateRequest(ctx context.Context) (*domain.Request, error) {
	req := &domain.Request{
		Issued: s.today(),
		Status: domain.RequestDraft,
	}

	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		prefix, err := s.st.Settings.Get(ctx, SettingRequestPrefix, s.cfg.RequestPrefix)
		if err != nil {
			return err
		}
		stem := fmt.Sprintf("%s%d-", strings.TrimSpace(prefix), req.Issued.Year())

		seq, err := s.st.Requests.NextSequence(ctx, stem)
		if err != nil {
			return err
		}
		req.Reference = fmt.Sprintf("%s%04d", stem, seq)

		return s.st.Requests.Create(ctx, req)
	})
	if err != nil {
		return nil, storeError(s.logger, "create request", err, nil)
	}

	s.logger.Info().Int64("request_id", req.ID).Str("reference", req.Reference).Msg("request created")
	s.publish(ctx, events.RequestChangedEvent{RequestID: req.ID, Status: req.Status})
	return req, nil
}

// GetRequest loads a request with its item progress
func (s *ProcurementService) GetRequest(ctx context.Context, id int64) (*RequestDetail, error) {
	req, err := s.st.Requests.Get(ctx, id)
	if err != nil {
		return nil, storeError(s.logger, "get request", err, ids("request_id", id))
	}

	progress, err := s.st.Items.Progress(ctx, id)
	if err != nil {
		return nil, storeError(s.logger, "request progress", err, ids("request_id", id))
	}

	return &RequestDetail{Request: req, Items: progress}, nil
}

// ListRequests returns requests, optionally only those in one status
func (s *ProcurementService) ListRequests(ctx context.Context, status *domain.RequestStatus) ([]*domain.Request, error) {
	requests, err := s.st.Requests.List(ctx, status)
	if err != nil {
		return nil, storeError(s.logger, "list requests", err, nil)
	}
	return requests, nil
}

// ListItems returns every item of a request, whatever its status
func (s *ProcurementService) ListItems(ctx context.Context, requestID int64) ([]*domain.Item, error) {
	if _, err := s.st.Requests.Get(ctx, requestID); err != nil {
		return nil, storeError(s.logger, "get request", err, ids("request_id", requestID))
	}

	items, err := s.st.Items.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, storeError(s.logger, "list items", err, ids("request_id", requestID))
	}
	return items, nil
}

// AddItem orders quantity of a package on a draft request. An active item
// for the same package absorbs the quantity instead of a second line.
func (s *ProcurementService) AddItem(ctx context.Context, requestID, packageID int64, quantity int) (*domain.Item, error) {
	if quantity < 1 {
		return nil, errors.Invalid(domain.CodeQuantityInvalid, "quantity must be at least 1")
	}

	var item *domain.Item
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.draftRequest(ctx, requestID); err != nil {
			return err
		}
		if err := s.orderablePackage(ctx, packageID); err != nil {
			return err
		}

		existing, err := s.st.Items.FindActiveByPackage(ctx, requestID, packageID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Quantity += quantity
			item = existing
			return s.st.Items.Update(ctx, existing)
		}

		item = &domain.Item{
			RequestID: requestID,
			PackageID: packageID,
			Quantity:  quantity,
			Status:    domain.ItemActive,
		}
		return s.st.Items.Create(ctx, item)
	})
	if err != nil {
		return nil, storeError(s.logger, "add item", err, ids("request_id", requestID, "package_id", packageID))
	}

	s.publish(ctx, events.RequestChangedEvent{RequestID: requestID, Status: domain.RequestDraft})
	return item, nil
}

// UpdateItem changes the package or quantity of an active item on a draft request
func (s *ProcurementService) UpdateItem(ctx context.Context, itemID, packageID int64, quantity int) (*domain.Item, error) {
	if quantity < 1 {
		return nil, errors.Invalid(domain.CodeQuantityInvalid, "quantity must be at least 1")
	}

	var item *domain.Item
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.st.Items.Get(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := s.draftRequest(ctx, item.RequestID); err != nil {
			return err
		}
		if item.Status != domain.ItemActive {
			return errors.Invalid(domain.CodeItemNotActive, "only active items can be edited")
		}

		if packageID != item.PackageID {
			if err := s.orderablePackage(ctx, packageID); err != nil {
				return err
			}
			other, err := s.st.Items.FindActiveByPackage(ctx, item.RequestID, packageID)
			if err != nil {
				return err
			}
			if other != nil && other.ID != item.ID {
				return errors.Invalid(domain.CodeDuplicatePackage, "the request already orders this package")
			}
		}

		item.PackageID = packageID
		item.Quantity = quantity
		return s.st.Items.Update(ctx, item)
	})
	if err != nil {
		return nil, storeError(s.logger, "update item", err, ids("item_id", itemID))
	}

	s.publish(ctx, events.RequestChangedEvent{RequestID: item.RequestID, Status: domain.RequestDraft})
	return item, nil
}

// RemoveItem marks an active item of a draft request as removed
func (s *ProcurementService) RemoveItem(ctx context.Context, itemID int64) error {
	var requestID int64
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		item, err := s.st.Items.Get(ctx, itemID)
		if err != nil {
			return err
		}
		requestID = item.RequestID
		if _, err := s.draftRequest(ctx, item.RequestID); err != nil {
			return err
		}
		if item.Status != domain.ItemActive {
			return errors.Invalid(domain.CodeItemNotActive, "only active items can be removed")
		}

		item.Status = domain.ItemRemoved
		return s.st.Items.Update(ctx, item)
	})
	if err != nil {
		return storeError(s.logger, "remove item", err, ids("item_id", itemID))
	}

	s.publish(ctx, events.RequestChangedEvent{RequestID: requestID, Status: domain.RequestDraft})
	return nil
}

// SendRequest moves a draft request with at least one active item to Sent
func (s *ProcurementService) SendRequest(ctx context.Context, requestID int64) (*domain.Request, error) {
	var req *domain.Request
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.draftRequest(ctx, requestID)
		if err != nil {
			return err
		}

		items, err := s.st.Items.ListByRequest(ctx, requestID)
		if err != nil {
			return err
		}
		active := 0
		for _, item := range items {
			if item.Status == domain.ItemActive {
				active++
			}
		}
		if active == 0 {
			return errors.Invalid(domain.CodeNoActiveItems, "a request needs at least one active item to be sent")
		}

		req.Status = domain.RequestSent
		return s.st.Requests.SetStatus(ctx, requestID, domain.RequestSent)
	})
	if err != nil {
		return nil, storeError(s.logger, "send request", err, ids("request_id", requestID))
	}

	s.logger.Info().Int64("request_id", requestID).Msg("request sent")
	s.publish(ctx, events.RequestChangedEvent{RequestID: requestID, Status: domain.RequestSent})
	return req, nil
}

// CancelItem cancels an active item of a sent request with a mandatory note.
// The request closes when nothing else is awaited.
func (s *ProcurementService) CancelItem(ctx context.Context, requestID, itemID int64, note string) (*domain.Item, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, errors.Invalid(domain.CodeNoteRequired, "a cancellation note is required")
	}

	var (
		item   *domain.Item
		closed bool
	)
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		req, err := s.st.Requests.Get(ctx, requestID)
		if err != nil {
			return err
		}
		item, err = s.st.Items.Get(ctx, itemID)
		if err != nil {
			return err
		}
		if item.RequestID != requestID {
			return errors.Invalid(domain.CodeItemWrongRequest, "item does not belong to the request")
		}
		switch item.Status {
		case domain.ItemCancelled:
			return errors.Invalid(domain.CodeItemCancelled, "item is already cancelled")
		case domain.ItemRemoved:
			return errors.Invalid(domain.CodeItemNotActive, "item was removed")
		}
		if req.Status != domain.RequestSent {
			return errors.Invalid(domain.CodeRequestNotSent, "items can only be cancelled on a sent request")
		}

		item.Status = domain.ItemCancelled
		item.Note = &note
		if err := s.st.Items.Update(ctx, item); err != nil {
			return err
		}

		closed, err = s.closeIfFulfilled(ctx, requestID)
		return err
	})
	if err != nil {
		return nil, storeError(s.logger, "cancel item", err, ids("request_id", requestID, "item_id", itemID))
	}

	status := domain.RequestSent
	if closed {
		status = domain.RequestClosed
	}
	s.publish(ctx, events.RequestChangedEvent{RequestID: requestID, Status: status})
	return item, nil
}

// CloseRequest closes a sent request by hand; further deliveries are refused
func (s *ProcurementService) CloseRequest(ctx context.Context, requestID int64) (*domain.Request, error) {
	var req *domain.Request
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.st.Requests.Get(ctx, requestID)
		if err != nil {
			return err
		}
		switch req.Status {
		case domain.RequestClosed:
			return errors.Invalid(domain.CodeRequestClosed, "request is already closed")
		case domain.RequestDraft:
			return errors.Invalid(domain.CodeRequestNotSent, "a draft request cannot be closed")
		}

		req.Status = domain.RequestClosed
		return s.st.Requests.SetStatus(ctx, requestID, domain.RequestClosed)
	})
	if err != nil {
		return nil, storeError(s.logger, "close request", err, ids("request_id", requestID))
	}

	s.logger.Info().Int64("request_id", requestID).Msg("request closed")
	s.publish(ctx, events.RequestChangedEvent{RequestID: requestID, Status: domain.RequestClosed})
	return req, nil
}

// DeleteRequest deletes a request and its items when the delete policy allows it.
// A request with recorded deliveries is never deleted.
func (s *ProcurementService) DeleteRequest(ctx context.Context, requestID int64) error {
	var req *domain.Request
	err := s.st.Tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.st.Requests.Get(ctx, requestID)
		if err != nil {
			return err
		}
		if s.cfg.DeletePolicy != config.DeleteAnyStatus && req.Status != domain.RequestDraft {
			return errors.Invalid(domain.CodeDeleteNotAllowed, "only draft requests can be deleted")
		}

		delivered, err := s.st.Requests.HasDeliveries(ctx, requestID)
		if err != nil {
			return err
		}
		if delivered {
			return errors.Invalid(domain.CodeRequestHasDelivery, "a request with deliveries cannot be deleted")
		}

		return s.st.Requests.Delete(ctx, requestID)
	})
	if err != nil {
		return storeError(s.logger, "delete request", err, ids("request_id", requestID))
	}

	s.logger.Info().Int64("request_id", requestID).Str("reference", req.Reference).Msg("request deleted")
	s.publish(ctx, events.RequestChangedEvent{RequestID: requestID, Status: req.Status})
	return nil
}

// Progress reports ordered, delivered and remaining quantities per item
func (s *ProcurementService) Progress(ctx context.Context, requestID int64) ([]*domain.ItemProgress, error) {
	if _, err := s.st.Requests.Get(ctx, requestID); err != nil {
		return nil, storeError(s.logger, "get request", err, ids("request_id", requestID))
	}

	progress, err := s.st.Items.Progress(ctx, requestID)
	if err != nil {
		return nil, storeError(s.logger, "request progress", err, ids("request_id", requestID))
	}
	return progress, nil
}

func (s *ProcurementService) draftRequest(ctx context.Context, requestID int64) (*domain.Request, error) {
	req, err := s.st.Requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestDraft {
		return nil, errors.Invalid(domain.CodeRequestNotDraft, "request is not a draft")
	}
	return req, nil
}

func (s *ProcurementService) orderablePackage(ctx context.Context, packageID int64) error {
	pkg, err := s.st.Packages.Get(ctx, packageID)
	if err != nil {
		return err
	}
	if !pkg.Enable {
		return errors.Invalid(domain.CodePackageDisabled, "package is disabled")
	}
	return nil
}
