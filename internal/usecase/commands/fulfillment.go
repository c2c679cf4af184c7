package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/domain/order"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/pkg/errs"
	"giftcode-market/internal/usecase/shared"
)

var (
	ErrOrderItemNotFound   = errs.New("order item not found")
	ErrOrderNotAllocatable = errs.New("order not in an allocatable state")
	ErrNotStoreSeller      = errs.New("item does not belong to the seller's store")
)

type AllocationResult struct {
	OrderID          uuid.UUID
	DeliveredCodes   int
	AffectedProducts []uuid.UUID
	// AlreadyDelivered is set when a redelivered event found the codes
	// in place and nothing was consumed.
	AlreadyDelivered bool
}

type FulfillmentCommands interface {
	// AllocateOrder claims pool codes for every instant line item of the
	// order in one transaction. Either all items get their full quantity
	// or nothing is consumed. Safe to call again for the same order.
	AllocateOrder(ctx context.Context, orderID uuid.UUID) (*AllocationResult, error)
	// AcknowledgeFulfillment records the seller's confirmation that a
	// manually delivered line item has been handed over.
	AcknowledgeFulfillment(ctx context.Context, orderItemID, sellerUserID uuid.UUID, sellerStoreID *uuid.UUID, isAdmin bool) error
}

type fulfillmentCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewFulfillmentCommands(uow shared.UnitOfWork, clock clock.Clock) FulfillmentCommands {
	return &fulfillmentCommandsImpl{
		uow:   uow,
		clock: clock,
	}
}

func (f *fulfillmentCommandsImpl) AllocateOrder(ctx context.Context, orderID uuid.UUID) (*AllocationResult, error) {
	now := f.clock.Now()
	result := &AllocationResult{OrderID: orderID}

	err := f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().OrderByID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		orderEntity, err := rehydrateOrder(snap)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		switch orderEntity.Status() {
		case order.StatusCodeDelivered, order.StatusCompleted:
			// At-least-once delivery of the triggering event
			result.AlreadyDelivered = true
			return nil
		case order.StatusPending, order.StatusPaymentVerified, order.StatusProcessing:
		default:
			return ErrOrderNotAllocatable
		}

		if !orderEntity.HasInstantItems() {
			return nil
		}

		var records []shared.DeliveredCodeRecord
		seen := make(map[uuid.UUID]bool)
		for _, item := range orderEntity.InstantItems() {
			existing, exErr := tx.Reads().DeliveredCodesByOrderItem(ctx, item.ID())
			if exErr != nil {
				return errs.Mark(exErr, ErrDatabaseOperationFailed)
			}
			if len(existing) >= item.Quantity() {
				// Delivery for this item already committed earlier
				continue
			}

			claimed, clErr := tx.CodePool().ClaimCodes(ctx, tx.DB(), item.ProductID(), item.ID(), int32(item.Quantity()), now)
			if clErr != nil {
				return errs.Mark(clErr, ErrDatabaseOperationFailed)
			}
			if len(claimed) < item.Quantity() {
				// Rolls back every claim made for this order
				return &codepool.InsufficientStockError{
					ProductID: item.ProductID(),
					Requested: item.Quantity(),
					Available: len(claimed),
				}
			}

			for _, rec := range claimed {
				records = append(records, shared.DeliveredCodeRecord{
					ID:          uuid.New(),
					CodeID:      rec.ID,
					Code:        rec.Code,
					OrderID:     orderID,
					OrderItemID: item.ID(),
					UserID:      orderEntity.UserID(),
					DeliveredAt: now,
				})
			}
			if !seen[item.ProductID()] {
				seen[item.ProductID()] = true
				result.AffectedProducts = append(result.AffectedProducts, item.ProductID())
			}
		}

		if len(records) > 0 {
			if err := tx.DeliveredCodes().CreateBatch(ctx, tx.DB(), records); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}

		if err := orderEntity.MarkCodesDelivered(now); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}
		if orderEntity.AllItemsSatisfied() {
			if err := orderEntity.Complete(now); err != nil {
				return errs.Mark(err, ErrInvalidTransition)
			}
		}
		if err := tx.Orders().UpdateStatus(ctx, tx.DB(), orderEntity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		for _, productID := range result.AffectedProducts {
			if err := tx.CodePool().SyncProductAvailability(ctx, tx.DB(), productID); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}

		result.DeliveredCodes = len(records)
		return enqueueOrderEvent(ctx, tx, now, "order.codes_delivered", orderID, string(orderEntity.Status()))
	})
	if err != nil {
		var stockErr *codepool.InsufficientStockError
		if errors.As(err, &stockErr) {
			f.refreshShortfall(ctx, stockErr)
			return nil, stockErr
		}
		return nil, err
	}
	return result, nil
}

// refreshShortfall replaces the claim-time count with a fresh one. The
// failing transaction saw the pool through row locks held by competing
// claims, so its number may already be stale by the time the caller
// reads it.
func (f *fulfillmentCommandsImpl) refreshShortfall(ctx context.Context, stockErr *codepool.InsufficientStockError) {
	err := f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, countErr := tx.CodePool().CountAvailable(ctx, tx.DB(), stockErr.ProductID)
		if countErr != nil {
			return countErr
		}
		stockErr.Available = int(n)
		return nil
	})
	if err != nil {
		// The claim-time figure still stands
		slog.Warn("shortfall recount failed", "product_id", stockErr.ProductID, "error", err.Error())
	}
}

func (f *fulfillmentCommandsImpl) AcknowledgeFulfillment(
	ctx context.Context,
	orderItemID, sellerUserID uuid.UUID,
	sellerStoreID *uuid.UUID,
	isAdmin bool,
) error {
	now := f.clock.Now()
	return f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		item, err := tx.Reads().OrderItemByID(ctx, orderItemID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderItemNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !isAdmin && (sellerStoreID == nil || *sellerStoreID != item.StoreID) {
			return ErrNotStoreSeller
		}

		snap, err := tx.Reads().OrderByID(ctx, item.OrderID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		orderEntity, err := rehydrateOrder(snap)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		// Fulfillment work starting moves the order out of its waiting state
		if orderEntity.Status() == order.StatusPending || orderEntity.Status() == order.StatusPaymentVerified {
			if err := orderEntity.BeginProcessing(); err != nil {
				return errs.Mark(err, ErrInvalidTransition)
			}
		}

		if err := orderEntity.MarkItemFulfilled(orderItemID, now); err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}
		if err := tx.Orders().MarkItemFulfilled(ctx, tx.DB(), orderItemID, now); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if orderEntity.AllItemsSatisfied() {
			if err := orderEntity.Complete(now); err != nil {
				return errs.Mark(err, ErrInvalidTransition)
			}
		}
		if err := tx.Orders().UpdateStatus(ctx, tx.DB(), orderEntity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		return enqueueOrderEvent(ctx, tx, now, "order.item_fulfilled", item.OrderID, string(orderEntity.Status()))
	})
}
