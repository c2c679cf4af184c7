package commands

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/pkg/errs"
	"giftcode-market/internal/usecase/shared"
)

var (
	ErrRejectionReasonRequired = errs.New("rejection reason required")
	ErrInvalidTransition       = errs.New("invalid status transition")
)

type PaymentCommands interface {
	// SubmitPayment is called by the buyer once an external payment has
	// been sent, moving the order into manual verification.
	SubmitPayment(ctx context.Context, orderID, userID uuid.UUID) error
	VerifyPayment(ctx context.Context, orderID, adminID uuid.UUID) error
	RejectPayment(ctx context.Context, orderID, adminID uuid.UUID, reason string) error
}

type paymentCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewPaymentCommands(uow shared.UnitOfWork, clock clock.Clock) PaymentCommands {
	return &paymentCommandsImpl{
		uow:   uow,
		clock: clock,
	}
}

func (p *paymentCommandsImpl) SubmitPayment(ctx context.Context, orderID, userID uuid.UUID) error {
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().OrderByID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if snap.UserID != userID {
			return ErrNotOrderOwner
		}

		orderEntity, err := rehydrateOrder(snap)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}
		if err := orderEntity.SubmitPayment(); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}

		if err := tx.Orders().UpdateStatus(ctx, tx.DB(), orderEntity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		return enqueueOrderEvent(ctx, tx, p.clock.Now(), "order.payment_submitted", orderID, string(orderEntity.Status()))
	})
}

func (p *paymentCommandsImpl) VerifyPayment(ctx context.Context, orderID, adminID uuid.UUID) error {
	now := p.clock.Now()
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
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
		if err := orderEntity.VerifyPayment(now); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}

		if err := tx.Orders().UpdateStatus(ctx, tx.DB(), orderEntity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		payload, err := json.Marshal(map[string]any{
			"order_id": orderID,
			"admin_id": adminID,
		})
		if err != nil {
			return err
		}
		if err := tx.Notifications().CreateJob(ctx, tx.DB(), "email", "email.payment_verified", payload, now); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := enqueueManualFulfillmentNotices(ctx, tx, now, snap); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		// Kicks the fulfillment worker to allocate codes for this order
		return enqueueOrderEvent(ctx, tx, now, "order.payment_verified", orderID, string(orderEntity.Status()))
	})
}

func (p *paymentCommandsImpl) RejectPayment(ctx context.Context, orderID, adminID uuid.UUID, reason string) error {
	if reason == "" {
		return ErrRejectionReasonRequired
	}

	now := p.clock.Now()
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
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
		if err := orderEntity.RejectPayment(reason); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}

		if err := tx.Orders().UpdateStatus(ctx, tx.DB(), orderEntity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		payload, err := json.Marshal(map[string]any{
			"order_id": orderID,
			"admin_id": adminID,
			"reason":   reason,
		})
		if err != nil {
			return err
		}
		return tx.Notifications().CreateJob(ctx, tx.DB(), "email", "email.payment_rejected", payload, now)
	})
}
