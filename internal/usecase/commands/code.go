package commands

import (
	"context"

	"github.com/google/uuid"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/pkg/errs"
	"giftcode-market/internal/usecase/shared"
)

var (
	ErrNotProductOwner = errs.New("product does not belong to the seller's store")
	ErrCodeNotFound    = errs.New("delivered code not found")
	ErrNotCodeOwner    = errs.New("code was not delivered to this user")
)

type AppendCodesResult struct {
	ProductID      uuid.UUID
	Added          int
	AvailableCodes int64
}

type CodeCommands interface {
	// AppendCodes adds a batch of codes to a product's pool. The whole
	// batch is rejected when any code repeats within it or already exists
	// for the product.
	AppendCodes(ctx context.Context, productID, sellerUserID uuid.UUID, sellerStoreID *uuid.UUID, isAdmin bool, codes []string) (*AppendCodesResult, error)
	// MarkViewed records the first time the buyer revealed a delivered
	// code. Repeat calls keep the original timestamp.
	MarkViewed(ctx context.Context, deliveredCodeID, userID uuid.UUID) error
}

type codeCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewCodeCommands(uow shared.UnitOfWork, clock clock.Clock) CodeCommands {
	return &codeCommandsImpl{
		uow:   uow,
		clock: clock,
	}
}

func (c *codeCommandsImpl) AppendCodes(
	ctx context.Context,
	productID, sellerUserID uuid.UUID,
	sellerStoreID *uuid.UUID,
	isAdmin bool,
	codes []string,
) (*AppendCodesResult, error) {
	batch, err := codepool.NewBatch(productID, codes)
	if err != nil {
		return nil, err
	}

	result := &AppendCodesResult{ProductID: productID}
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snapshots, rErr := tx.Reads().ProductsByIDs(ctx, []uuid.UUID{productID})
		if rErr != nil {
			return errs.Mark(rErr, ErrDatabaseOperationFailed)
		}
		if len(snapshots) == 0 {
			return ErrProductNotFound
		}
		if !isAdmin && (sellerStoreID == nil || *sellerStoreID != snapshots[0].StoreID) {
			return ErrNotProductOwner
		}

		existing, exErr := tx.CodePool().FindExistingCodes(ctx, tx.DB(), productID, batch.Codes())
		if exErr != nil {
			return errs.Mark(exErr, ErrDatabaseOperationFailed)
		}
		if dupErr := batch.CheckAgainstExisting(existing); dupErr != nil {
			return dupErr
		}

		if apErr := tx.CodePool().Append(ctx, tx.DB(), batch); apErr != nil {
			if infra.IsKind(apErr, infra.KindDuplicateKey) {
				// Raced with a concurrent append of the same codes
				return &codepool.DuplicateCodeError{Duplicates: batch.Codes()}
			}
			return errs.Mark(apErr, ErrDatabaseOperationFailed)
		}

		if syErr := tx.CodePool().SyncProductAvailability(ctx, tx.DB(), productID); syErr != nil {
			return errs.Mark(syErr, ErrDatabaseOperationFailed)
		}

		count, cntErr := tx.CodePool().CountAvailable(ctx, tx.DB(), productID)
		if cntErr != nil {
			return errs.Mark(cntErr, ErrDatabaseOperationFailed)
		}

		result.Added = batch.Size()
		result.AvailableCodes = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *codeCommandsImpl) MarkViewed(ctx context.Context, deliveredCodeID, userID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		record, err := tx.Reads().DeliveredCodeByID(ctx, deliveredCodeID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCodeNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if record.UserID != userID {
			return ErrNotCodeOwner
		}
		if record.ViewedAt != nil {
			// First view wins, repeat calls are no-ops
			return nil
		}

		if err := tx.DeliveredCodes().MarkViewed(ctx, tx.DB(), deliveredCodeID, c.clock.Now()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}
