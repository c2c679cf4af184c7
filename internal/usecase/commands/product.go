package commands

import (
	"context"

	"github.com/google/uuid"

	"giftcode-market/internal/domain/product"
	"giftcode-market/internal/pkg/errs"
	"giftcode-market/internal/usecase/shared"
)

var ErrInstantStockDerived = errs.New("instant product stock is derived from the code pool")

type ProductCommands interface {
	// CreateProduct lists a product under the seller's store. Manual
	// products start sellable; instant ones wait for their first codes.
	CreateProduct(ctx context.Context, storeID uuid.UUID, name string, priceCents int64, deliveryType string) (uuid.UUID, error)
	UpdateProduct(ctx context.Context, productID, storeID uuid.UUID, name string, priceCents int64) error
	// SetStock flips availability of a manual-delivery product. Instant
	// products are refused: their in_stock flag mirrors the pool.
	SetStock(ctx context.Context, productID, storeID uuid.UUID, inStock bool) error
}

type productCommandsImpl struct {
	uow shared.UnitOfWork
}

func NewProductCommands(uow shared.UnitOfWork) ProductCommands {
	return &productCommandsImpl{uow: uow}
}

func (c *productCommandsImpl) CreateProduct(
	ctx context.Context,
	storeID uuid.UUID,
	name string,
	priceCents int64,
	deliveryType string,
) (uuid.UUID, error) {
	inStock := deliveryType == string(product.DeliveryManual)
	entity, err := product.NewProduct(uuid.New(), storeID, name, priceCents, deliveryType, inStock)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if crErr := tx.Products().Create(ctx, tx.DB(), entity); crErr != nil {
			return errs.Mark(crErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return entity.ID(), nil
}

func (c *productCommandsImpl) UpdateProduct(
	ctx context.Context,
	productID, storeID uuid.UUID,
	name string,
	priceCents int64,
) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := c.ownedProduct(ctx, tx, productID, storeID)
		if err != nil {
			return err
		}

		// Re-run entity validation with the incoming fields
		if _, vErr := product.NewProduct(snap.ID, snap.StoreID, name, priceCents, snap.DeliveryType, snap.InStock); vErr != nil {
			return errs.Mark(vErr, ErrDomainValidation)
		}

		if upErr := tx.Products().Update(ctx, tx.DB(), productID, name, priceCents); upErr != nil {
			return errs.Mark(upErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (c *productCommandsImpl) SetStock(ctx context.Context, productID, storeID uuid.UUID, inStock bool) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := c.ownedProduct(ctx, tx, productID, storeID)
		if err != nil {
			return err
		}
		if snap.DeliveryType == string(product.DeliveryInstant) {
			return ErrInstantStockDerived
		}

		if upErr := tx.Products().SetInStock(ctx, tx.DB(), productID, inStock); upErr != nil {
			return errs.Mark(upErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (c *productCommandsImpl) ownedProduct(ctx context.Context, tx shared.Tx, productID, storeID uuid.UUID) (*shared.ProductSnapshot, error) {
	snapshots, err := tx.Reads().ProductsByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if len(snapshots) == 0 {
		return nil, ErrProductNotFound
	}
	if snapshots[0].StoreID != storeID {
		return nil, ErrNotProductOwner
	}
	return &snapshots[0], nil
}
