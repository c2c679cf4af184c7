package commands

import (
	"context"

	"github.com/google/uuid"

	"giftcode-market/internal/domain/store"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/pkg/errs"
	"giftcode-market/internal/usecase/shared"
)

var (
	ErrStoreNotFound   = errs.New("store not found")
	ErrAlreadyHasStore = errs.New("user already owns a store")
)

type StoreCommands interface {
	// CreateStore opens a pending store for the user and promotes them
	// to the seller role. One store per owner.
	CreateStore(ctx context.Context, ownerID uuid.UUID, name string) (*shared.StoreSnapshot, error)
	// ReviewStore is the admin gate: approve admits (or reinstates) the
	// store, suspend takes it off the marketplace.
	ReviewStore(ctx context.Context, storeID uuid.UUID, approve bool) (*shared.StoreSnapshot, error)
}

type storeCommandsImpl struct {
	uow shared.UnitOfWork
}

func NewStoreCommands(uow shared.UnitOfWork) StoreCommands {
	return &storeCommandsImpl{uow: uow}
}

func (c *storeCommandsImpl) CreateStore(ctx context.Context, ownerID uuid.UUID, name string) (*shared.StoreSnapshot, error) {
	entity, err := store.NewStore(ownerID, name)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	var snap *shared.StoreSnapshot
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, exErr := tx.Reads().StoreByOwner(ctx, ownerID)
		if exErr == nil {
			return ErrAlreadyHasStore
		}
		if !infra.IsKind(exErr, infra.KindNotFound) {
			return errs.Mark(exErr, ErrDatabaseOperationFailed)
		}

		if crErr := tx.Stores().Create(ctx, tx.DB(), entity); crErr != nil {
			return errs.Mark(crErr, ErrDatabaseOperationFailed)
		}
		if atErr := tx.Users().AttachStore(ctx, tx.DB(), ownerID, entity.ID()); atErr != nil {
			if infra.IsKind(atErr, infra.KindConflict) {
				return ErrAlreadyHasStore
			}
			return errs.Mark(atErr, ErrDatabaseOperationFailed)
		}

		snap = &shared.StoreSnapshot{
			ID:      entity.ID(),
			OwnerID: entity.OwnerID(),
			Name:    entity.Name(),
			Status:  string(entity.Status()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *storeCommandsImpl) ReviewStore(ctx context.Context, storeID uuid.UUID, approve bool) (*shared.StoreSnapshot, error) {
	var snap *shared.StoreSnapshot
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Reads().StoreByID(ctx, storeID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrStoreNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		entity, err := store.Reconstruct(current.ID, current.OwnerID, current.Name, current.Status)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		if approve {
			err = entity.Approve()
		} else {
			err = entity.Suspend()
		}
		if err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}

		if upErr := tx.Stores().UpdateStatus(ctx, tx.DB(), entity); upErr != nil {
			return errs.Mark(upErr, ErrDatabaseOperationFailed)
		}

		snap = &shared.StoreSnapshot{
			ID:      entity.ID(),
			OwnerID: entity.OwnerID(),
			Name:    entity.Name(),
			Status:  string(entity.Status()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
