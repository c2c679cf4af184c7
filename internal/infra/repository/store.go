package repository

import (
	"context"

	"giftcode-market/internal/domain/store"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
)

const insertStoreSQL = `
INSERT INTO stores (id, owner_id, name, status)
VALUES ($1, $2, $3, $4)`

const updateStoreStatusSQL = `
UPDATE stores SET status = $2, updated_at = now()
WHERE id = $1`

type StoreRepository struct{}

func NewStoreRepository() *StoreRepository {
	return &StoreRepository{}
}

func (r *StoreRepository) Create(ctx context.Context, tx db.DBTX, s *store.Store) error {
	_, err := tx.Exec(ctx, insertStoreSQL, s.ID(), s.OwnerID(), s.Name(), string(s.Status()))
	if err != nil {
		return infra.WrapRepoErr("failed to create store", err)
	}
	return nil
}

func (r *StoreRepository) UpdateStatus(ctx context.Context, tx db.DBTX, s *store.Store) error {
	tag, err := tx.Exec(ctx, updateStoreStatusSQL, s.ID(), string(s.Status()))
	if err != nil {
		return infra.WrapRepoErr("failed to update store status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("store not found", nil, infra.KindNotFound)
	}
	return nil
}
