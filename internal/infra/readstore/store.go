package readstore

import (
	"context"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/pkg/pgconv"
	"giftcode-market/internal/usecase/shared"

	"github.com/google/uuid"
)

const getStoreByIDSQL = `
SELECT id, owner_id, name, status
FROM stores
WHERE id = $1`

const getStoreByOwnerSQL = `
SELECT id, owner_id, name, status
FROM stores
WHERE owner_id = $1`

type StoreReadStore struct {
	db db.DBTX
}

func NewStoreReadStore(db db.DBTX) *StoreReadStore {
	return &StoreReadStore{db: db}
}

func (r *StoreReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.StoreSnapshot, error) {
	return r.scanOne(ctx, getStoreByIDSQL, id)
}

func (r *StoreReadStore) SnapshotByOwner(ctx context.Context, ownerID uuid.UUID) (*shared.StoreSnapshot, error) {
	return r.scanOne(ctx, getStoreByOwnerSQL, ownerID)
}

func (r *StoreReadStore) scanOne(ctx context.Context, sql string, arg any) (*shared.StoreSnapshot, error) {
	var snap shared.StoreSnapshot
	err := r.db.QueryRow(ctx, sql, arg).Scan(
		&snap.ID,
		&snap.OwnerID,
		&snap.Name,
		&snap.Status,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("store not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find store", err)
	}
	return &snap, nil
}
