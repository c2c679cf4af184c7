package repository

import (
	"context"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"

	"github.com/google/uuid"
)

const updateLastLoginSQL = `
UPDATE users SET last_login = now(), updated_at = now()
WHERE id = $1`

const attachStoreSQL = `
UPDATE users SET store_id = $2, role = 'seller', updated_at = now()
WHERE id = $1 AND store_id IS NULL`

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error {
	tag, err := tx.Exec(ctx, updateLastLoginSQL, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *UserRepository) AttachStore(ctx context.Context, tx db.DBTX, userID, storeID uuid.UUID) error {
	tag, err := tx.Exec(ctx, attachStoreSQL, userID, storeID)
	if err != nil {
		return infra.WrapRepoErr("failed to attach store to user", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found or already owns a store", nil, infra.KindConflict)
	}
	return nil
}
