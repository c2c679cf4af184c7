package readstore

import (
	"context"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/pkg/pgconv"
	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getUserByIDSQL = `
SELECT id, email, role, store_id, is_active
FROM users
WHERE id = $1`

const getUserByEmailSQL = `
SELECT id, email, role, store_id, is_active, password_hash
FROM users
WHERE lower(email) = lower($1)`

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(db db.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var view queries.AuthorizedUserView
	var storeID pgtype.UUID

	err := r.db.QueryRow(ctx, getUserByIDSQL, id).Scan(
		&view.ID,
		&view.Email,
		&view.Role,
		&storeID,
		&view.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}

	view.StoreID = pgconv.UUIDPtrFromPgtype(storeID)
	return &view, nil
}

func (r *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	var view queries.AuthorizedUserView
	var storeID pgtype.UUID
	var passwordHash string

	err := r.db.QueryRow(ctx, getUserByEmailSQL, email).Scan(
		&view.ID,
		&view.Email,
		&view.Role,
		&storeID,
		&view.IsActive,
		&passwordHash,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}

	view.StoreID = pgconv.UUIDPtrFromPgtype(storeID)
	return &view, passwordHash, nil
}
