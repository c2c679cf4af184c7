package readstore

import (
	"context"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/pkg/pgconv"
	"giftcode-market/internal/usecase/queries"
	"giftcode-market/internal/usecase/shared"

	"github.com/google/uuid"
)

const getProductSnapshotsSQL = `
SELECT
	p.id, p.store_id, s.status AS store_status, p.name,
	p.price_cents, p.delivery_type, p.in_stock, p.available_codes
FROM products p
JOIN stores s ON s.id = p.store_id
WHERE p.id = ANY($1)`

type ProductReadStore struct {
	db db.DBTX
}

func NewProductReadStore(db db.DBTX) *ProductReadStore {
	return &ProductReadStore{db: db}
}

func (r *ProductReadStore) SnapshotsByIDs(ctx context.Context, ids []uuid.UUID) ([]shared.ProductSnapshot, error) {
	rows, err := r.db.Query(ctx, getProductSnapshotsSQL, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find products", err)
	}
	defer rows.Close()

	var snapshots []shared.ProductSnapshot
	for rows.Next() {
		var snap shared.ProductSnapshot
		if err := rows.Scan(
			&snap.ID,
			&snap.StoreID,
			&snap.StoreStatus,
			&snap.Name,
			&snap.PriceCents,
			&snap.DeliveryType,
			&snap.InStock,
			&snap.AvailableCodes,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan product snapshot", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read product snapshots", err)
	}
	return snapshots, nil
}

// FindCartProducts serves cart validation with the same row shape the
// order command reads, mapped to the query-side view.
func (r *ProductReadStore) FindCartProducts(ctx context.Context, ids []uuid.UUID) ([]*queries.CartProductRow, error) {
	rows, err := r.db.Query(ctx, getProductSnapshotsSQL, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart products", err)
	}
	defer rows.Close()

	var out []*queries.CartProductRow
	for rows.Next() {
		var row queries.CartProductRow
		if err := rows.Scan(
			&row.ID,
			&row.StoreID,
			&row.StoreStatus,
			&row.Name,
			&row.PriceCents,
			&row.DeliveryType,
			&row.InStock,
			&row.AvailableCodes,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart product", err)
		}
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart products", err)
	}
	return out, nil
}

const getProductStoreSQL = `
SELECT p.store_id FROM products p WHERE p.id = $1`

func (r *ProductReadStore) StoreIDOf(ctx context.Context, productID uuid.UUID) (uuid.UUID, error) {
	var storeID uuid.UUID
	if err := r.db.QueryRow(ctx, getProductStoreSQL, productID).Scan(&storeID); err != nil {
		if pgconv.IsNoRows(err) {
			return uuid.Nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to find product store", err)
	}
	return storeID, nil
}
