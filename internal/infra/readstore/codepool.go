package readstore

import (
	"context"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/pkg/pgconv"
	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
)

const countAvailableCodesSQL = `
SELECT count(*) FROM product_codes
WHERE product_id = $1 AND NOT consumed`

const getAvailabilitySQL = `
SELECT p.id,
	(SELECT count(*) FROM product_codes pc WHERE pc.product_id = p.id AND NOT pc.consumed) AS available,
	p.in_stock
FROM products p
WHERE p.id = $1`

type CodePoolReadStore struct {
	db db.DBTX
}

func NewCodePoolReadStore(db db.DBTX) *CodePoolReadStore {
	return &CodePoolReadStore{db: db}
}

func (r *CodePoolReadStore) CountAvailable(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countAvailableCodesSQL, productID).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count available codes", err)
	}
	return count, nil
}

func (r *CodePoolReadStore) Availability(ctx context.Context, productID uuid.UUID) (*queries.ProductAvailabilityView, error) {
	var view queries.ProductAvailabilityView
	err := r.db.QueryRow(ctx, getAvailabilitySQL, productID).Scan(
		&view.ProductID,
		&view.AvailableCodes,
		&view.InStock,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read product availability", err)
	}
	return &view, nil
}
