package repository

import (
	"context"
	"errors"
	"time"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const insertCodeSQL = `
INSERT INTO product_codes (id, product_id, code)
VALUES ($1, $2, $3)`

const findExistingCodesSQL = `
SELECT code FROM product_codes
WHERE product_id = $1 AND code = ANY($2)`

// Oldest unconsumed codes first; SKIP LOCKED keeps concurrent claims from
// queueing on the same rows and guarantees no code is handed out twice.
const claimCodesSQL = `
UPDATE product_codes pc SET
	consumed = TRUE,
	order_item_id = $2,
	consumed_at = $4
FROM (
	SELECT id FROM product_codes
	WHERE product_id = $1 AND NOT consumed
	ORDER BY created_at, id
	LIMIT $3
	FOR UPDATE SKIP LOCKED
) picked
WHERE pc.id = picked.id
RETURNING pc.id, pc.code`

const countAvailableSQL = `
SELECT count(*) FROM product_codes
WHERE product_id = $1 AND NOT consumed`

const syncAvailabilitySQL = `
UPDATE products p SET
	available_codes = pool.n,
	in_stock = pool.n > 0,
	updated_at = now()
FROM (
	SELECT count(*) AS n FROM product_codes
	WHERE product_id = $1 AND NOT consumed
) pool
WHERE p.id = $1`

const pgErrCodeUniqueViolation = "23505"

type CodePoolRepository struct{}

func NewCodePoolRepository() *CodePoolRepository {
	return &CodePoolRepository{}
}

func (r *CodePoolRepository) Append(ctx context.Context, tx db.DBTX, batch *codepool.Batch) error {
	for _, code := range batch.Codes() {
		if _, err := tx.Exec(ctx, insertCodeSQL, uuid.New(), batch.ProductID(), code); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
				return infra.WrapRepoErr("code already exists in pool", err, infra.KindDuplicateKey)
			}
			return infra.WrapRepoErr("failed to append code", err)
		}
	}
	return nil
}

func (r *CodePoolRepository) FindExistingCodes(ctx context.Context, tx db.DBTX, productID uuid.UUID, candidates []string) ([]string, error) {
	rows, err := tx.Query(ctx, findExistingCodesSQL, productID, candidates)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find existing codes", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, infra.WrapRepoErr("failed to scan existing code", err)
		}
		existing = append(existing, code)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read existing codes", err)
	}
	return existing, nil
}

func (r *CodePoolRepository) ClaimCodes(ctx context.Context, tx db.DBTX, productID, orderItemID uuid.UUID, quantity int32, at time.Time) ([]codepool.CodeRecord, error) {
	rows, err := tx.Query(ctx, claimCodesSQL, productID, orderItemID, quantity, at)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim codes", err)
	}
	defer rows.Close()

	var claimed []codepool.CodeRecord
	for rows.Next() {
		rec := codepool.CodeRecord{
			ProductID:   productID,
			Consumed:    true,
			OrderItemID: &orderItemID,
			ConsumedAt:  &at,
		}
		if err := rows.Scan(&rec.ID, &rec.Code); err != nil {
			return nil, infra.WrapRepoErr("failed to scan claimed code", err)
		}
		claimed = append(claimed, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read claimed codes", err)
	}
	return claimed, nil
}

func (r *CodePoolRepository) CountAvailable(ctx context.Context, tx db.DBTX, productID uuid.UUID) (int64, error) {
	var count int64
	if err := tx.QueryRow(ctx, countAvailableSQL, productID).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count available codes", err)
	}
	return count, nil
}

func (r *CodePoolRepository) SyncProductAvailability(ctx context.Context, tx db.DBTX, productID uuid.UUID) error {
	tag, err := tx.Exec(ctx, syncAvailabilitySQL, productID)
	if err != nil {
		return infra.WrapRepoErr("failed to sync product availability", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found for availability sync", nil, infra.KindNotFound)
	}
	return nil
}
