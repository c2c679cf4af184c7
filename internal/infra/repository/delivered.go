package repository

import (
	"context"
	"errors"
	"time"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// delivered_codes has UNIQUE(code_id): the ledger physically cannot hold
// the same pool code twice, whatever the allocator does.
const insertDeliveredCodeSQL = `
INSERT INTO delivered_codes (id, code_id, order_id, order_item_id, user_id, delivered_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const markViewedSQL = `
UPDATE delivered_codes SET viewed_at = $2
WHERE id = $1 AND viewed_at IS NULL`

type DeliveredCodeRepository struct{}

func NewDeliveredCodeRepository() *DeliveredCodeRepository {
	return &DeliveredCodeRepository{}
}

func (r *DeliveredCodeRepository) CreateBatch(ctx context.Context, tx db.DBTX, records []shared.DeliveredCodeRecord) error {
	for _, rec := range records {
		_, err := tx.Exec(ctx, insertDeliveredCodeSQL,
			rec.ID,
			rec.CodeID,
			rec.OrderID,
			rec.OrderItemID,
			rec.UserID,
			rec.DeliveredAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
				return infra.WrapRepoErr("code already delivered", err, infra.KindConflict)
			}
			return infra.WrapRepoErr("failed to record delivered code", err)
		}
	}
	return nil
}

func (r *DeliveredCodeRepository) MarkViewed(ctx context.Context, tx db.DBTX, id uuid.UUID, at time.Time) error {
	// Zero rows means a concurrent call already set viewed_at
	_, err := tx.Exec(ctx, markViewedSQL, id, at)
	if err != nil {
		return infra.WrapRepoErr("failed to mark code viewed", err)
	}
	return nil
}
