package repository

import (
	"context"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"

	"github.com/google/uuid"
)

// Guarded against max_uses so two racing orders cannot both take the
// last redemption.
const incrementCouponUsageSQL = `
UPDATE coupons SET used_count = used_count + 1, updated_at = now()
WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)`

type CouponRepository struct{}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{}
}

func (r *CouponRepository) IncrementUsage(ctx context.Context, tx db.DBTX, couponID uuid.UUID) error {
	tag, err := tx.Exec(ctx, incrementCouponUsageSQL, couponID)
	if err != nil {
		return infra.WrapRepoErr("failed to increment coupon usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("coupon usage limit reached", nil, infra.KindConflict)
	}
	return nil
}
