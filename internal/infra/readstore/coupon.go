package readstore

import (
	"context"
	"strings"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/pkg/pgconv"
	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Coupon codes are matched case-insensitively; the unique index on
// lower(code) keeps the mapping unambiguous.
const getCouponByCodeSQL = `
SELECT
	id, code, discount_type, discount_value,
	min_order_cents, max_discount_cents, expires_at,
	max_uses, used_count, one_time_per_user, is_active
FROM coupons
WHERE lower(code) = lower($1)`

const hasUserOrderWithCouponSQL = `
SELECT EXISTS (
	SELECT 1 FROM orders
	WHERE user_id = $1 AND coupon_id = $2 AND status <> 'CANCELLED'
)`

type CouponReadStore struct {
	db db.DBTX
}

func NewCouponReadStore(db db.DBTX) *CouponReadStore {
	return &CouponReadStore{db: db}
}

func (r *CouponReadStore) FindByCode(ctx context.Context, code string) (*queries.CouponRowView, error) {
	var view queries.CouponRowView
	var minOrder, maxDiscount pgtype.Int8
	var expiresAt pgtype.Timestamptz
	var maxUses pgtype.Int4

	err := r.db.QueryRow(ctx, getCouponByCodeSQL, strings.TrimSpace(code)).Scan(
		&view.ID,
		&view.Code,
		&view.DiscountType,
		&view.DiscountValue,
		&minOrder,
		&maxDiscount,
		&expiresAt,
		&maxUses,
		&view.UsedCount,
		&view.OneTimePerUser,
		&view.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by code", err)
	}

	view.MinOrderCents = pgconv.Int64PtrFromPgtype(minOrder)
	view.MaxDiscountCents = pgconv.Int64PtrFromPgtype(maxDiscount)
	view.ExpiresAt = pgconv.TimePtrFromPgtype(expiresAt)
	view.MaxUses = pgconv.Int32PtrFromPgtype(maxUses)
	return &view, nil
}

func (r *CouponReadStore) HasUserOrderWithCoupon(ctx context.Context, userID, couponID uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, hasUserOrderWithCouponSQL, userID, couponID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check coupon usage", err)
	}
	return exists, nil
}
