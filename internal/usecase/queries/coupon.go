package queries

import (
	"context"

	"github.com/google/uuid"

	"giftcode-market/internal/domain/coupon"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/pkg/errs"
)

var (
	ErrCouponNotFound      = errs.New("coupon not found")
	ErrCouponNotApplicable = errs.New("coupon not applicable")
)

type CouponQueries interface {
	// Preview validates the coupon against a cart total without placing
	// an order, returning the discount it would grant.
	Preview(ctx context.Context, userID uuid.UUID, code string, orderTotalCents int64) (*CouponPreviewView, error)
}

type CouponReadStore interface {
	FindByCode(ctx context.Context, code string) (*CouponRowView, error)
	HasUserOrderWithCoupon(ctx context.Context, userID, couponID uuid.UUID) (bool, error)
}

type couponQueriesImpl struct {
	readStore CouponReadStore
	clock     clock.Clock
}

func NewCouponQueries(readStore CouponReadStore, clock clock.Clock) CouponQueries {
	return &couponQueriesImpl{
		readStore: readStore,
		clock:     clock,
	}
}

func (q *couponQueriesImpl) Preview(ctx context.Context, userID uuid.UUID, code string, orderTotalCents int64) (*CouponPreviewView, error) {
	row, err := q.readStore.FindByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	entity, err := coupon.NewCoupon(
		row.ID,
		row.Code,
		row.DiscountType,
		row.DiscountValue,
		row.MinOrderCents,
		row.MaxDiscountCents,
		row.ExpiresAt,
		row.MaxUses,
		row.UsedCount,
		row.OneTimePerUser,
		row.IsActive,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrCouponNotApplicable)
	}

	if err := entity.ValidateUsage(q.clock.Now(), orderTotalCents); err != nil {
		return nil, errs.Mark(err, ErrCouponNotApplicable)
	}

	if entity.OneTimePerUser() {
		used, err := q.readStore.HasUserOrderWithCoupon(ctx, userID, entity.ID())
		if err != nil {
			return nil, err
		}
		if used {
			return nil, errs.Mark(coupon.ErrAlreadyUsedByUser, ErrCouponNotApplicable)
		}
	}

	discount := entity.DiscountCents(orderTotalCents)
	return &CouponPreviewView{
		CouponID:        entity.ID(),
		Code:            entity.Code().String(),
		DiscountType:    row.DiscountType,
		DiscountCents:   discount,
		TotalAfterCents: orderTotalCents - discount,
	}, nil
}
