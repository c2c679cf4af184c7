//go:build unit || e2e

package builder

import (
	"time"

	domcoupon "giftcode-market/internal/domain/coupon"

	"github.com/google/uuid"
)

type CouponBuilder struct {
	ID               uuid.UUID
	Code             string
	DiscountType     string
	DiscountValue    int64
	MinOrderCents    *int64
	MaxDiscountCents *int64
	ExpiresAt        *time.Time
	MaxUses          *int32
	UsedCount        int32
	OneTimePerUser   bool
	IsActive         bool
}

func NewCouponBuilder() *CouponBuilder {
	maxDiscount := int64(500)
	return &CouponBuilder{
		ID:               uuid.New(),
		Code:             "SAVE20",
		DiscountType:     "percentage",
		DiscountValue:    20,
		MaxDiscountCents: &maxDiscount,
		IsActive:         true,
	}
}

func (b *CouponBuilder) With(mutate func(*CouponBuilder)) *CouponBuilder {
	mutate(b)
	return b
}

func (b *CouponBuilder) WithFixedDiscount(amountCents int64) *CouponBuilder {
	b.DiscountType = "fixed"
	b.DiscountValue = amountCents
	b.MaxDiscountCents = nil
	return b
}

func (b *CouponBuilder) WithMinOrder(cents int64) *CouponBuilder {
	b.MinOrderCents = &cents
	return b
}

func (b *CouponBuilder) WithExpiry(t time.Time) *CouponBuilder {
	b.ExpiresAt = &t
	return b
}

func (b *CouponBuilder) WithUsage(used, max int32) *CouponBuilder {
	b.UsedCount = used
	b.MaxUses = &max
	return b
}

func (b *CouponBuilder) BuildDomain() (*domcoupon.Coupon, error) {
	return domcoupon.NewCoupon(
		b.ID,
		b.Code,
		b.DiscountType,
		b.DiscountValue,
		b.MinOrderCents,
		b.MaxDiscountCents,
		b.ExpiresAt,
		b.MaxUses,
		b.UsedCount,
		b.OneTimePerUser,
		b.IsActive,
	)
}
