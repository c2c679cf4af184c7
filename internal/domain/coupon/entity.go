package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCouponInactive    = errors.New("coupon is no longer active")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrUsageLimitReached = errors.New("coupon has reached its usage limit")
	ErrMinOrderNotMet    = errors.New("order total below coupon minimum")
	ErrAlreadyUsedByUser = errors.New("coupon already used by this user")
)

type Coupon struct {
	id             uuid.UUID
	code           Code
	discount       Discount
	minOrderCents  *int64
	expiresAt      *time.Time
	maxUses        *int32
	usedCount      int32
	oneTimePerUser bool
	isActive       bool
	createdAt      time.Time
}

func NewCoupon(
	id uuid.UUID,
	code string,
	discountType string,
	discountValue int64,
	minOrderCents *int64,
	maxDiscountCents *int64,
	expiresAt *time.Time,
	maxUses *int32,
	usedCount int32,
	oneTimePerUser bool,
	isActive bool,
) (*Coupon, error) {
	couponCode, err := NewCouponCode(code)
	if err != nil {
		return nil, err
	}

	var discount Discount
	switch discountType {
	case "percentage":
		discount, err = NewPercentageDiscount(float64(discountValue), maxDiscountCents)
	default:
		discount, err = NewFixedDiscount(discountValue)
	}
	if err != nil {
		return nil, err
	}

	return &Coupon{
		id:             id,
		code:           couponCode,
		discount:       discount,
		minOrderCents:  minOrderCents,
		expiresAt:      expiresAt,
		maxUses:        maxUses,
		usedCount:      usedCount,
		oneTimePerUser: oneTimePerUser,
		isActive:       isActive,
	}, nil
}

// ValidateUsage checks every redemption rule except the per-user one-time
// rule, which needs a ledger lookup and is enforced by the usecase layer.
func (c *Coupon) ValidateUsage(now time.Time, orderTotalCents int64) error {
	if !c.isActive {
		return ErrCouponInactive
	}
	if c.expiresAt != nil && now.After(*c.expiresAt) {
		return ErrCouponExpired
	}
	if c.maxUses != nil && c.usedCount >= *c.maxUses {
		return ErrUsageLimitReached
	}
	if c.minOrderCents != nil && orderTotalCents < *c.minOrderCents {
		return ErrMinOrderNotMet
	}
	return nil
}

func (c *Coupon) DiscountCents(orderTotalCents int64) int64 {
	return c.discount.CalculateDiscountCents(orderTotalCents)
}

func (c *Coupon) ID() uuid.UUID         { return c.id }
func (c *Coupon) Code() Code            { return c.code }
func (c *Coupon) Discount() Discount    { return c.discount }
func (c *Coupon) MinOrderCents() *int64 { return c.minOrderCents }
func (c *Coupon) ExpiresAt() *time.Time { return c.expiresAt }
func (c *Coupon) MaxUses() *int32       { return c.maxUses }
func (c *Coupon) UsedCount() int32      { return c.usedCount }
func (c *Coupon) OneTimePerUser() bool  { return c.oneTimePerUser }
func (c *Coupon) IsActive() bool        { return c.isActive }
func (c *Coupon) CreatedAt() time.Time  { return c.createdAt }
