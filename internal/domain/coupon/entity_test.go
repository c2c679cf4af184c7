//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"giftcode-market/internal/domain/coupon"
	"giftcode-market/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNewCouponCode(t *testing.T) {
	t.Run("normalizes to upper case", func(t *testing.T) {
		code, err := coupon.NewCouponCode("  save20 ")
		require.NoError(t, err)
		assert.Equal(t, "SAVE20", code.String())
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, v := range []string{"", "AB", "WITH SPACE", "lower-case!", "THIS_CODE_IS_WAY_TOO_LONG_FOR_A_COUPON"} {
			_, err := coupon.NewCouponCode(v)
			assert.ErrorIs(t, err, coupon.ErrInvalidCouponCode, "code %q", v)
		}
	})
}

func TestValidateUsage(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*builder.CouponBuilder)
		total  int64
		errIs  error
	}{
		{
			name:   "valid coupon passes",
			mutate: func(*builder.CouponBuilder) {},
			total:  10000,
		},
		{
			name:   "inactive coupon",
			mutate: func(b *builder.CouponBuilder) { b.IsActive = false },
			total:  10000,
			errIs:  coupon.ErrCouponInactive,
		},
		{
			name:   "expired coupon",
			mutate: func(b *builder.CouponBuilder) { b.WithExpiry(now.Add(-time.Minute)) },
			total:  10000,
			errIs:  coupon.ErrCouponExpired,
		},
		{
			name:   "not yet expired at the boundary",
			mutate: func(b *builder.CouponBuilder) { b.WithExpiry(now) },
			total:  10000,
		},
		{
			name:   "usage limit reached",
			mutate: func(b *builder.CouponBuilder) { b.WithUsage(5, 5) },
			total:  10000,
			errIs:  coupon.ErrUsageLimitReached,
		},
		{
			name:   "one use left",
			mutate: func(b *builder.CouponBuilder) { b.WithUsage(4, 5) },
			total:  10000,
		},
		{
			name:   "order below minimum",
			mutate: func(b *builder.CouponBuilder) { b.WithMinOrder(5000) },
			total:  4999,
			errIs:  coupon.ErrMinOrderNotMet,
		},
		{
			name:   "order exactly at minimum",
			mutate: func(b *builder.CouponBuilder) { b.WithMinOrder(5000) },
			total:  5000,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewCouponBuilder()
			tc.mutate(b)
			c, err := b.BuildDomain()
			require.NoError(t, err)

			err = c.ValidateUsage(now, tc.total)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCalculateDiscountCents(t *testing.T) {
	t.Run("percentage discount with cap", func(t *testing.T) {
		c, err := builder.NewCouponBuilder().BuildDomain()
		require.NoError(t, err)

		// 20% of 2000 is 400, below the 500 cap
		assert.Equal(t, int64(400), c.DiscountCents(2000))
		// 20% of 10000 is 2000, capped at 500
		assert.Equal(t, int64(500), c.DiscountCents(10000))
	})

	t.Run("fractional cents round half up", func(t *testing.T) {
		d, err := coupon.NewPercentageDiscount(15, nil)
		require.NoError(t, err)

		// 15% of 99 is 14.85, rounds to 15
		assert.Equal(t, int64(15), d.CalculateDiscountCents(99))
		// 15% of 30 is 4.5, the half cent rounds up
		assert.Equal(t, int64(5), d.CalculateDiscountCents(30))
		// 15% of 20 is 3.0 exactly
		assert.Equal(t, int64(3), d.CalculateDiscountCents(20))
	})

	t.Run("fixed discount clamps to the total", func(t *testing.T) {
		c, err := builder.NewCouponBuilder().WithFixedDiscount(1500).BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, int64(1500), c.DiscountCents(2000))
		assert.Equal(t, int64(800), c.DiscountCents(800))
		assert.Equal(t, int64(0), c.DiscountCents(0))
	})

	t.Run("invalid discount values are rejected at construction", func(t *testing.T) {
		_, err := coupon.NewFixedDiscount(-1)
		assert.ErrorIs(t, err, coupon.ErrInvalidDiscountAmount)

		_, err = coupon.NewPercentageDiscount(101, nil)
		assert.ErrorIs(t, err, coupon.ErrInvalidDiscountPercent)

		cap := int64(-1)
		_, err = coupon.NewPercentageDiscount(10, &cap)
		assert.ErrorIs(t, err, coupon.ErrInvalidDiscountCap)
	})
}
