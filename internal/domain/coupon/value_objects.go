package coupon

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

var (
	ErrInvalidCouponCode      = errors.New("invalid coupon code format")
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrInvalidDiscountCap     = errors.New("discount cap cannot be negative")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

// Code is normalized to upper case; lookups are case-insensitive.
type Code string

func NewCouponCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type Discount struct {
	amountOffCents   *int64
	percentOff       *float64
	maxDiscountCents *int64
}

func NewFixedDiscount(amountOffCents int64) (Discount, error) {
	if amountOffCents < 0 {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{amountOffCents: &amountOffCents}, nil
}

func NewPercentageDiscount(percentOff float64, maxDiscountCents *int64) (Discount, error) {
	if percentOff < 0 || percentOff > 100 {
		return Discount{}, ErrInvalidDiscountPercent
	}
	if maxDiscountCents != nil && *maxDiscountCents < 0 {
		return Discount{}, ErrInvalidDiscountCap
	}
	return Discount{percentOff: &percentOff, maxDiscountCents: maxDiscountCents}, nil
}

func (d Discount) IsPercentage() bool {
	return d.percentOff != nil
}

func (d Discount) IsFixed() bool {
	return d.amountOffCents != nil
}

func (d Discount) AmountOffCents() int64 {
	if d.amountOffCents != nil {
		return *d.amountOffCents
	}
	return 0
}

func (d Discount) PercentOff() float64 {
	if d.percentOff != nil {
		return *d.percentOff
	}
	return 0
}

func (d Discount) MaxDiscountCents() *int64 {
	return d.maxDiscountCents
}

// CalculateDiscountCents returns the discount for the given total,
// rounding half cents up. The result never exceeds the total, and never
// exceeds the cap when one is set.
func (d Discount) CalculateDiscountCents(totalCents int64) int64 {
	var discount int64

	if d.IsPercentage() {
		discount = int64(math.Round(float64(totalCents) * d.PercentOff() / 100.0))
		if d.maxDiscountCents != nil && discount > *d.maxDiscountCents {
			discount = *d.maxDiscountCents
		}
	} else {
		discount = d.AmountOffCents()
	}

	if discount > totalCents {
		discount = totalCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
