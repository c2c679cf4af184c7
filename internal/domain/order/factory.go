package order

import (
	"giftcode-market/internal/domain/coupon"
	"giftcode-market/internal/pkg/clock"

	"github.com/google/uuid"
)

type Factory struct {
	Clock clock.Clock
}

func NewFactory(clock clock.Clock) *Factory {
	return &Factory{Clock: clock}
}

// CreateOrder builds a new order from validated line items, applying the
// coupon discount and deriving the initial status from the payment method.
// The total invariant subtotal - discount == total holds by construction.
func (f *Factory) CreateOrder(
	userID uuid.UUID,
	items []LineItem,
	paymentMethod PaymentMethod,
	couponEntity *coupon.Coupon,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoLineItems
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.SubtotalCents()
	}

	var discount int64
	var couponID *uuid.UUID
	if couponEntity != nil {
		if err := couponEntity.ValidateUsage(f.Clock.Now(), subtotal); err != nil {
			return nil, err
		}
		discount = couponEntity.DiscountCents(subtotal)
		id := couponEntity.ID()
		couponID = &id
	}

	return &Order{
		id:            uuid.New(),
		userID:        userID,
		items:         items,
		paymentMethod: paymentMethod,
		status:        paymentMethod.InitialStatus(),
		subtotalCents: subtotal,
		discountCents: discount,
		totalCents:    subtotal - discount,
		couponID:      couponID,
	}, nil
}

// VerifyTotals re-checks the money invariant on a reconstructed order,
// e.g. before a status transition that releases value.
func VerifyTotals(o *Order) error {
	var subtotal int64
	for _, item := range o.items {
		subtotal += item.SubtotalCents()
	}
	if subtotal != o.subtotalCents || o.subtotalCents-o.discountCents != o.totalCents {
		return ErrTotalMismatch
	}
	if o.discountCents < 0 || o.discountCents > o.subtotalCents {
		return ErrTotalMismatch
	}
	return nil
}
