package order

import (
	"errors"
	"time"

	"giftcode-market/internal/domain/product"

	"github.com/google/uuid"
)

var (
	ErrNoLineItems        = errors.New("order must have at least one line item")
	ErrInvalidQuantity    = errors.New("line item quantity must be at least 1")
	ErrNegativePrice      = errors.New("line item price cannot be negative")
	ErrTotalMismatch      = errors.New("order total does not equal subtotal minus discount")
	ErrCancelAfterDeliver = errors.New("delivered orders cannot be cancelled automatically")
)

// CancelActor distinguishes a human-initiated cancellation from a
// system-initiated one. Automatic cancellation stops at code delivery;
// committed allocations are never rolled back.
type CancelActor string

const (
	CancelByUser   CancelActor = "user"
	CancelByAdmin  CancelActor = "admin"
	CancelBySystem CancelActor = "system"
)

// LineItem captures the product, quantity, and unit price at order time.
// Line items are immutable apart from the manual-fulfillment flag.
type LineItem struct {
	id           uuid.UUID
	productID    uuid.UUID
	storeID      uuid.UUID
	quantity     int
	priceCents   int64
	deliveryType product.DeliveryType
	fulfilled    bool
	fulfilledAt  *time.Time
}

func NewLineItem(productID, storeID uuid.UUID, quantity int, priceCents int64, deliveryType product.DeliveryType) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	if priceCents < 0 {
		return LineItem{}, ErrNegativePrice
	}
	return LineItem{
		id:           uuid.New(),
		productID:    productID,
		storeID:      storeID,
		quantity:     quantity,
		priceCents:   priceCents,
		deliveryType: deliveryType,
	}, nil
}

func ReconstructLineItem(
	id, productID, storeID uuid.UUID,
	quantity int,
	priceCents int64,
	deliveryType product.DeliveryType,
	fulfilled bool,
	fulfilledAt *time.Time,
) LineItem {
	return LineItem{
		id:           id,
		productID:    productID,
		storeID:      storeID,
		quantity:     quantity,
		priceCents:   priceCents,
		deliveryType: deliveryType,
		fulfilled:    fulfilled,
		fulfilledAt:  fulfilledAt,
	}
}

func (li LineItem) ID() uuid.UUID                      { return li.id }
func (li LineItem) ProductID() uuid.UUID               { return li.productID }
func (li LineItem) StoreID() uuid.UUID                 { return li.storeID }
func (li LineItem) Quantity() int                      { return li.quantity }
func (li LineItem) PriceCents() int64                  { return li.priceCents }
func (li LineItem) DeliveryType() product.DeliveryType { return li.deliveryType }
func (li LineItem) Fulfilled() bool                    { return li.fulfilled }
func (li LineItem) FulfilledAt() *time.Time            { return li.fulfilledAt }
func (li LineItem) SubtotalCents() int64               { return li.priceCents * int64(li.quantity) }

func (li LineItem) IsInstant() bool {
	return li.deliveryType == product.DeliveryInstant
}

type Order struct {
	id                uuid.UUID
	userID            uuid.UUID
	items             []LineItem
	paymentMethod     PaymentMethod
	status            Status
	subtotalCents     int64
	discountCents     int64
	totalCents        int64
	couponID          *uuid.UUID
	rejectionReason   *string
	createdAt         time.Time
	paymentVerifiedAt *time.Time
	codeDeliveredAt   *time.Time
	completedAt       *time.Time
	cancelledAt       *time.Time
	updatedAt         time.Time
}

func ReconstructOrder(
	id, userID uuid.UUID,
	items []LineItem,
	paymentMethod PaymentMethod,
	status Status,
	subtotalCents, discountCents, totalCents int64,
	couponID *uuid.UUID,
	rejectionReason *string,
	createdAt time.Time,
	paymentVerifiedAt, codeDeliveredAt, completedAt, cancelledAt *time.Time,
	updatedAt time.Time,
) *Order {
	return &Order{
		id:                id,
		userID:            userID,
		items:             items,
		paymentMethod:     paymentMethod,
		status:            status,
		subtotalCents:     subtotalCents,
		discountCents:     discountCents,
		totalCents:        totalCents,
		couponID:          couponID,
		rejectionReason:   rejectionReason,
		createdAt:         createdAt,
		paymentVerifiedAt: paymentVerifiedAt,
		codeDeliveredAt:   codeDeliveredAt,
		completedAt:       completedAt,
		cancelledAt:       cancelledAt,
		updatedAt:         updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Status machine. These methods are the only writers of o.status.
// ---------------------------------------------------------------------------

func (o *Order) SubmitPayment() error {
	next, err := nextStatus(o.status, "submit_payment")
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

func (o *Order) VerifyPayment(now time.Time) error {
	next, err := nextStatus(o.status, "verify_payment")
	if err != nil {
		return err
	}
	o.status = next
	o.paymentVerifiedAt = &now
	return nil
}

func (o *Order) RejectPayment(reason string) error {
	next, err := nextStatus(o.status, "reject_payment")
	if err != nil {
		return err
	}
	o.status = next
	o.rejectionReason = &reason
	return nil
}

func (o *Order) BeginProcessing() error {
	next, err := nextStatus(o.status, "begin_processing")
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

func (o *Order) MarkCodesDelivered(now time.Time) error {
	next, err := nextStatus(o.status, "deliver_codes")
	if err != nil {
		return err
	}
	o.status = next
	o.codeDeliveredAt = &now
	return nil
}

func (o *Order) Complete(now time.Time) error {
	next, err := nextStatus(o.status, "complete")
	if err != nil {
		return err
	}
	o.status = next
	o.completedAt = &now
	return nil
}

func (o *Order) Cancel(actor CancelActor, now time.Time) error {
	if o.status.IsTerminal() {
		return &InvalidTransitionError{From: o.status, Event: "cancel"}
	}
	if actor == CancelBySystem && (o.status == StatusCodeDelivered || o.codeDeliveredAt != nil) {
		return ErrCancelAfterDeliver
	}
	o.status = StatusCancelled
	o.cancelledAt = &now
	return nil
}

// MarkItemFulfilled records the manual-fulfillment acknowledgement for one
// line item. It is idempotent so an at-least-once event can land twice.
func (o *Order) MarkItemFulfilled(itemID uuid.UUID, now time.Time) error {
	for i := range o.items {
		if o.items[i].id == itemID {
			if !o.items[i].fulfilled {
				o.items[i].fulfilled = true
				o.items[i].fulfilledAt = &now
			}
			return nil
		}
	}
	return errors.New("line item not part of this order")
}

// AllItemsSatisfied reports whether every line item has either had its
// codes delivered (instant) or been acknowledged by the seller (manual).
// Instant items count as satisfied once the order reached CODE_DELIVERED.
func (o *Order) AllItemsSatisfied() bool {
	for _, item := range o.items {
		if item.IsInstant() {
			if o.codeDeliveredAt == nil {
				return false
			}
			continue
		}
		if !item.fulfilled {
			return false
		}
	}
	return true
}

func (o *Order) HasInstantItems() bool {
	for _, item := range o.items {
		if item.IsInstant() {
			return true
		}
	}
	return false
}

func (o *Order) HasManualItems() bool {
	for _, item := range o.items {
		if !item.IsInstant() {
			return true
		}
	}
	return false
}

func (o *Order) InstantItems() []LineItem {
	var items []LineItem
	for _, item := range o.items {
		if item.IsInstant() {
			items = append(items, item)
		}
	}
	return items
}

func (o *Order) ManualItems() []LineItem {
	var items []LineItem
	for _, item := range o.items {
		if !item.IsInstant() {
			items = append(items, item)
		}
	}
	return items
}

func (o *Order) ID() uuid.UUID                 { return o.id }
func (o *Order) UserID() uuid.UUID             { return o.userID }
func (o *Order) Items() []LineItem             { return o.items }
func (o *Order) PaymentMethod() PaymentMethod  { return o.paymentMethod }
func (o *Order) Status() Status                { return o.status }
func (o *Order) SubtotalCents() int64          { return o.subtotalCents }
func (o *Order) DiscountCents() int64          { return o.discountCents }
func (o *Order) TotalCents() int64             { return o.totalCents }
func (o *Order) CouponID() *uuid.UUID          { return o.couponID }
func (o *Order) RejectionReason() *string      { return o.rejectionReason }
func (o *Order) CreatedAt() time.Time          { return o.createdAt }
func (o *Order) PaymentVerifiedAt() *time.Time { return o.paymentVerifiedAt }
func (o *Order) CodeDeliveredAt() *time.Time   { return o.codeDeliveredAt }
func (o *Order) CompletedAt() *time.Time       { return o.completedAt }
func (o *Order) CancelledAt() *time.Time       { return o.cancelledAt }
func (o *Order) UpdatedAt() time.Time          { return o.updatedAt }
