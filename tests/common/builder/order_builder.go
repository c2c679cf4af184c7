//go:build unit || e2e

package builder

import (
	"time"

	domcoupon "giftcode-market/internal/domain/coupon"
	domorder "giftcode-market/internal/domain/order"
	"giftcode-market/internal/domain/product"
	reqdto "giftcode-market/internal/handler/dto/request"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
)

type lineItemSpec struct {
	productID    uuid.UUID
	storeID      uuid.UUID
	quantity     int
	priceCents   int64
	deliveryType product.DeliveryType
}

type OrderBuilder struct {
	UserID        uuid.UUID
	PaymentMethod domorder.PaymentMethod
	Coupon        *domcoupon.Coupon
	Now           time.Time

	items []lineItemSpec
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		UserID:        uuid.New(),
		PaymentMethod: domorder.PaymentCOD,
		Now:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) WithPaymentMethod(pm domorder.PaymentMethod) *OrderBuilder {
	b.PaymentMethod = pm
	return b
}

func (b *OrderBuilder) WithCoupon(c *domcoupon.Coupon) *OrderBuilder {
	b.Coupon = c
	return b
}

func (b *OrderBuilder) WithInstantItem(quantity int, priceCents int64) *OrderBuilder {
	b.items = append(b.items, lineItemSpec{
		productID:    uuid.New(),
		storeID:      uuid.New(),
		quantity:     quantity,
		priceCents:   priceCents,
		deliveryType: product.DeliveryInstant,
	})
	return b
}

func (b *OrderBuilder) WithManualItem(quantity int, priceCents int64) *OrderBuilder {
	b.items = append(b.items, lineItemSpec{
		productID:    uuid.New(),
		storeID:      uuid.New(),
		quantity:     quantity,
		priceCents:   priceCents,
		deliveryType: product.DeliveryManual,
	})
	return b
}

// BuildDomain creates the order through the factory, so tests exercise the
// same construction path as the command layer. Orders get one instant
// item when no items were specified.
func (b *OrderBuilder) BuildDomain() (*domorder.Order, error) {
	if len(b.items) == 0 {
		b.WithInstantItem(1, 1000)
	}

	items := make([]domorder.LineItem, 0, len(b.items))
	for _, spec := range b.items {
		item, err := domorder.NewLineItem(spec.productID, spec.storeID, spec.quantity, spec.priceCents, spec.deliveryType)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	factory := domorder.NewFactory(clock.NewMockClock(b.Now))
	return factory.CreateOrder(b.UserID, items, b.PaymentMethod, b.Coupon)
}

func (b *OrderBuilder) BuildCreateRequestDTO() reqdto.CreateOrderRequest {
	if len(b.items) == 0 {
		b.WithInstantItem(1, 1000)
	}

	items := make([]reqdto.OrderItemRequest, 0, len(b.items))
	for _, spec := range b.items {
		items = append(items, reqdto.OrderItemRequest{
			ProductID: spec.productID,
			Quantity:  int32(spec.quantity),
		})
	}
	return reqdto.CreateOrderRequest{
		Items:         items,
		PaymentMethod: b.PaymentMethod.String(),
	}
}

func (b *OrderBuilder) BuildOrderView() *queries.OrderView {
	if len(b.items) == 0 {
		b.WithInstantItem(1, 1000)
	}

	view := &queries.OrderView{
		ID:            uuid.New(),
		UserID:        b.UserID,
		UserEmail:     "buyer@example.com",
		Status:        string(b.PaymentMethod.InitialStatus()),
		PaymentMethod: b.PaymentMethod.String(),
		CreatedAt:     b.Now,
		UpdatedAt:     b.Now,
	}
	for _, spec := range b.items {
		view.Items = append(view.Items, queries.OrderItemView{
			ID:           uuid.New(),
			ProductID:    spec.productID,
			ProductName:  "Gift Card",
			StoreID:      spec.storeID,
			StoreName:    "Test Store",
			Quantity:     int32(spec.quantity),
			PriceCents:   spec.priceCents,
			DeliveryType: string(spec.deliveryType),
		})
		view.SubtotalCents += spec.priceCents * int64(spec.quantity)
	}
	view.TotalCents = view.SubtotalCents
	return view
}
