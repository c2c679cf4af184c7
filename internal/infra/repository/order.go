package repository

import (
	"context"
	"time"

	"giftcode-market/internal/domain/order"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"

	"github.com/google/uuid"
)

const insertOrderSQL = `
INSERT INTO orders (
	id, user_id, status, payment_method,
	subtotal_cents, discount_cents, total_cents,
	coupon_id, rejection_reason,
	payment_verified_at, code_delivered_at, completed_at, cancelled_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`

const insertOrderItemSQL = `
INSERT INTO order_items (
	id, order_id, product_id, store_id, quantity, price_cents, delivery_type
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

const updateOrderStatusSQL = `
UPDATE orders SET
	status = $2,
	rejection_reason = $3,
	payment_verified_at = $4,
	code_delivered_at = $5,
	completed_at = $6,
	cancelled_at = $7,
	updated_at = now()
WHERE id = $1`

const markItemFulfilledSQL = `
UPDATE order_items SET fulfilled = TRUE, fulfilled_at = $2
WHERE id = $1 AND NOT fulfilled`

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Create(ctx context.Context, tx db.DBTX, o *order.Order) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, insertOrderSQL,
		o.ID(),
		o.UserID(),
		o.Status().String(),
		o.PaymentMethod().String(),
		o.SubtotalCents(),
		o.DiscountCents(),
		o.TotalCents(),
		o.CouponID(),
		o.RejectionReason(),
		o.PaymentVerifiedAt(),
		o.CodeDeliveredAt(),
		o.CompletedAt(),
		o.CancelledAt(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create order", err)
	}

	for _, item := range o.Items() {
		_, err = tx.Exec(ctx, insertOrderItemSQL,
			item.ID(),
			id,
			item.ProductID(),
			item.StoreID(),
			int32(item.Quantity()),
			item.PriceCents(),
			string(item.DeliveryType()),
		)
		if err != nil {
			return uuid.Nil, infra.WrapRepoErr("failed to create order item", err)
		}
	}

	return id, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tx db.DBTX, o *order.Order) error {
	tag, err := tx.Exec(ctx, updateOrderStatusSQL,
		o.ID(),
		o.Status().String(),
		o.RejectionReason(),
		o.PaymentVerifiedAt(),
		o.CodeDeliveredAt(),
		o.CompletedAt(),
		o.CancelledAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found for status update", nil, infra.KindNotFound)
	}
	return nil
}

func (r *OrderRepository) MarkItemFulfilled(ctx context.Context, tx db.DBTX, itemID uuid.UUID, at time.Time) error {
	// Zero rows means the item was already fulfilled, which is fine
	_, err := tx.Exec(ctx, markItemFulfilledSQL, itemID, at)
	if err != nil {
		return infra.WrapRepoErr("failed to mark order item fulfilled", err)
	}
	return nil
}
