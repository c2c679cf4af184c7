package readstore

import (
	"context"
	"time"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/pkg/pgconv"
	"giftcode-market/internal/usecase/queries"
	"giftcode-market/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getOrderViewSQL = `
SELECT
	o.id, o.user_id, u.email, o.status, o.payment_method,
	o.subtotal_cents, o.discount_cents, o.total_cents,
	o.coupon_id, c.code AS coupon_code, o.rejection_reason,
	o.payment_verified_at, o.code_delivered_at, o.completed_at, o.cancelled_at,
	o.created_at, o.updated_at
FROM orders o
JOIN users u ON u.id = o.user_id
LEFT JOIN coupons c ON c.id = o.coupon_id
WHERE o.id = $1`

const getOrderItemViewsSQL = `
SELECT
	oi.id, oi.product_id, p.name AS product_name, oi.store_id, s.name AS store_name,
	oi.quantity, oi.price_cents, oi.delivery_type, oi.fulfilled, oi.fulfilled_at
FROM order_items oi
JOIN products p ON p.id = oi.product_id
JOIN stores s ON s.id = oi.store_id
WHERE oi.order_id = $1
ORDER BY oi.id`

const getOrderSnapshotSQL = `
SELECT
	id, user_id, status, payment_method,
	subtotal_cents, discount_cents, total_cents,
	coupon_id, rejection_reason,
	payment_verified_at, code_delivered_at, completed_at, cancelled_at,
	created_at, updated_at
FROM orders
WHERE id = $1`

const getOrderItemSnapshotsSQL = `
SELECT id, order_id, product_id, store_id, quantity, price_cents, delivery_type, fulfilled, fulfilled_at
FROM order_items
WHERE order_id = $1
ORDER BY id`

const getOrderItemSnapshotByIDSQL = `
SELECT id, order_id, product_id, store_id, quantity, price_cents, delivery_type, fulfilled, fulfilled_at
FROM order_items
WHERE id = $1`

const listOrdersByUserFirstPageSQL = `
SELECT o.id, o.status, o.payment_method, o.total_cents,
	(SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
	o.created_at
FROM orders o
WHERE o.user_id = $1
ORDER BY o.created_at DESC, o.id DESC
LIMIT $2`

const listOrdersByUserKeysetSQL = `
SELECT o.id, o.status, o.payment_method, o.total_cents,
	(SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
	o.created_at
FROM orders o
WHERE o.user_id = $1 AND (o.created_at, o.id) < ($2, $3)
ORDER BY o.created_at DESC, o.id DESC
LIMIT $4`

const listOrdersByStoreFirstPageSQL = `
SELECT o.id, o.status, o.payment_method, o.total_cents,
	(SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
	o.created_at
FROM orders o
WHERE EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.store_id = $1)
ORDER BY o.created_at DESC, o.id DESC
LIMIT $2`

const listOrdersByStoreKeysetSQL = `
SELECT o.id, o.status, o.payment_method, o.total_cents,
	(SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
	o.created_at
FROM orders o
WHERE EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.store_id = $1)
	AND (o.created_at, o.id) < ($2, $3)
ORDER BY o.created_at DESC, o.id DESC
LIMIT $4`

const listOrdersByStatusFirstPageSQL = `
SELECT o.id, o.status, o.payment_method, o.total_cents,
	(SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
	o.created_at
FROM orders o
WHERE o.status = $1
ORDER BY o.created_at DESC, o.id DESC
LIMIT $2`

const listOrdersByStatusKeysetSQL = `
SELECT o.id, o.status, o.payment_method, o.total_cents,
	(SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
	o.created_at
FROM orders o
WHERE o.status = $1 AND (o.created_at, o.id) < ($2, $3)
ORDER BY o.created_at DESC, o.id DESC
LIMIT $4`

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	var view queries.OrderView
	var couponID pgtype.UUID
	var couponCode, rejectionReason pgtype.Text
	var verifiedAt, deliveredAt, completedAt, cancelledAt pgtype.Timestamptz

	err := r.db.QueryRow(ctx, getOrderViewSQL, id).Scan(
		&view.ID,
		&view.UserID,
		&view.UserEmail,
		&view.Status,
		&view.PaymentMethod,
		&view.SubtotalCents,
		&view.DiscountCents,
		&view.TotalCents,
		&couponID,
		&couponCode,
		&rejectionReason,
		&verifiedAt,
		&deliveredAt,
		&completedAt,
		&cancelledAt,
		&view.CreatedAt,
		&view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by ID", err)
	}

	view.CouponID = pgconv.UUIDPtrFromPgtype(couponID)
	view.CouponCode = pgconv.StringPtrFromPgtype(couponCode)
	view.RejectionReason = pgconv.StringPtrFromPgtype(rejectionReason)
	view.PaymentVerifiedAt = pgconv.TimePtrFromPgtype(verifiedAt)
	view.CodeDeliveredAt = pgconv.TimePtrFromPgtype(deliveredAt)
	view.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	view.CancelledAt = pgconv.TimePtrFromPgtype(cancelledAt)

	items, err := r.findItemViews(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Items = items
	return &view, nil
}

func (r *OrderReadStore) findItemViews(ctx context.Context, orderID uuid.UUID) ([]queries.OrderItemView, error) {
	rows, err := r.db.Query(ctx, getOrderItemViewsSQL, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order items", err)
	}
	defer rows.Close()

	var items []queries.OrderItemView
	for rows.Next() {
		var item queries.OrderItemView
		var fulfilledAt pgtype.Timestamptz
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ProductName,
			&item.StoreID,
			&item.StoreName,
			&item.Quantity,
			&item.PriceCents,
			&item.DeliveryType,
			&item.Fulfilled,
			&fulfilledAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		item.FulfilledAt = pgconv.TimePtrFromPgtype(fulfilledAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order items", err)
	}
	return items, nil
}

// SnapshotByID loads the write-side view of an order for rehydrating the
// aggregate inside a command transaction.
func (r *OrderReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	var snap shared.OrderSnapshot
	var couponID pgtype.UUID
	var rejectionReason pgtype.Text
	var verifiedAt, deliveredAt, completedAt, cancelledAt pgtype.Timestamptz

	err := r.db.QueryRow(ctx, getOrderSnapshotSQL, id).Scan(
		&snap.ID,
		&snap.UserID,
		&snap.Status,
		&snap.PaymentMethod,
		&snap.SubtotalCents,
		&snap.DiscountCents,
		&snap.TotalCents,
		&couponID,
		&rejectionReason,
		&verifiedAt,
		&deliveredAt,
		&completedAt,
		&cancelledAt,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order snapshot", err)
	}

	snap.CouponID = pgconv.UUIDPtrFromPgtype(couponID)
	snap.RejectionReason = pgconv.StringPtrFromPgtype(rejectionReason)
	snap.PaymentVerifiedAt = pgconv.TimePtrFromPgtype(verifiedAt)
	snap.CodeDeliveredAt = pgconv.TimePtrFromPgtype(deliveredAt)
	snap.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	snap.CancelledAt = pgconv.TimePtrFromPgtype(cancelledAt)

	rows, err := r.db.Query(ctx, getOrderItemSnapshotsSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order item snapshots", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItemSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snap.Items = append(snap.Items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order item snapshots", err)
	}
	return &snap, nil
}

func (r *OrderReadStore) ItemSnapshotByID(ctx context.Context, itemID uuid.UUID) (*shared.OrderItemSnapshot, error) {
	row := r.db.QueryRow(ctx, getOrderItemSnapshotByIDSQL, itemID)
	item, err := scanItemSnapshot(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order item not found", err, infra.KindNotFound)
		}
		return nil, err
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItemSnapshot(row rowScanner) (*shared.OrderItemSnapshot, error) {
	var item shared.OrderItemSnapshot
	var fulfilledAt pgtype.Timestamptz
	if err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.StoreID,
		&item.Quantity,
		&item.PriceCents,
		&item.DeliveryType,
		&item.Fulfilled,
		&fulfilledAt,
	); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, err
		}
		return nil, infra.WrapRepoErr("failed to scan order item snapshot", err)
	}
	item.FulfilledAt = pgconv.TimePtrFromPgtype(fulfilledAt)
	return &item, nil
}

func (r *OrderReadStore) FindByUserIDAfter(ctx context.Context, userID uuid.UUID, afterAt time.Time, afterID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	if afterAt.IsZero() {
		return r.listOrders(ctx, listOrdersByUserFirstPageSQL, userID, limit)
	}
	return r.listOrders(ctx, listOrdersByUserKeysetSQL, userID, afterAt, afterID, limit)
}

func (r *OrderReadStore) FindByStoreAfter(ctx context.Context, storeID uuid.UUID, afterAt time.Time, afterID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	if afterAt.IsZero() {
		return r.listOrders(ctx, listOrdersByStoreFirstPageSQL, storeID, limit)
	}
	return r.listOrders(ctx, listOrdersByStoreKeysetSQL, storeID, afterAt, afterID, limit)
}

func (r *OrderReadStore) FindByStatusAfter(ctx context.Context, status string, afterAt time.Time, afterID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	if afterAt.IsZero() {
		return r.listOrders(ctx, listOrdersByStatusFirstPageSQL, status, limit)
	}
	return r.listOrders(ctx, listOrdersByStatusKeysetSQL, status, afterAt, afterID, limit)
}

func (r *OrderReadStore) listOrders(ctx context.Context, sql string, args ...any) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	var result []*queries.OrderListItem
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(
			&item.ID,
			&item.Status,
			&item.PaymentMethod,
			&item.TotalCents,
			&item.ItemCount,
			&item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order list", err)
	}
	return result, nil
}
