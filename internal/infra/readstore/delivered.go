package readstore

import (
	"context"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/pkg/pgconv"
	"giftcode-market/internal/usecase/queries"
	"giftcode-market/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getDeliveredRecordSQL = `
SELECT dc.id, dc.code_id, pc.code, dc.order_id, dc.order_item_id, dc.user_id, dc.delivered_at, dc.viewed_at
FROM delivered_codes dc
JOIN product_codes pc ON pc.id = dc.code_id
WHERE dc.id = $1`

const getDeliveredRecordsByItemSQL = `
SELECT dc.id, dc.code_id, pc.code, dc.order_id, dc.order_item_id, dc.user_id, dc.delivered_at, dc.viewed_at
FROM delivered_codes dc
JOIN product_codes pc ON pc.id = dc.code_id
WHERE dc.order_item_id = $1
ORDER BY dc.delivered_at, dc.id`

const listDeliveredViewsByUserSQL = `
SELECT dc.id, pc.code, pc.product_id, p.name, dc.order_id, dc.order_item_id, dc.delivered_at, dc.viewed_at
FROM delivered_codes dc
JOIN product_codes pc ON pc.id = dc.code_id
JOIN products p ON p.id = pc.product_id
WHERE dc.user_id = $1
ORDER BY dc.delivered_at DESC, dc.id DESC`

const listDeliveredViewsByOrderSQL = `
SELECT dc.id, pc.code, pc.product_id, p.name, dc.order_id, dc.order_item_id, dc.delivered_at, dc.viewed_at
FROM delivered_codes dc
JOIN product_codes pc ON pc.id = dc.code_id
JOIN products p ON p.id = pc.product_id
WHERE dc.order_id = $1
ORDER BY dc.delivered_at, dc.id`

const listDeliveredViewsByStoreSQL = `
SELECT dc.id, pc.code, pc.product_id, p.name, dc.order_id, dc.order_item_id, dc.delivered_at, dc.viewed_at
FROM delivered_codes dc
JOIN product_codes pc ON pc.id = dc.code_id
JOIN products p ON p.id = pc.product_id
WHERE p.store_id = $1
ORDER BY dc.delivered_at DESC, dc.id DESC`

type DeliveredCodeReadStore struct {
	db db.DBTX
}

func NewDeliveredCodeReadStore(db db.DBTX) *DeliveredCodeReadStore {
	return &DeliveredCodeReadStore{db: db}
}

func (r *DeliveredCodeReadStore) RecordByID(ctx context.Context, id uuid.UUID) (*shared.DeliveredCodeRecord, error) {
	var record shared.DeliveredCodeRecord
	var viewedAt pgtype.Timestamptz

	err := r.db.QueryRow(ctx, getDeliveredRecordSQL, id).Scan(
		&record.ID,
		&record.CodeID,
		&record.Code,
		&record.OrderID,
		&record.OrderItemID,
		&record.UserID,
		&record.DeliveredAt,
		&viewedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("delivered code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find delivered code", err)
	}

	record.ViewedAt = pgconv.TimePtrFromPgtype(viewedAt)
	return &record, nil
}

func (r *DeliveredCodeReadStore) RecordsByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]shared.DeliveredCodeRecord, error) {
	rows, err := r.db.Query(ctx, getDeliveredRecordsByItemSQL, orderItemID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find delivered codes by item", err)
	}
	defer rows.Close()

	var records []shared.DeliveredCodeRecord
	for rows.Next() {
		var record shared.DeliveredCodeRecord
		var viewedAt pgtype.Timestamptz
		if err := rows.Scan(
			&record.ID,
			&record.CodeID,
			&record.Code,
			&record.OrderID,
			&record.OrderItemID,
			&record.UserID,
			&record.DeliveredAt,
			&viewedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan delivered code", err)
		}
		record.ViewedAt = pgconv.TimePtrFromPgtype(viewedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read delivered codes", err)
	}
	return records, nil
}

func (r *DeliveredCodeReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.DeliveredCodeView, error) {
	return r.listViews(ctx, listDeliveredViewsByUserSQL, userID)
}

func (r *DeliveredCodeReadStore) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*queries.DeliveredCodeView, error) {
	return r.listViews(ctx, listDeliveredViewsByOrderSQL, orderID)
}

func (r *DeliveredCodeReadStore) FindByStoreID(ctx context.Context, storeID uuid.UUID) ([]*queries.DeliveredCodeView, error) {
	return r.listViews(ctx, listDeliveredViewsByStoreSQL, storeID)
}

func (r *DeliveredCodeReadStore) listViews(ctx context.Context, sql string, arg any) ([]*queries.DeliveredCodeView, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list delivered codes", err)
	}
	defer rows.Close()

	var views []*queries.DeliveredCodeView
	for rows.Next() {
		var view queries.DeliveredCodeView
		var viewedAt pgtype.Timestamptz
		if err := rows.Scan(
			&view.ID,
			&view.Code,
			&view.ProductID,
			&view.ProductName,
			&view.OrderID,
			&view.OrderItemID,
			&view.DeliveredAt,
			&viewedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan delivered code view", err)
		}
		view.ViewedAt = pgconv.TimePtrFromPgtype(viewedAt)
		views = append(views, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read delivered code views", err)
	}
	return views, nil
}
