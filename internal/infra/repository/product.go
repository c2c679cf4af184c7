package repository

import (
	"context"

	"giftcode-market/internal/domain/product"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"

	"github.com/google/uuid"
)

const insertProductSQL = `
INSERT INTO products (id, store_id, name, price_cents, delivery_type, in_stock)
VALUES ($1, $2, $3, $4, $5, $6)`

const updateProductSQL = `
UPDATE products SET name = $2, price_cents = $3, updated_at = now()
WHERE id = $1`

const setProductInStockSQL = `
UPDATE products SET in_stock = $2, updated_at = now()
WHERE id = $1`

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) Create(ctx context.Context, tx db.DBTX, p *product.Product) error {
	_, err := tx.Exec(ctx, insertProductSQL,
		p.ID(), p.StoreID(), p.Name(), p.PriceCents(), string(p.DeliveryType()), p.InStock())
	if err != nil {
		return infra.WrapRepoErr("failed to create product", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, tx db.DBTX, productID uuid.UUID, name string, priceCents int64) error {
	tag, err := tx.Exec(ctx, updateProductSQL, productID, name, priceCents)
	if err != nil {
		return infra.WrapRepoErr("failed to update product", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ProductRepository) SetInStock(ctx context.Context, tx db.DBTX, productID uuid.UUID, inStock bool) error {
	tag, err := tx.Exec(ctx, setProductInStockSQL, productID, inStock)
	if err != nil {
		return infra.WrapRepoErr("failed to update product stock flag", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return nil
}
