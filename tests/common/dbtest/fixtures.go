//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123", precomputed to keep fixtures fast
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO users (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (lower(email)) DO NOTHING",
		userID, email, testPasswordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		err = db.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&userID)
		require.NoError(t, err)
	}

	return userID
}

// CreateTestSeller creates a seller account with its own approved store.
// The store owner FK and the user's store link are circular, so the user
// is inserted first and linked afterwards.
func CreateTestSeller(t *testing.T, db DBLike, email, storeName string) (userID, storeID uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	userID = CreateTestUser(t, db, email, "seller")
	storeID = uuid.New()

	_, err := db.Exec(ctx,
		"INSERT INTO stores (id, owner_id, name, status) VALUES ($1, $2, $3, 'approved')",
		storeID, userID, storeName)
	require.NoError(t, err)

	_, err = db.Exec(ctx, "UPDATE users SET store_id = $1 WHERE id = $2", storeID, userID)
	require.NoError(t, err)

	return userID, storeID
}

func CreateTestProduct(t *testing.T, db DBLike, storeID uuid.UUID, name string, priceCents int64, deliveryType string) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO products (id, store_id, name, price_cents, delivery_type) VALUES ($1, $2, $3, $4, $5)",
		productID, storeID, name, priceCents, deliveryType)
	require.NoError(t, err)

	return productID
}

// SeedProductCodes pools codes with strictly increasing created_at so
// claim order stays deterministic, and refreshes the product counters.
func SeedProductCodes(t *testing.T, db DBLike, productID uuid.UUID, codes ...string) {
	t.Helper()

	ctx := context.Background()
	base := time.Now().Add(-time.Minute)
	for i, code := range codes {
		_, err := db.Exec(ctx,
			"INSERT INTO product_codes (id, product_id, code, created_at) VALUES ($1, $2, $3, $4)",
			uuid.New(), productID, code, base.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, err)
	}

	_, err := db.Exec(ctx, `
		UPDATE products p SET
		    available_codes = (SELECT count(*) FROM product_codes c WHERE c.product_id = p.id AND NOT c.consumed),
		    in_stock        = EXISTS (SELECT 1 FROM product_codes c WHERE c.product_id = p.id AND NOT c.consumed)
		WHERE p.id = $1`, productID)
	require.NoError(t, err)
}

func CountAvailableCodes(t *testing.T, db DBLike, productID uuid.UUID) int64 {
	t.Helper()

	var n int64
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM product_codes WHERE product_id = $1 AND NOT consumed", productID).Scan(&n)
	require.NoError(t, err)
	return n
}

func CreateTestCoupon(t *testing.T, db DBLike, code, discountType string, discountValue int64) uuid.UUID {
	t.Helper()

	couponID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO coupons (id, code, discount_type, discount_value, is_active) VALUES ($1, $2, $3, $4, true)",
		couponID, code, discountType, discountValue)
	require.NoError(t, err)

	return couponID
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables between subtests
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})

	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}
	return nil
}
