package shared

import (
	"context"
	"time"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/domain/order"
	"giftcode-market/internal/domain/product"
	"giftcode-market/internal/domain/store"
	"giftcode-market/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Orders() OrderRepository
	CodePool() CodePoolRepository
	DeliveredCodes() DeliveredCodeRepository
	Coupons() CouponRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Users() UserRepository
	Stores() StoreRepository
	Products() ProductRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductSnapshot, error)
	CouponByCode(ctx context.Context, code string) (*CouponSnapshot, error)
	UserHasCouponOrder(ctx context.Context, userID, couponID uuid.UUID) (bool, error)
	OrderByID(ctx context.Context, orderID uuid.UUID) (*OrderSnapshot, error)
	OrderItemByID(ctx context.Context, itemID uuid.UUID) (*OrderItemSnapshot, error)
	StoreByID(ctx context.Context, storeID uuid.UUID) (*StoreSnapshot, error)
	StoreByOwner(ctx context.Context, ownerID uuid.UUID) (*StoreSnapshot, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	DeliveredCodeByID(ctx context.Context, id uuid.UUID) (*DeliveredCodeRecord, error)
	DeliveredCodesByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]DeliveredCodeRecord, error)
	AvailableCodeCount(ctx context.Context, productID uuid.UUID) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, tx db.DBTX, o *order.Order) (uuid.UUID, error)
	UpdateStatus(ctx context.Context, tx db.DBTX, o *order.Order) error
	MarkItemFulfilled(ctx context.Context, tx db.DBTX, itemID uuid.UUID, at time.Time) error
}

type CodePoolRepository interface {
	// Append inserts the whole batch or nothing. Collisions with codes
	// already pooled for the product surface as DuplicateCodeError.
	Append(ctx context.Context, tx db.DBTX, batch *codepool.Batch) error
	FindExistingCodes(ctx context.Context, tx db.DBTX, productID uuid.UUID, candidates []string) ([]string, error)
	// ClaimCodes consumes up to quantity unconsumed codes for the order
	// item, oldest first, skipping rows locked by concurrent claims. It
	// may return fewer than quantity records.
	ClaimCodes(ctx context.Context, tx db.DBTX, productID, orderItemID uuid.UUID, quantity int32, at time.Time) ([]codepool.CodeRecord, error)
	CountAvailable(ctx context.Context, tx db.DBTX, productID uuid.UUID) (int64, error)
	// SyncProductAvailability recomputes the product's cached
	// available_codes counter and in_stock flag from the pool.
	SyncProductAvailability(ctx context.Context, tx db.DBTX, productID uuid.UUID) error
}

type DeliveredCodeRepository interface {
	CreateBatch(ctx context.Context, tx db.DBTX, records []DeliveredCodeRecord) error
	MarkViewed(ctx context.Context, tx db.DBTX, id uuid.UUID, at time.Time) error
}

type CouponRepository interface {
	IncrementUsage(ctx context.Context, tx db.DBTX, couponID uuid.UUID) error
}

type IdempotencyRepository interface {
	// TryInsert reports whether the key was newly claimed. An existing
	// key leaves the stored record untouched.
	TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, resultHash string, orderID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

type UserRepository interface {
	UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error
	// AttachStore links the owner to their new store and promotes the
	// account to the seller role in the same statement.
	AttachStore(ctx context.Context, tx db.DBTX, userID, storeID uuid.UUID) error
}

type StoreRepository interface {
	Create(ctx context.Context, tx db.DBTX, s *store.Store) error
	UpdateStatus(ctx context.Context, tx db.DBTX, s *store.Store) error
}

type ProductRepository interface {
	Create(ctx context.Context, tx db.DBTX, p *product.Product) error
	Update(ctx context.Context, tx db.DBTX, productID uuid.UUID, name string, priceCents int64) error
	// SetInStock flips the manual-delivery stock flag. Instant products
	// derive in_stock from the pool and never go through here.
	SetInStock(ctx context.Context, tx db.DBTX, productID uuid.UUID, inStock bool) error
}
