package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/infra/readstore"
	"giftcode-market/internal/infra/repository"
	"giftcode-market/internal/pkg/errs"
	"giftcode-market/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return u.runReadOnlyTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, u.pool)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func (u *PostgresUoW) runReadOnlyTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, pgxTx); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// Mask the high bit to keep the value positive
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	orderRepo       shared.OrderRepository
	codePoolRepo    shared.CodePoolRepository
	deliveredRepo   shared.DeliveredCodeRepository
	couponRepo      shared.CouponRepository
	idempotencyRepo shared.IdempotencyRepository
	notifyRepo      shared.NotificationRepository
	userRepo        shared.UserRepository
	storeRepo       shared.StoreRepository
	productRepo     shared.ProductRepository
	commandReads    shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Orders() shared.OrderRepository {
	if t.orderRepo == nil {
		t.orderRepo = repository.NewOrderRepository()
	}
	return t.orderRepo
}

func (t *pgTx) CodePool() shared.CodePoolRepository {
	if t.codePoolRepo == nil {
		t.codePoolRepo = repository.NewCodePoolRepository()
	}
	return t.codePoolRepo
}

func (t *pgTx) DeliveredCodes() shared.DeliveredCodeRepository {
	if t.deliveredRepo == nil {
		t.deliveredRepo = repository.NewDeliveredCodeRepository()
	}
	return t.deliveredRepo
}

func (t *pgTx) Coupons() shared.CouponRepository {
	if t.couponRepo == nil {
		t.couponRepo = repository.NewCouponRepository()
	}
	return t.couponRepo
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	if t.idempotencyRepo == nil {
		t.idempotencyRepo = repository.NewIdempotencyRepository()
	}
	return t.idempotencyRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notifyRepo == nil {
		t.notifyRepo = repository.NewNotificationRepository()
	}
	return t.notifyRepo
}

func (t *pgTx) Users() shared.UserRepository {
	if t.userRepo == nil {
		t.userRepo = repository.NewUserRepository()
	}
	return t.userRepo
}

func (t *pgTx) Stores() shared.StoreRepository {
	if t.storeRepo == nil {
		t.storeRepo = repository.NewStoreRepository()
	}
	return t.storeRepo
}

func (t *pgTx) Products() shared.ProductRepository {
	if t.productRepo == nil {
		t.productRepo = repository.NewProductRepository()
	}
	return t.productRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	productStore     *readstore.ProductReadStore
	couponStore      *readstore.CouponReadStore
	orderStore       *readstore.OrderReadStore
	idempotencyStore *readstore.IdempotencyReadStore
	deliveredStore   *readstore.DeliveredCodeReadStore
	codePoolStore    *readstore.CodePoolReadStore
	storeStore       *readstore.StoreReadStore
}

func (r *commandReads) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]shared.ProductSnapshot, error) {
	if r.productStore == nil {
		r.productStore = readstore.NewProductReadStore(r.dbtx)
	}
	return r.productStore.SnapshotsByIDs(ctx, ids)
}

func (r *commandReads) CouponByCode(ctx context.Context, code string) (*shared.CouponSnapshot, error) {
	if r.couponStore == nil {
		r.couponStore = readstore.NewCouponReadStore(r.dbtx)
	}

	row, err := r.couponStore.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	snapshot := &shared.CouponSnapshot{
		ID:               row.ID,
		Code:             row.Code,
		DiscountType:     row.DiscountType,
		DiscountValue:    row.DiscountValue,
		MinOrderCents:    row.MinOrderCents,
		MaxDiscountCents: row.MaxDiscountCents,
		ExpiresAt:        row.ExpiresAt,
		MaxUses:          row.MaxUses,
		UsedCount:        row.UsedCount,
		OneTimePerUser:   row.OneTimePerUser,
		IsActive:         row.IsActive,
	}
	return snapshot, nil
}

func (r *commandReads) UserHasCouponOrder(ctx context.Context, userID, couponID uuid.UUID) (bool, error) {
	if r.couponStore == nil {
		r.couponStore = readstore.NewCouponReadStore(r.dbtx)
	}
	return r.couponStore.HasUserOrderWithCoupon(ctx, userID, couponID)
}

func (r *commandReads) OrderByID(ctx context.Context, orderID uuid.UUID) (*shared.OrderSnapshot, error) {
	if r.orderStore == nil {
		r.orderStore = readstore.NewOrderReadStore(r.dbtx)
	}
	return r.orderStore.SnapshotByID(ctx, orderID)
}

func (r *commandReads) OrderItemByID(ctx context.Context, itemID uuid.UUID) (*shared.OrderItemSnapshot, error) {
	if r.orderStore == nil {
		r.orderStore = readstore.NewOrderReadStore(r.dbtx)
	}
	return r.orderStore.ItemSnapshotByID(ctx, itemID)
}

func (r *commandReads) StoreByID(ctx context.Context, storeID uuid.UUID) (*shared.StoreSnapshot, error) {
	if r.storeStore == nil {
		r.storeStore = readstore.NewStoreReadStore(r.dbtx)
	}
	return r.storeStore.SnapshotByID(ctx, storeID)
}

func (r *commandReads) StoreByOwner(ctx context.Context, ownerID uuid.UUID) (*shared.StoreSnapshot, error) {
	if r.storeStore == nil {
		r.storeStore = readstore.NewStoreReadStore(r.dbtx)
	}
	return r.storeStore.SnapshotByOwner(ctx, ownerID)
}

func (r *commandReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	if r.idempotencyStore == nil {
		r.idempotencyStore = readstore.NewIdempotencyReadStore(r.dbtx)
	}
	return r.idempotencyStore.Get(ctx, key, userID)
}

func (r *commandReads) DeliveredCodeByID(ctx context.Context, id uuid.UUID) (*shared.DeliveredCodeRecord, error) {
	if r.deliveredStore == nil {
		r.deliveredStore = readstore.NewDeliveredCodeReadStore(r.dbtx)
	}
	return r.deliveredStore.RecordByID(ctx, id)
}

func (r *commandReads) DeliveredCodesByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]shared.DeliveredCodeRecord, error) {
	if r.deliveredStore == nil {
		r.deliveredStore = readstore.NewDeliveredCodeReadStore(r.dbtx)
	}
	return r.deliveredStore.RecordsByOrderItem(ctx, orderItemID)
}

func (r *commandReads) AvailableCodeCount(ctx context.Context, productID uuid.UUID) (int64, error) {
	if r.codePoolStore == nil {
		r.codePoolStore = readstore.NewCodePoolReadStore(r.dbtx)
	}
	return r.codePoolStore.CountAvailable(ctx, productID)
}
