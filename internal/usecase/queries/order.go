package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/pkg/errs"
)

var (
	ErrOrderNotFound    = errs.New("order not found")
	ErrOrderAccess      = errs.New("order access denied")
	ErrInvalidCursor    = errs.New("invalid cursor")
	ErrOrderListFailure = errs.New("failed to list orders")
)

type OrderQueries interface {
	GetByID(ctx context.Context, actor AccessScope, id uuid.UUID) (*OrderView, error)
	// GetByIDSystem bypasses access checks for internal callers such as
	// idempotency replay and the fulfillment worker.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
	ListByStore(ctx context.Context, actor AccessScope, storeID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
	ListPendingVerification(ctx context.Context, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
}

type OrderViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindByUserIDAfter(ctx context.Context, userID uuid.UUID, afterAt time.Time, afterID uuid.UUID, limit int32) ([]*OrderListItem, error)
	FindByStoreAfter(ctx context.Context, storeID uuid.UUID, afterAt time.Time, afterID uuid.UUID, limit int32) ([]*OrderListItem, error)
	FindByStatusAfter(ctx context.Context, status string, afterAt time.Time, afterID uuid.UUID, limit int32) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actor AccessScope, id uuid.UUID) (*OrderView, error) {
	view, err := q.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSeeOrder(actor, view) {
		return nil, ErrOrderAccess
	}
	return view, nil
}

func (q *orderQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	return q.fetch(ctx, id)
}

func (q *orderQueriesImpl) fetch(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return view, nil
}

// Buyers see their own orders, admins see everything, sellers see orders
// that contain at least one of their store's items.
func canSeeOrder(actor AccessScope, view *OrderView) bool {
	if actor.IsAdmin() || view.UserID == actor.UserID {
		return true
	}
	for _, item := range view.Items {
		if actor.OwnsStore(item.StoreID) {
			return true
		}
	}
	return false
}

func (q *orderQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	afterAt, afterID, limit, err := decodeListArgs(after, limit)
	if err != nil {
		return nil, nil, err
	}
	rows, err := q.repo.FindByUserIDAfter(ctx, userID, afterAt, afterID, int32(limit))
	if err != nil {
		return nil, nil, errs.Mark(err, ErrOrderListFailure)
	}
	return rows, nextCursor(rows, limit), nil
}

func (q *orderQueriesImpl) ListByStore(ctx context.Context, actor AccessScope, storeID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	if !actor.IsAdmin() && !actor.OwnsStore(storeID) {
		return nil, nil, ErrOrderAccess
	}
	afterAt, afterID, limit, err := decodeListArgs(after, limit)
	if err != nil {
		return nil, nil, err
	}
	rows, err := q.repo.FindByStoreAfter(ctx, storeID, afterAt, afterID, int32(limit))
	if err != nil {
		return nil, nil, errs.Mark(err, ErrOrderListFailure)
	}
	return rows, nextCursor(rows, limit), nil
}

func (q *orderQueriesImpl) ListPendingVerification(ctx context.Context, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	afterAt, afterID, limit, err := decodeListArgs(after, limit)
	if err != nil {
		return nil, nil, err
	}
	rows, err := q.repo.FindByStatusAfter(ctx, "PAYMENT_SUBMITTED", afterAt, afterID, int32(limit))
	if err != nil {
		return nil, nil, errs.Mark(err, ErrOrderListFailure)
	}
	return rows, nextCursor(rows, limit), nil
}

func decodeListArgs(after *Cursor, limit int) (time.Time, uuid.UUID, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Zero time + nil UUID means "from the newest row"
	if after == nil || after.After == "" {
		return time.Time{}, uuid.Nil, limit, nil
	}

	afterAt, afterID, err := DecodeAfterCursor(after.After)
	if err != nil {
		return time.Time{}, uuid.Nil, 0, errs.Mark(err, ErrInvalidCursor)
	}
	return afterAt, afterID, limit, nil
}

func nextCursor(rows []*OrderListItem, limit int) *Cursor {
	if len(rows) < limit {
		return nil
	}
	last := rows[len(rows)-1]
	return &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
}
