package queries

import (
	"context"

	"github.com/google/uuid"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/pkg/errs"
)

var (
	ErrProductNotFound    = errs.New("product not found")
	ErrDeliveredCodeQuery = errs.New("failed to query delivered codes")
)

type CodeQueries interface {
	ListMine(ctx context.Context, userID uuid.UUID) ([]*DeliveredCodeView, error)
	ListByOrder(ctx context.Context, actor AccessScope, orderID uuid.UUID) ([]*DeliveredCodeView, error)
	ListStoreDeliveries(ctx context.Context, actor AccessScope, storeID uuid.UUID) ([]*DeliveredCodeView, error)
	Availability(ctx context.Context, productID uuid.UUID) (*ProductAvailabilityView, error)
}

type DeliveredCodeReadStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*DeliveredCodeView, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*DeliveredCodeView, error)
	FindByStoreID(ctx context.Context, storeID uuid.UUID) ([]*DeliveredCodeView, error)
}

// AvailabilityReadStore answers stock-level questions. The production
// implementation caches counts in Redis in front of the code pool.
type AvailabilityReadStore interface {
	AvailableCount(ctx context.Context, productID uuid.UUID) (*ProductAvailabilityView, error)
}

type OrderAccessChecker interface {
	GetByID(ctx context.Context, actor AccessScope, id uuid.UUID) (*OrderView, error)
}

type codeQueriesImpl struct {
	codeStore    DeliveredCodeReadStore
	availability AvailabilityReadStore
	orders       OrderAccessChecker
}

func NewCodeQueries(codeStore DeliveredCodeReadStore, availability AvailabilityReadStore, orders OrderAccessChecker) CodeQueries {
	return &codeQueriesImpl{
		codeStore:    codeStore,
		availability: availability,
		orders:       orders,
	}
}

func (q *codeQueriesImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]*DeliveredCodeView, error) {
	views, err := q.codeStore.FindByUserID(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrDeliveredCodeQuery)
	}
	return views, nil
}

func (q *codeQueriesImpl) ListByOrder(ctx context.Context, actor AccessScope, orderID uuid.UUID) ([]*DeliveredCodeView, error) {
	// Delegates ownership checks so sellers and admins get the same
	// visibility rules as on the order itself.
	if _, err := q.orders.GetByID(ctx, actor, orderID); err != nil {
		return nil, err
	}

	views, err := q.codeStore.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, errs.Mark(err, ErrDeliveredCodeQuery)
	}
	return views, nil
}

func (q *codeQueriesImpl) ListStoreDeliveries(ctx context.Context, actor AccessScope, storeID uuid.UUID) ([]*DeliveredCodeView, error) {
	if !actor.IsAdmin() && !actor.OwnsStore(storeID) {
		return nil, ErrOrderAccess
	}

	views, err := q.codeStore.FindByStoreID(ctx, storeID)
	if err != nil {
		return nil, errs.Mark(err, ErrDeliveredCodeQuery)
	}
	return views, nil
}

func (q *codeQueriesImpl) Availability(ctx context.Context, productID uuid.UUID) (*ProductAvailabilityView, error) {
	view, err := q.availability.AvailableCount(ctx, productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return view, nil
}
