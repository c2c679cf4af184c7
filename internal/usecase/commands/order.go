package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"giftcode-market/internal/domain/coupon"
	"giftcode-market/internal/domain/order"
	"giftcode-market/internal/domain/product"
	reqdto "giftcode-market/internal/handler/dto/request"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/pkg/errs"
	"giftcode-market/internal/usecase/queries"
	"giftcode-market/internal/usecase/shared"
)

var (
	ErrProductNotFound         = errs.New("product not found")
	ErrStoreNotApproved        = errs.New("store not approved")
	ErrProductUnavailable      = errs.New("product unavailable")
	ErrInsufficientStock       = errs.New("not enough codes available")
	ErrCouponNotFound          = errs.New("coupon not found")
	ErrInvalidCoupon           = errs.New("invalid coupon")
	ErrOrderNotFound           = errs.New("order not found")
	ErrNotOrderOwner           = errs.New("not the order owner")
	ErrOrderNotCancellable     = errs.New("order cannot be cancelled")
	ErrDuplicateRequest        = errs.New("idempotency key reused with different request")
	ErrIdempotencyInProgress   = errs.New("request with this idempotency key is in progress")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

const createOrderEndpoint = "POST /orders"

type CreateOrderResult struct {
	Order      *queries.OrderView
	IsReplayed bool
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, req reqdto.CreateOrderRequest, userID uuid.UUID, idempotencyKey uuid.UUID) (*CreateOrderResult, error)
	CancelOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) error
}

type orderCommandsImpl struct {
	uow          shared.UnitOfWork
	orderFactory *order.Factory
	orderQueries queries.OrderQueries
	clock        clock.Clock
}

func NewOrderCommands(
	uow shared.UnitOfWork,
	orderFactory *order.Factory,
	orderQueries queries.OrderQueries,
	clock clock.Clock,
) OrderCommands {
	return &orderCommandsImpl{
		uow:          uow,
		orderFactory: orderFactory,
		orderQueries: orderQueries,
		clock:        clock,
	}
}

func (c *orderCommandsImpl) CreateOrder(
	ctx context.Context,
	req reqdto.CreateOrderRequest,
	userID uuid.UUID,
	idempotencyKey uuid.UUID,
) (*CreateOrderResult, error) {
	requestHash := calculateRequestHash(req)
	expiresAt := c.clock.Now().Add(24 * time.Hour)

	replayed, err := c.claimIdempotencyKey(ctx, idempotencyKey, userID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &CreateOrderResult{Order: replayed, IsReplayed: true}, nil
	}

	view, err := c.createNewOrder(ctx, req, userID, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return &CreateOrderResult{Order: view, IsReplayed: false}, nil
}

// claimIdempotencyKey returns a non-nil view when the key already holds a
// completed order and this request is a replay.
func (c *orderCommandsImpl) claimIdempotencyKey(
	ctx context.Context,
	key, userID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.OrderView, error) {
	var record *shared.IdempotencyRecord

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		inserted, insErr := tx.Idempotency().TryInsert(ctx, tx.DB(), key, userID, createOrderEndpoint, requestHash, expiresAt)
		if insErr != nil {
			return insErr
		}
		if inserted {
			return nil
		}
		rec, getErr := tx.Reads().IdempotencyByKey(ctx, key, userID)
		if getErr != nil {
			return getErr
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	if record == nil {
		// Key was newly claimed, this is a fresh request
		return nil, nil
	}

	switch record.Status {
	case "completed":
		if record.RequestHash != requestHash {
			return nil, ErrDuplicateRequest
		}
		if record.ResultOrderID == nil {
			return nil, errs.Mark(errs.New("completed request missing result order ID"), ErrIdempotencyCheckFailed)
		}
		return c.orderQueries.GetByIDSystem(ctx, *record.ResultOrderID)

	case "processing":
		if record.RequestHash != requestHash {
			return nil, ErrDuplicateRequest
		}
		return nil, ErrIdempotencyInProgress

	default:
		return nil, errs.Mark(errs.New("invalid idempotency key status"), ErrIdempotencyCheckFailed)
	}
}

func (c *orderCommandsImpl) createNewOrder(
	ctx context.Context,
	req reqdto.CreateOrderRequest,
	userID, idempotencyKey uuid.UUID,
) (*queries.OrderView, error) {
	reads := c.uow.CommandReads()

	items, subtotal, err := c.buildLineItems(ctx, reads, req.Items)
	if err != nil {
		return nil, err
	}

	couponEntity, err := c.resolveCoupon(ctx, reads, userID, req.GetCouponCode(), subtotal)
	if err != nil {
		return nil, err
	}

	method, err := order.NewPaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	orderEntity, err := c.orderFactory.CreateOrder(userID, items, method, couponEntity)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	var orderID uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, txErr := tx.Orders().Create(ctx, tx.DB(), orderEntity)
		if txErr != nil {
			return txErr
		}
		orderID = id

		if couponEntity != nil {
			if txErr = tx.Coupons().IncrementUsage(ctx, tx.DB(), couponEntity.ID()); txErr != nil {
				return txErr
			}
		}

		if txErr = enqueueOrderEvent(ctx, tx, c.clock.Now(), "order.placed", orderID, string(orderEntity.Status())); txErr != nil {
			return txErr
		}

		// COD orders start fulfillable, so sellers of manual items are
		// notified here; bank-transfer orders wait until payment is verified.
		if orderEntity.Status() == order.StatusPending && orderEntity.HasManualItems() {
			snap, txErr := tx.Reads().OrderByID(ctx, orderID)
			if txErr != nil {
				return txErr
			}
			if txErr = enqueueManualFulfillmentNotices(ctx, tx, c.clock.Now(), snap); txErr != nil {
				return txErr
			}
		}

		resultHash := calculateIDHash(orderID)
		return tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), idempotencyKey, userID, resultHash, orderID)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Read-after-write through the read store for the full view
	view, err := c.orderQueries.GetByIDSystem(ctx, orderID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (c *orderCommandsImpl) buildLineItems(
	ctx context.Context,
	reads shared.CommandReads,
	reqItems []reqdto.OrderItemRequest,
) ([]order.LineItem, int64, error) {
	ids := make([]uuid.UUID, 0, len(reqItems))
	for _, it := range reqItems {
		ids = append(ids, it.ProductID)
	}

	snapshots, err := reads.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	byID := make(map[uuid.UUID]shared.ProductSnapshot, len(snapshots))
	for _, s := range snapshots {
		byID[s.ID] = s
	}

	items := make([]order.LineItem, 0, len(reqItems))
	var subtotal int64
	for _, it := range reqItems {
		snap, ok := byID[it.ProductID]
		if !ok {
			return nil, 0, ErrProductNotFound
		}
		if snap.StoreStatus != "approved" {
			return nil, 0, ErrStoreNotApproved
		}
		if snap.DeliveryType == string(product.DeliveryInstant) && !snap.InStock {
			return nil, 0, ErrProductUnavailable
		}
		if snap.DeliveryType == string(product.DeliveryInstant) && snap.AvailableCodes < int(it.Quantity) {
			return nil, 0, ErrInsufficientStock
		}

		deliveryType, dtErr := product.NewDeliveryType(snap.DeliveryType)
		if dtErr != nil {
			return nil, 0, errs.Mark(dtErr, ErrDomainValidation)
		}

		item, liErr := order.NewLineItem(snap.ID, snap.StoreID, int(it.Quantity), snap.PriceCents, deliveryType)
		if liErr != nil {
			return nil, 0, errs.Mark(liErr, ErrDomainValidation)
		}
		items = append(items, item)
		subtotal += item.SubtotalCents()
	}

	return items, subtotal, nil
}

func (c *orderCommandsImpl) resolveCoupon(
	ctx context.Context,
	reads shared.CommandReads,
	userID uuid.UUID,
	couponCode *string,
	subtotalCents int64,
) (*coupon.Coupon, error) {
	if couponCode == nil {
		return nil, nil
	}

	snap, err := reads.CouponByCode(ctx, *couponCode)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	entity, err := coupon.NewCoupon(
		snap.ID,
		snap.Code,
		snap.DiscountType,
		snap.DiscountValue,
		snap.MinOrderCents,
		snap.MaxDiscountCents,
		snap.ExpiresAt,
		snap.MaxUses,
		snap.UsedCount,
		snap.OneTimePerUser,
		snap.IsActive,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCoupon)
	}

	if err := entity.ValidateUsage(c.clock.Now(), subtotalCents); err != nil {
		return nil, errs.Mark(err, ErrInvalidCoupon)
	}

	if entity.OneTimePerUser() {
		used, usedErr := reads.UserHasCouponOrder(ctx, userID, entity.ID())
		if usedErr != nil {
			return nil, errs.Mark(usedErr, ErrDatabaseOperationFailed)
		}
		if used {
			return nil, errs.Mark(coupon.ErrAlreadyUsedByUser, ErrInvalidCoupon)
		}
	}

	return entity, nil
}

func (c *orderCommandsImpl) CancelOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().OrderByID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !isAdmin && snap.UserID != userID {
			return ErrNotOrderOwner
		}

		orderEntity, err := rehydrateOrder(snap)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		actor := order.CancelByUser
		if isAdmin {
			actor = order.CancelByAdmin
		}
		if err := orderEntity.Cancel(actor, c.clock.Now()); err != nil {
			return errs.Mark(err, ErrOrderNotCancellable)
		}

		if err := tx.Orders().UpdateStatus(ctx, tx.DB(), orderEntity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		return enqueueOrderEvent(ctx, tx, c.clock.Now(), "order.cancelled", orderID, string(orderEntity.Status()))
	})
}

// rehydrateOrder rebuilds the write-side aggregate from a read snapshot.
func rehydrateOrder(snap *shared.OrderSnapshot) (*order.Order, error) {
	items := make([]order.LineItem, 0, len(snap.Items))
	for _, it := range snap.Items {
		deliveryType, err := product.NewDeliveryType(it.DeliveryType)
		if err != nil {
			return nil, err
		}
		items = append(items, order.ReconstructLineItem(
			it.ID,
			it.ProductID,
			it.StoreID,
			int(it.Quantity),
			it.PriceCents,
			deliveryType,
			it.Fulfilled,
			it.FulfilledAt,
		))
	}

	method, err := order.NewPaymentMethod(snap.PaymentMethod)
	if err != nil {
		return nil, err
	}
	status, err := order.NewStatus(snap.Status)
	if err != nil {
		return nil, err
	}

	return order.ReconstructOrder(
		snap.ID,
		snap.UserID,
		items,
		method,
		status,
		snap.SubtotalCents,
		snap.DiscountCents,
		snap.TotalCents,
		snap.CouponID,
		snap.RejectionReason,
		snap.CreatedAt,
		snap.PaymentVerifiedAt,
		snap.CodeDeliveredAt,
		snap.CompletedAt,
		snap.CancelledAt,
		snap.UpdatedAt,
	), nil
}

func enqueueOrderEvent(ctx context.Context, tx shared.Tx, now time.Time, topic string, orderID uuid.UUID, status string) error {
	payload, err := json.Marshal(map[string]any{
		"order_id": orderID,
		"status":   status,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "event", topic, payload, now)
}

// enqueueManualFulfillmentNotices creates one store.fulfillment_needed
// job per store holding manual line items, so each seller learns which
// handovers the order needs from them.
func enqueueManualFulfillmentNotices(ctx context.Context, tx shared.Tx, now time.Time, snap *shared.OrderSnapshot) error {
	byStore := make(map[uuid.UUID][]shared.OrderItemSnapshot)
	storeOrder := make([]uuid.UUID, 0, 1)
	for _, item := range snap.Items {
		if item.DeliveryType != string(product.DeliveryManual) {
			continue
		}
		if _, seen := byStore[item.StoreID]; !seen {
			storeOrder = append(storeOrder, item.StoreID)
		}
		byStore[item.StoreID] = append(byStore[item.StoreID], item)
	}

	for _, storeID := range storeOrder {
		items := make([]map[string]any, 0, len(byStore[storeID]))
		for _, it := range byStore[storeID] {
			items = append(items, map[string]any{
				"order_item_id": it.ID,
				"product_id":    it.ProductID,
				"quantity":      it.Quantity,
			})
		}
		payload, err := json.Marshal(map[string]any{
			"order_id": snap.ID,
			"store_id": storeID,
			"items":    items,
		})
		if err != nil {
			return err
		}
		if err := tx.Notifications().CreateJob(ctx, tx.DB(), "event", "store.fulfillment_needed", payload, now); err != nil {
			return err
		}
	}
	return nil
}

func calculateRequestHash(req reqdto.CreateOrderRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
