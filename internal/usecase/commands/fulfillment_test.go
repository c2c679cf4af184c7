//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/domain/order"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/usecase/commands"
	"giftcode-market/internal/usecase/shared"
)

var fulfillNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFulfillmentCommands(uow shared.UnitOfWork) commands.FulfillmentCommands {
	return commands.NewFulfillmentCommands(uow, clock.NewMockClock(fulfillNow))
}

type snapshotItem struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	StoreID      uuid.UUID
	Quantity     int
	DeliveryType string
	Fulfilled    bool
}

func buildOrderSnapshot(userID uuid.UUID, status, paymentMethod string, items ...snapshotItem) *shared.OrderSnapshot {
	snap := &shared.OrderSnapshot{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        status,
		PaymentMethod: paymentMethod,
		CreatedAt:     fulfillNow.Add(-time.Hour),
		UpdatedAt:     fulfillNow.Add(-time.Hour),
	}
	var subtotal int64
	for _, it := range items {
		snap.Items = append(snap.Items, shared.OrderItemSnapshot{
			ID:           it.ID,
			OrderID:      snap.ID,
			ProductID:    it.ProductID,
			StoreID:      it.StoreID,
			Quantity:     it.Quantity,
			PriceCents:   1000,
			DeliveryType: it.DeliveryType,
			Fulfilled:    it.Fulfilled,
		})
		subtotal += int64(it.Quantity) * 1000
	}
	snap.SubtotalCents = subtotal
	snap.TotalCents = subtotal
	return snap
}

func TestFulfillmentCommands_AllocateOrder(t *testing.T) {
	t.Run("claims codes oldest first and completes an instant-only order", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		itemID := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPaymentVerified), string(order.PaymentBankTransfer),
			snapshotItem{ID: itemID, ProductID: productID, StoreID: uuid.New(), Quantity: 2, DeliveryType: "instant"},
		)
		uow.seedOrder(snap)
		uow.seedCodes(productID, "GC-OLD-1", "GC-OLD-2", "GC-NEW-3")

		result, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), snap.ID)

		require.NoError(t, err)
		assert.Equal(t, snap.ID, result.OrderID)
		assert.Equal(t, 2, result.DeliveredCodes)
		assert.Equal(t, []uuid.UUID{productID}, result.AffectedProducts)
		assert.False(t, result.AlreadyDelivered)

		delivered := uow.deliveredFor(itemID)
		require.Len(t, delivered, 2)
		assert.Equal(t, "GC-OLD-1", delivered[0].Code)
		assert.Equal(t, "GC-OLD-2", delivered[1].Code)
		assert.Equal(t, snap.UserID, delivered[0].UserID)
		assert.Equal(t, snap.ID, delivered[0].OrderID)
		assert.Equal(t, fulfillNow, delivered[0].DeliveredAt)

		assert.Equal(t, 1, uow.availableCodes(productID))
		assert.Equal(t, string(order.StatusCompleted), uow.state.orders[snap.ID].Status)
		require.NotNil(t, uow.state.orders[snap.ID].CodeDeliveredAt)
		assert.Contains(t, uow.state.syncedProduct, productID)

		require.Len(t, uow.state.jobs, 1)
		assert.Equal(t, "event", uow.state.jobs[0].Kind)
		assert.Equal(t, "order.codes_delivered", uow.state.jobs[0].Topic)
	})

	t.Run("shortfall rolls back every claim in the order", func(t *testing.T) {
		uow := newFakeUoW()
		fullProduct := uuid.New()
		shortProduct := uuid.New()
		fullItem := uuid.New()
		shortItem := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPending), string(order.PaymentCOD),
			snapshotItem{ID: fullItem, ProductID: fullProduct, StoreID: uuid.New(), Quantity: 1, DeliveryType: "instant"},
			snapshotItem{ID: shortItem, ProductID: shortProduct, StoreID: uuid.New(), Quantity: 3, DeliveryType: "instant"},
		)
		uow.seedOrder(snap)
		uow.seedCodes(fullProduct, "FULL-1")
		uow.seedCodes(shortProduct, "SHORT-1", "SHORT-2")

		result, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), snap.ID)

		require.Error(t, err)
		assert.Nil(t, result)
		var stockErr *codepool.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, shortProduct, stockErr.ProductID)
		assert.Equal(t, 3, stockErr.Requested)
		assert.Equal(t, 2, stockErr.Available)

		// Nothing persisted, including the claim that succeeded first
		assert.Equal(t, 1, uow.availableCodes(fullProduct))
		assert.Equal(t, 2, uow.availableCodes(shortProduct))
		assert.Empty(t, uow.deliveredFor(fullItem))
		assert.Empty(t, uow.state.jobs)
		assert.Equal(t, string(order.StatusPending), uow.state.orders[snap.ID].Status)
	})

	t.Run("shortfall reports the pool as it stands after rollback", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPending), string(order.PaymentCOD),
			snapshotItem{ID: uuid.New(), ProductID: productID, StoreID: uuid.New(), Quantity: 1, DeliveryType: "instant"},
			snapshotItem{ID: uuid.New(), ProductID: productID, StoreID: uuid.New(), Quantity: 2, DeliveryType: "instant"},
		)
		uow.seedOrder(snap)
		uow.seedCodes(productID, "GC-1", "GC-2")

		_, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), snap.ID)

		var stockErr *codepool.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 2, stockErr.Requested)
		// The first item's claim was rolled back; the error must carry the
		// recounted pool, not the aborted transaction's leftover of one.
		assert.Equal(t, 2, stockErr.Available)
		assert.Equal(t, 2, uow.availableCodes(productID))
	})

	t.Run("concurrent allocations never claim more than the pool holds", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		storeID := uuid.New()
		uow.seedCodes(productID, "GC-1", "GC-2")

		orderIDs := make([]uuid.UUID, 3)
		for i := range orderIDs {
			snap := buildOrderSnapshot(uuid.New(), string(order.StatusPending), string(order.PaymentCOD),
				snapshotItem{ID: uuid.New(), ProductID: productID, StoreID: storeID, Quantity: 1, DeliveryType: "instant"},
			)
			uow.seedOrder(snap)
			orderIDs[i] = snap.ID
		}

		cmds := newFulfillmentCommands(uow)
		results := make(chan error, len(orderIDs))
		var wg sync.WaitGroup
		for _, id := range orderIDs {
			wg.Add(1)
			go func(orderID uuid.UUID) {
				defer wg.Done()
				_, err := cmds.AllocateOrder(context.Background(), orderID)
				results <- err
			}(id)
		}
		wg.Wait()
		close(results)

		var failures int
		for err := range results {
			if err == nil {
				continue
			}
			failures++
			var stockErr *codepool.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			assert.Equal(t, 1, stockErr.Requested)
			assert.Equal(t, 0, stockErr.Available)
			assert.Equal(t, 1, stockErr.Shortfall())
		}
		assert.Equal(t, 1, failures)
		assert.Equal(t, 0, uow.availableCodes(productID))
	})

	t.Run("order already delivered short-circuits without consuming codes", func(t *testing.T) {
		for _, status := range []order.Status{order.StatusCodeDelivered, order.StatusCompleted} {
			uow := newFakeUoW()
			productID := uuid.New()
			snap := buildOrderSnapshot(uuid.New(), string(status), string(order.PaymentCOD),
				snapshotItem{ID: uuid.New(), ProductID: productID, StoreID: uuid.New(), Quantity: 1, DeliveryType: "instant"},
			)
			uow.seedOrder(snap)
			uow.seedCodes(productID, "GC-1")

			result, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), snap.ID)

			require.NoError(t, err)
			assert.True(t, result.AlreadyDelivered)
			assert.Zero(t, result.DeliveredCodes)
			assert.Equal(t, 1, uow.availableCodes(productID))
			assert.Empty(t, uow.state.jobs)
		}
	})

	t.Run("items with committed deliveries are not claimed again", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		itemID := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusProcessing), string(order.PaymentCOD),
			snapshotItem{ID: itemID, ProductID: productID, StoreID: uuid.New(), Quantity: 2, DeliveryType: "instant"},
		)
		uow.seedOrder(snap)
		uow.seedCodes(productID, "GC-SPARE")
		for i := 0; i < 2; i++ {
			uow.seedDelivered(shared.DeliveredCodeRecord{
				ID:          uuid.New(),
				CodeID:      uuid.New(),
				Code:        "GC-PRIOR",
				OrderID:     snap.ID,
				OrderItemID: itemID,
				UserID:      snap.UserID,
				DeliveredAt: fulfillNow.Add(-time.Minute),
			})
		}

		result, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), snap.ID)

		require.NoError(t, err)
		assert.False(t, result.AlreadyDelivered)
		assert.Zero(t, result.DeliveredCodes)
		assert.Empty(t, result.AffectedProducts)
		assert.Equal(t, 1, uow.availableCodes(productID))
		assert.Len(t, uow.deliveredFor(itemID), 2)
		assert.Equal(t, string(order.StatusCompleted), uow.state.orders[snap.ID].Status)
	})

	t.Run("mixed order waits on manual items after delivering codes", func(t *testing.T) {
		uow := newFakeUoW()
		instantProduct := uuid.New()
		instantItem := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPaymentVerified), string(order.PaymentBankTransfer),
			snapshotItem{ID: instantItem, ProductID: instantProduct, StoreID: uuid.New(), Quantity: 1, DeliveryType: "instant"},
			snapshotItem{ID: uuid.New(), ProductID: uuid.New(), StoreID: uuid.New(), Quantity: 1, DeliveryType: "manual"},
		)
		uow.seedOrder(snap)
		uow.seedCodes(instantProduct, "GC-1")

		result, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), snap.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, result.DeliveredCodes)
		assert.Equal(t, string(order.StatusCodeDelivered), uow.state.orders[snap.ID].Status)
		assert.Nil(t, uow.state.orders[snap.ID].CompletedAt)
	})

	t.Run("manual-only order is left untouched", func(t *testing.T) {
		uow := newFakeUoW()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPaymentVerified), string(order.PaymentBankTransfer),
			snapshotItem{ID: uuid.New(), ProductID: uuid.New(), StoreID: uuid.New(), Quantity: 1, DeliveryType: "manual"},
		)
		uow.seedOrder(snap)

		result, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), snap.ID)

		require.NoError(t, err)
		assert.Zero(t, result.DeliveredCodes)
		assert.Equal(t, string(order.StatusPaymentVerified), uow.state.orders[snap.ID].Status)
		assert.Empty(t, uow.state.jobs)
	})

	t.Run("order awaiting payment cannot be allocated", func(t *testing.T) {
		uow := newFakeUoW()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPaymentSubmitted), string(order.PaymentBankTransfer),
			snapshotItem{ID: uuid.New(), ProductID: uuid.New(), StoreID: uuid.New(), Quantity: 1, DeliveryType: "instant"},
		)
		uow.seedOrder(snap)

		_, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), snap.ID)

		assert.ErrorIs(t, err, commands.ErrOrderNotAllocatable)
	})

	t.Run("unknown order", func(t *testing.T) {
		uow := newFakeUoW()

		_, err := newFulfillmentCommands(uow).AllocateOrder(context.Background(), uuid.New())

		assert.ErrorIs(t, err, commands.ErrOrderNotFound)
	})
}

func TestFulfillmentCommands_AcknowledgeFulfillment(t *testing.T) {
	storeID := uuid.New()
	sellerID := uuid.New()

	t.Run("seller acknowledgement completes a manual-only order", func(t *testing.T) {
		uow := newFakeUoW()
		itemID := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPaymentVerified), string(order.PaymentBankTransfer),
			snapshotItem{ID: itemID, ProductID: uuid.New(), StoreID: storeID, Quantity: 1, DeliveryType: "manual"},
		)
		uow.seedOrder(snap)

		err := newFulfillmentCommands(uow).AcknowledgeFulfillment(context.Background(), itemID, sellerID, &storeID, false)

		require.NoError(t, err)
		persisted := uow.state.orders[snap.ID]
		assert.Equal(t, string(order.StatusCompleted), persisted.Status)
		assert.True(t, persisted.Items[0].Fulfilled)
		require.NotNil(t, persisted.Items[0].FulfilledAt)
		assert.Equal(t, fulfillNow, *persisted.Items[0].FulfilledAt)

		require.Len(t, uow.state.jobs, 1)
		assert.Equal(t, "order.item_fulfilled", uow.state.jobs[0].Topic)
	})

	t.Run("order stays processing while instant codes are pending", func(t *testing.T) {
		uow := newFakeUoW()
		manualItem := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPaymentVerified), string(order.PaymentBankTransfer),
			snapshotItem{ID: manualItem, ProductID: uuid.New(), StoreID: storeID, Quantity: 1, DeliveryType: "manual"},
			snapshotItem{ID: uuid.New(), ProductID: uuid.New(), StoreID: storeID, Quantity: 1, DeliveryType: "instant"},
		)
		uow.seedOrder(snap)

		err := newFulfillmentCommands(uow).AcknowledgeFulfillment(context.Background(), manualItem, sellerID, &storeID, false)

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusProcessing), uow.state.orders[snap.ID].Status)
		assert.Nil(t, uow.state.orders[snap.ID].CompletedAt)
	})

	t.Run("seller from another store is rejected", func(t *testing.T) {
		uow := newFakeUoW()
		itemID := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPaymentVerified), string(order.PaymentBankTransfer),
			snapshotItem{ID: itemID, ProductID: uuid.New(), StoreID: storeID, Quantity: 1, DeliveryType: "manual"},
		)
		uow.seedOrder(snap)
		otherStore := uuid.New()

		err := newFulfillmentCommands(uow).AcknowledgeFulfillment(context.Background(), itemID, sellerID, &otherStore, false)

		assert.ErrorIs(t, err, commands.ErrNotStoreSeller)
		assert.False(t, uow.state.orders[snap.ID].Items[0].Fulfilled)
		assert.Empty(t, uow.state.jobs)
	})

	t.Run("admin may acknowledge for any store", func(t *testing.T) {
		uow := newFakeUoW()
		itemID := uuid.New()
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusPending), string(order.PaymentCOD),
			snapshotItem{ID: itemID, ProductID: uuid.New(), StoreID: storeID, Quantity: 1, DeliveryType: "manual"},
		)
		uow.seedOrder(snap)

		err := newFulfillmentCommands(uow).AcknowledgeFulfillment(context.Background(), itemID, uuid.New(), nil, true)

		require.NoError(t, err)
		assert.True(t, uow.state.orders[snap.ID].Items[0].Fulfilled)
	})

	t.Run("repeat acknowledgement keeps the original fulfilment time", func(t *testing.T) {
		uow := newFakeUoW()
		itemID := uuid.New()
		earlier := fulfillNow.Add(-30 * time.Minute)
		snap := buildOrderSnapshot(uuid.New(), string(order.StatusProcessing), string(order.PaymentBankTransfer),
			snapshotItem{ID: itemID, ProductID: uuid.New(), StoreID: storeID, Quantity: 1, DeliveryType: "manual"},
			snapshotItem{ID: uuid.New(), ProductID: uuid.New(), StoreID: storeID, Quantity: 1, DeliveryType: "manual"},
		)
		snap.Items[0].Fulfilled = true
		snap.Items[0].FulfilledAt = &earlier
		uow.seedOrder(snap)

		err := newFulfillmentCommands(uow).AcknowledgeFulfillment(context.Background(), itemID, sellerID, &storeID, false)

		require.NoError(t, err)
		persisted := uow.state.orders[snap.ID]
		assert.Equal(t, string(order.StatusProcessing), persisted.Status)
		require.NotNil(t, persisted.Items[0].FulfilledAt)
		assert.Equal(t, earlier, *persisted.Items[0].FulfilledAt)
	})

	t.Run("unknown order item", func(t *testing.T) {
		uow := newFakeUoW()

		err := newFulfillmentCommands(uow).AcknowledgeFulfillment(context.Background(), uuid.New(), sellerID, &storeID, false)

		assert.ErrorIs(t, err, commands.ErrOrderItemNotFound)
	})
}
