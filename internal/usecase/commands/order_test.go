//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"giftcode-market/internal/domain/order"
	reqdto "giftcode-market/internal/handler/dto/request"
	"giftcode-market/internal/infra/events"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/usecase/commands"
	"giftcode-market/internal/usecase/queries"
	"giftcode-market/internal/usecase/shared"
	queriesmock "giftcode-market/tests/mock/queries"
)

func newOrderCommands(t *testing.T, uow shared.UnitOfWork) commands.OrderCommands {
	ctrl := gomock.NewController(t)
	mockQueries := queriesmock.NewMockOrderQueries(ctrl)
	mockQueries.EXPECT().
		GetByIDSystem(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
			return &queries.OrderView{ID: id}, nil
		}).
		AnyTimes()
	mockClock := clock.NewMockClock(fulfillNow)
	return commands.NewOrderCommands(uow, order.NewFactory(mockClock), mockQueries, mockClock)
}

func instantProduct(id, storeID uuid.UUID, available int) shared.ProductSnapshot {
	return shared.ProductSnapshot{
		ID:             id,
		StoreID:        storeID,
		StoreStatus:    "approved",
		Name:           "Steam Wallet 10",
		PriceCents:     1000,
		DeliveryType:   "instant",
		InStock:        available > 0,
		AvailableCodes: available,
	}
}

func manualProduct(id, storeID uuid.UUID) shared.ProductSnapshot {
	return shared.ProductSnapshot{
		ID:           id,
		StoreID:      storeID,
		StoreStatus:  "approved",
		Name:         "Console Top-Up",
		PriceCents:   2500,
		DeliveryType: "manual",
		InStock:      true,
	}
}

func TestOrderCommands_CreateOrder(t *testing.T) {
	userID := uuid.New()

	t.Run("instant order is placed against sufficient stock", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		uow.seedProduct(instantProduct(productID, uuid.New(), 5))

		result, err := newOrderCommands(t, uow).CreateOrder(context.Background(), reqdto.CreateOrderRequest{
			Items:         []reqdto.OrderItemRequest{{ProductID: productID, Quantity: 2}},
			PaymentMethod: string(order.PaymentCOD),
		}, userID, uuid.New())

		require.NoError(t, err)
		assert.False(t, result.IsReplayed)
		require.Len(t, jobsWithTopic(uow, events.TopicOrderPlaced), 1)
	})

	t.Run("quantity above the available pool is refused", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		uow.seedProduct(instantProduct(productID, uuid.New(), 1))

		_, err := newOrderCommands(t, uow).CreateOrder(context.Background(), reqdto.CreateOrderRequest{
			Items:         []reqdto.OrderItemRequest{{ProductID: productID, Quantity: 2}},
			PaymentMethod: string(order.PaymentCOD),
		}, userID, uuid.New())

		assert.ErrorIs(t, err, commands.ErrInsufficientStock)
		assert.Empty(t, uow.state.orders)
		assert.Empty(t, uow.state.jobs)
	})

	t.Run("in-stock flag alone does not admit an exhausted pool", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		snap := instantProduct(productID, uuid.New(), 0)
		snap.InStock = true
		uow.seedProduct(snap)

		_, err := newOrderCommands(t, uow).CreateOrder(context.Background(), reqdto.CreateOrderRequest{
			Items:         []reqdto.OrderItemRequest{{ProductID: productID, Quantity: 1}},
			PaymentMethod: string(order.PaymentCOD),
		}, userID, uuid.New())

		assert.ErrorIs(t, err, commands.ErrInsufficientStock)
	})

	t.Run("manual quantities are not limited by the code pool", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		uow.seedProduct(manualProduct(productID, uuid.New()))

		result, err := newOrderCommands(t, uow).CreateOrder(context.Background(), reqdto.CreateOrderRequest{
			Items:         []reqdto.OrderItemRequest{{ProductID: productID, Quantity: 4}},
			PaymentMethod: string(order.PaymentCOD),
		}, userID, uuid.New())

		require.NoError(t, err)
		assert.False(t, result.IsReplayed)
	})

	t.Run("COD order with manual items notifies sellers at placement", func(t *testing.T) {
		uow := newFakeUoW()
		storeID := uuid.New()
		productID := uuid.New()
		uow.seedProduct(manualProduct(productID, storeID))

		_, err := newOrderCommands(t, uow).CreateOrder(context.Background(), reqdto.CreateOrderRequest{
			Items:         []reqdto.OrderItemRequest{{ProductID: productID, Quantity: 2}},
			PaymentMethod: string(order.PaymentCOD),
		}, userID, uuid.New())

		require.NoError(t, err)
		notices := jobsWithTopic(uow, events.TopicStoreFulfillment)
		require.Len(t, notices, 1)

		var evt events.StoreFulfillmentEvent
		require.NoError(t, json.Unmarshal(notices[0].Payload, &evt))
		assert.Equal(t, storeID, evt.StoreID)
		require.Len(t, evt.Items, 1)
		assert.Equal(t, productID, evt.Items[0].ProductID)
		assert.Equal(t, 2, evt.Items[0].Quantity)
	})

	t.Run("bank-transfer order defers seller notices to payment verification", func(t *testing.T) {
		uow := newFakeUoW()
		productID := uuid.New()
		uow.seedProduct(manualProduct(productID, uuid.New()))

		_, err := newOrderCommands(t, uow).CreateOrder(context.Background(), reqdto.CreateOrderRequest{
			Items:         []reqdto.OrderItemRequest{{ProductID: productID, Quantity: 1}},
			PaymentMethod: string(order.PaymentBankTransfer),
		}, userID, uuid.New())

		require.NoError(t, err)
		assert.Empty(t, jobsWithTopic(uow, events.TopicStoreFulfillment))
		require.Len(t, jobsWithTopic(uow, events.TopicOrderPlaced), 1)
	})

	t.Run("unknown product", func(t *testing.T) {
		uow := newFakeUoW()

		_, err := newOrderCommands(t, uow).CreateOrder(context.Background(), reqdto.CreateOrderRequest{
			Items:         []reqdto.OrderItemRequest{{ProductID: uuid.New(), Quantity: 1}},
			PaymentMethod: string(order.PaymentCOD),
		}, userID, uuid.New())

		assert.ErrorIs(t, err, commands.ErrProductNotFound)
	})
}
