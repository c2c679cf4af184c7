//go:build unit

package order_test

import (
	"testing"
	"time"

	"giftcode-market/internal/domain/order"
	"giftcode-market/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestOrderLifecycle(t *testing.T) {
	t.Run("cash order goes straight to delivery", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentCOD).BuildDomain()
		require.NoError(t, err)
		require.Equal(t, order.StatusPending, o.Status())

		require.NoError(t, o.MarkCodesDelivered(now))
		assert.Equal(t, order.StatusCodeDelivered, o.Status())
		require.NotNil(t, o.CodeDeliveredAt())
		assert.Equal(t, now, *o.CodeDeliveredAt())

		require.NoError(t, o.Complete(now))
		assert.Equal(t, order.StatusCompleted, o.Status())
		require.NotNil(t, o.CompletedAt())
	})

	t.Run("bank transfer passes through manual verification", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentBankTransfer).BuildDomain()
		require.NoError(t, err)
		require.Equal(t, order.StatusPaymentSubmitted, o.Status())

		require.NoError(t, o.VerifyPayment(now))
		assert.Equal(t, order.StatusPaymentVerified, o.Status())
		require.NotNil(t, o.PaymentVerifiedAt())

		require.NoError(t, o.BeginProcessing())
		assert.Equal(t, order.StatusProcessing, o.Status())

		require.NoError(t, o.MarkCodesDelivered(now))
		require.NoError(t, o.Complete(now))
		assert.Equal(t, order.StatusCompleted, o.Status())
	})

	t.Run("gateway order waits for payment submission", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentStripe).BuildDomain()
		require.NoError(t, err)
		require.Equal(t, order.StatusPaymentPending, o.Status())

		require.NoError(t, o.SubmitPayment())
		assert.Equal(t, order.StatusPaymentSubmitted, o.Status())
	})

	t.Run("rejection records the reason and is terminal", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentBankTransfer).BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.RejectPayment("amount does not match"))
		assert.Equal(t, order.StatusPaymentRejected, o.Status())
		require.NotNil(t, o.RejectionReason())
		assert.Equal(t, "amount does not match", *o.RejectionReason())

		var transErr *order.InvalidTransitionError
		assert.ErrorAs(t, o.BeginProcessing(), &transErr)
	})
}

func TestOrderTransitionGuards(t *testing.T) {
	t.Run("cannot verify an unsubmitted payment", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentStripe).BuildDomain()
		require.NoError(t, err)

		var transErr *order.InvalidTransitionError
		require.ErrorAs(t, o.VerifyPayment(now), &transErr)
		assert.Equal(t, order.StatusPaymentPending, transErr.From)
		assert.Equal(t, order.StatusPaymentPending, o.Status(), "failed transition must not change state")
	})

	t.Run("cannot complete before delivery or processing", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentCOD).BuildDomain()
		require.NoError(t, err)

		var transErr *order.InvalidTransitionError
		assert.ErrorAs(t, o.Complete(now), &transErr)
	})

	t.Run("cannot deliver twice", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentCOD).BuildDomain()
		require.NoError(t, err)
		require.NoError(t, o.MarkCodesDelivered(now))

		var transErr *order.InvalidTransitionError
		assert.ErrorAs(t, o.MarkCodesDelivered(now), &transErr)
	})
}

func TestOrderCancel(t *testing.T) {
	t.Run("user can cancel before delivery", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentBankTransfer).BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.Cancel(order.CancelByUser, now))
		assert.Equal(t, order.StatusCancelled, o.Status())
		require.NotNil(t, o.CancelledAt())
	})

	t.Run("cancel fails on terminal orders", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentCOD).BuildDomain()
		require.NoError(t, err)
		require.NoError(t, o.MarkCodesDelivered(now))
		require.NoError(t, o.Complete(now))

		var transErr *order.InvalidTransitionError
		assert.ErrorAs(t, o.Cancel(order.CancelByAdmin, now), &transErr)
	})

	t.Run("system cancel stops at code delivery", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithPaymentMethod(order.PaymentCOD).BuildDomain()
		require.NoError(t, err)
		require.NoError(t, o.MarkCodesDelivered(now))

		assert.ErrorIs(t, o.Cancel(order.CancelBySystem, now), order.ErrCancelAfterDeliver)

		// A human decision can still pull delivered orders back
		require.NoError(t, o.Cancel(order.CancelByAdmin, now))
		assert.Equal(t, order.StatusCancelled, o.Status())
	})
}

func TestMarkItemFulfilled(t *testing.T) {
	t.Run("acknowledgement is idempotent", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithManualItem(1, 2500).BuildDomain()
		require.NoError(t, err)
		itemID := o.Items()[0].ID()

		require.NoError(t, o.MarkItemFulfilled(itemID, now))
		first := o.Items()[0].FulfilledAt()
		require.NotNil(t, first)

		later := now.Add(time.Hour)
		require.NoError(t, o.MarkItemFulfilled(itemID, later))
		assert.Equal(t, *first, *o.Items()[0].FulfilledAt(), "repeat acknowledgement keeps the original time")
	})

	t.Run("unknown item is rejected", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithManualItem(1, 2500).BuildDomain()
		require.NoError(t, err)

		assert.Error(t, o.MarkItemFulfilled(uuid.New(), now))
	})
}

func TestAllItemsSatisfied(t *testing.T) {
	t.Run("instant items need delivery", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithInstantItem(2, 1000).BuildDomain()
		require.NoError(t, err)

		assert.False(t, o.AllItemsSatisfied())
		require.NoError(t, o.MarkCodesDelivered(now))
		assert.True(t, o.AllItemsSatisfied())
	})

	t.Run("mixed order needs both delivery and acknowledgement", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithInstantItem(1, 1000).WithManualItem(1, 3000).BuildDomain()
		require.NoError(t, err)
		require.True(t, o.HasInstantItems())
		require.True(t, o.HasManualItems())

		require.NoError(t, o.MarkCodesDelivered(now))
		assert.False(t, o.AllItemsSatisfied(), "manual item still outstanding")

		manualID := o.ManualItems()[0].ID()
		require.NoError(t, o.MarkItemFulfilled(manualID, now))
		assert.True(t, o.AllItemsSatisfied())
	})
}
