package events

import "github.com/google/uuid"

// Topics double as durable queue names on the default exchange.
const (
	TopicOrderPlaced           = "order.placed"
	TopicOrderCancelled        = "order.cancelled"
	TopicOrderPaymentSubmitted = "order.payment_submitted"
	TopicOrderPaymentVerified  = "order.payment_verified"
	TopicOrderCodesDelivered   = "order.codes_delivered"
	TopicOrderItemFulfilled    = "order.item_fulfilled"
	TopicStoreFulfillment      = "store.fulfillment_needed"
	TopicEmailPaymentVerified  = "email.payment_verified"
	TopicEmailPaymentRejected  = "email.payment_rejected"
)

// AllTopics lists every queue the publisher declares up front so a
// consumer can bind before the first message arrives.
var AllTopics = []string{
	TopicOrderPlaced,
	TopicOrderCancelled,
	TopicOrderPaymentSubmitted,
	TopicOrderPaymentVerified,
	TopicOrderCodesDelivered,
	TopicOrderItemFulfilled,
	TopicStoreFulfillment,
	TopicEmailPaymentVerified,
	TopicEmailPaymentRejected,
}

// OrderEvent is the payload shared by all order lifecycle topics.
type OrderEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
}

// StoreFulfillmentEvent tells one store which manual line items of an
// order now await handover.
type StoreFulfillmentEvent struct {
	OrderID uuid.UUID              `json:"order_id"`
	StoreID uuid.UUID              `json:"store_id"`
	Items   []StoreFulfillmentItem `json:"items"`
}

type StoreFulfillmentItem struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
}

// PaymentReviewEvent is the payload of the email.* topics.
type PaymentReviewEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	AdminID uuid.UUID `json:"admin_id"`
	Reason  string    `json:"reason,omitempty"`
}
