package response

import (
	"time"

	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"userId"`
	UserEmail         string              `json:"userEmail"`
	Status            string              `json:"status"`
	PaymentMethod     string              `json:"paymentMethod"`
	SubtotalCents     int64               `json:"subtotalCents"`
	DiscountCents     int64               `json:"discountCents"`
	TotalCents        int64               `json:"totalCents"`
	CouponID          *uuid.UUID          `json:"couponId,omitempty"`
	CouponCode        *string             `json:"couponCode,omitempty"`
	RejectionReason   *string             `json:"rejectionReason,omitempty"`
	PaymentVerifiedAt *time.Time          `json:"paymentVerifiedAt,omitempty"`
	CodeDeliveredAt   *time.Time          `json:"codeDeliveredAt,omitempty"`
	CompletedAt       *time.Time          `json:"completedAt,omitempty"`
	CancelledAt       *time.Time          `json:"cancelledAt,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
	Items             []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	ProductID    uuid.UUID  `json:"productId"`
	ProductName  string     `json:"productName"`
	StoreID      uuid.UUID  `json:"storeId"`
	StoreName    string     `json:"storeName"`
	Quantity     int32      `json:"quantity"`
	PriceCents   int64      `json:"priceCents"`
	DeliveryType string     `json:"deliveryType"`
	Fulfilled    bool       `json:"fulfilled"`
	FulfilledAt  *time.Time `json:"fulfilledAt,omitempty"`
}

type OrderListResponse struct {
	Orders     []OrderListItemResponse `json:"orders"`
	NextCursor *string                 `json:"nextCursor,omitempty"`
}

type OrderListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalCents    int64     `json:"totalCents"`
	ItemCount     int32     `json:"itemCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CartValidationResponse struct {
	Valid         bool               `json:"valid"`
	Items         []CartItemResponse `json:"items"`
	SubtotalCents int64              `json:"subtotalCents"`
}

type CartItemResponse struct {
	ProductID    uuid.UUID `json:"productId"`
	ProductName  string    `json:"productName,omitempty"`
	Quantity     int32     `json:"quantity"`
	PriceCents   int64     `json:"priceCents"`
	LineCents    int64     `json:"lineCents"`
	DeliveryType string    `json:"deliveryType,omitempty"`
	OK           bool      `json:"ok"`
	Problem      string    `json:"problem,omitempty"`
}

func FromCartValidationView(view *queries.CartValidationView) *CartValidationResponse {
	resp := CartValidationResponse{
		Valid:         view.Valid,
		SubtotalCents: view.SubtotalCents,
		Items:         make([]CartItemResponse, 0, len(view.Items)),
	}
	for _, item := range view.Items {
		var r CartItemResponse
		_ = copier.Copy(&r, item)
		resp.Items = append(resp.Items, r)
	}
	return &resp
}

func FromOrderView(view *queries.OrderView) *OrderResponse {
	var resp OrderResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromOrderListItems(items []*queries.OrderListItem, next *queries.Cursor) *OrderListResponse {
	resp := OrderListResponse{
		Orders: make([]OrderListItemResponse, 0, len(items)),
	}
	for _, item := range items {
		var r OrderListItemResponse
		_ = copier.Copy(&r, item)
		resp.Orders = append(resp.Orders, r)
	}
	if next != nil {
		resp.NextCursor = &next.After
	}
	return &resp
}
