package request

import (
	"strings"

	"github.com/google/uuid"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string             `json:"payment_method" binding:"required,oneof=COD BANK_TRANSFER STRIPE"`
	CouponCode    *string            `json:"coupon_code,omitempty"`
}

func (r CreateOrderRequest) GetCouponCode() *string {
	if r.CouponCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.CouponCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type ValidateCartRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type VerifyPaymentRequest struct {
	Action string  `json:"action" binding:"required,oneof=verify reject"`
	Reason *string `json:"reason,omitempty"`
}

func (r VerifyPaymentRequest) IsReject() bool {
	return r.Action == "reject"
}

func (r VerifyPaymentRequest) TrimmedReason() string {
	if r.Reason == nil {
		return ""
	}
	return strings.TrimSpace(*r.Reason)
}
