package queries

import (
	"time"

	"github.com/google/uuid"
)

// AccessScope carries the authenticated caller's identity for read-side
// authorization checks.
type AccessScope struct {
	UserID  uuid.UUID
	Role    string
	StoreID *uuid.UUID
}

func (s AccessScope) IsAdmin() bool {
	return s.Role == "admin"
}

func (s AccessScope) OwnsStore(storeID uuid.UUID) bool {
	return s.StoreID != nil && *s.StoreID == storeID
}

// OrderView represents read-optimized order data with line items
type OrderView struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	UserEmail         string          `json:"user_email"`
	Status            string          `json:"status"`
	PaymentMethod     string          `json:"payment_method"`
	SubtotalCents     int64           `json:"subtotal_cents"`
	DiscountCents     int64           `json:"discount_cents"`
	TotalCents        int64           `json:"total_cents"`
	CouponID          *uuid.UUID      `json:"coupon_id,omitempty"`
	CouponCode        *string         `json:"coupon_code,omitempty"`
	RejectionReason   *string         `json:"rejection_reason,omitempty"`
	PaymentVerifiedAt *time.Time      `json:"payment_verified_at,omitempty"`
	CodeDeliveredAt   *time.Time      `json:"code_delivered_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Items             []OrderItemView `json:"items"`
}

type OrderItemView struct {
	ID           uuid.UUID  `json:"id"`
	ProductID    uuid.UUID  `json:"product_id"`
	ProductName  string     `json:"product_name"`
	StoreID      uuid.UUID  `json:"store_id"`
	StoreName    string     `json:"store_name"`
	Quantity     int32      `json:"quantity"`
	PriceCents   int64      `json:"price_cents"`
	DeliveryType string     `json:"delivery_type"`
	Fulfilled    bool       `json:"fulfilled"`
	FulfilledAt  *time.Time `json:"fulfilled_at,omitempty"`
}

type OrderListItem struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	TotalCents    int64     `json:"total_cents"`
	ItemCount     int32     `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeliveredCodeView represents one code handed to a buyer
type DeliveredCodeView struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	ProductID   uuid.UUID  `json:"product_id"`
	ProductName string     `json:"product_name"`
	OrderID     uuid.UUID  `json:"order_id"`
	OrderItemID uuid.UUID  `json:"order_item_id"`
	DeliveredAt time.Time  `json:"delivered_at"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty"`
}

// CouponPreviewView is the result of validating a coupon against a cart
// total without placing an order.
type CouponPreviewView struct {
	CouponID        uuid.UUID `json:"coupon_id"`
	Code            string    `json:"code"`
	DiscountType    string    `json:"discount_type"`
	DiscountCents   int64     `json:"discount_cents"`
	TotalAfterCents int64     `json:"total_after_cents"`
}

type ProductAvailabilityView struct {
	ProductID      uuid.UUID `json:"product_id"`
	AvailableCodes int64     `json:"available_codes"`
	InStock        bool      `json:"in_stock"`
}

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
	StoreID  *uuid.UUID `json:"store_id,omitempty"`
	IsActive bool       `json:"is_active"`
}

// CouponRowView is the raw coupon row read model used to rebuild the
// domain entity for validation.
type CouponRowView struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	DiscountType     string     `json:"discount_type"`
	DiscountValue    int64      `json:"discount_value"`
	MinOrderCents    *int64     `json:"min_order_cents,omitempty"`
	MaxDiscountCents *int64     `json:"max_discount_cents,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	MaxUses          *int32     `json:"max_uses,omitempty"`
	UsedCount        int32      `json:"used_count"`
	OneTimePerUser   bool       `json:"one_time_per_user"`
	IsActive         bool       `json:"is_active"`
}

// CartProductRow is the raw product row read model used for cart
// validation, including store approval state.
type CartProductRow struct {
	ID             uuid.UUID `json:"id"`
	StoreID        uuid.UUID `json:"store_id"`
	StoreStatus    string    `json:"store_status"`
	Name           string    `json:"name"`
	PriceCents     int64     `json:"price_cents"`
	DeliveryType   string    `json:"delivery_type"`
	InStock        bool      `json:"in_stock"`
	AvailableCodes int       `json:"available_codes"`
}

type CartItemView struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Quantity     int32     `json:"quantity"`
	PriceCents   int64     `json:"price_cents"`
	LineCents    int64     `json:"line_cents"`
	DeliveryType string    `json:"delivery_type"`
	OK           bool      `json:"ok"`
	Problem      string    `json:"problem,omitempty"`
}

type CartValidationView struct {
	Valid         bool           `json:"valid"`
	Items         []CartItemView `json:"items"`
	SubtotalCents int64          `json:"subtotal_cents"`
}

// NotificationJobView represents a pending outbox job
type NotificationJobView struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Topic     string    `json:"topic"`
	Payload   []byte    `json:"payload"`
	RunAt     time.Time `json:"run_at"`
	Attempts  int32     `json:"attempts"`
	Status    string    `json:"status"`
	LastError *string   `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
