package shared

import (
	"time"

	"github.com/google/uuid"
)

type ProductSnapshot struct {
	ID             uuid.UUID
	StoreID        uuid.UUID
	StoreStatus    string
	Name           string
	PriceCents     int64
	DeliveryType   string
	InStock        bool
	AvailableCodes int
}

type StoreSnapshot struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
	Status  string
}

type CouponSnapshot struct {
	ID               uuid.UUID
	Code             string
	DiscountType     string
	DiscountValue    int64
	MinOrderCents    *int64
	MaxDiscountCents *int64
	ExpiresAt        *time.Time
	MaxUses          *int32
	UsedCount        int32
	OneTimePerUser   bool
	IsActive         bool
}

type OrderSnapshot struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Status            string
	PaymentMethod     string
	SubtotalCents     int64
	DiscountCents     int64
	TotalCents        int64
	CouponID          *uuid.UUID
	RejectionReason   *string
	CreatedAt         time.Time
	PaymentVerifiedAt *time.Time
	CodeDeliveredAt   *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	UpdatedAt         time.Time
	Items             []OrderItemSnapshot
}

type OrderItemSnapshot struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ProductID    uuid.UUID
	StoreID      uuid.UUID
	Quantity     int
	PriceCents   int64
	DeliveryType string
	Fulfilled    bool
	FulfilledAt  *time.Time
}

// DeliveredCodeRecord is the durable proof that one pool code was handed
// to one order item. CodeID is unique across the ledger.
type DeliveredCodeRecord struct {
	ID          uuid.UUID
	CodeID      uuid.UUID
	Code        string
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
	UserID      uuid.UUID
	DeliveredAt time.Time
	ViewedAt    *time.Time
}

type IdempotencyRecord struct {
	Key           uuid.UUID
	UserID        uuid.UUID
	Status        string
	RequestHash   string
	ResultOrderID *uuid.UUID
	ExpiresAt     time.Time
}
