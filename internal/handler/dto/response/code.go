package response

import (
	"time"

	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type DeliveredCodeResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	ProductID   uuid.UUID  `json:"productId"`
	ProductName string     `json:"productName"`
	OrderID     uuid.UUID  `json:"orderId"`
	OrderItemID uuid.UUID  `json:"orderItemId"`
	DeliveredAt time.Time  `json:"deliveredAt"`
	ViewedAt    *time.Time `json:"viewedAt,omitempty"`
}

type DeliveredCodeListResponse struct {
	Codes []DeliveredCodeResponse `json:"codes"`
}

type AppendCodesResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	Added          int       `json:"added"`
	AvailableCodes int64     `json:"availableCodes"`
}

type AvailabilityResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	AvailableCodes int64     `json:"availableCodes"`
	InStock        bool      `json:"inStock"`
}

func FromDeliveredCodeViews(views []*queries.DeliveredCodeView) *DeliveredCodeListResponse {
	resp := DeliveredCodeListResponse{
		Codes: make([]DeliveredCodeResponse, 0, len(views)),
	}
	for _, v := range views {
		var r DeliveredCodeResponse
		_ = copier.Copy(&r, v)
		resp.Codes = append(resp.Codes, r)
	}
	return &resp
}

func FromAvailabilityView(view *queries.ProductAvailabilityView) *AvailabilityResponse {
	var resp AvailabilityResponse
	_ = copier.Copy(&resp, view)
	return &resp
}
