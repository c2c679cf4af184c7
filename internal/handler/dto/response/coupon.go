package response

import (
	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
)

type CouponPreviewResponse struct {
	CouponID        uuid.UUID `json:"couponId"`
	Code            string    `json:"code"`
	DiscountType    string    `json:"discountType"`
	DiscountCents   int64     `json:"discountCents"`
	TotalAfterCents int64     `json:"totalAfterCents"`
}

func FromCouponPreview(view *queries.CouponPreviewView) *CouponPreviewResponse {
	return &CouponPreviewResponse{
		CouponID:        view.CouponID,
		Code:            view.Code,
		DiscountType:    view.DiscountType,
		DiscountCents:   view.DiscountCents,
		TotalAfterCents: view.TotalAfterCents,
	}
}
