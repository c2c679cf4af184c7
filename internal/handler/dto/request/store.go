package request

type CreateStoreRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

type ReviewStoreRequest struct {
	Action string `json:"action" binding:"required,oneof=approve suspend"`
}

func (r ReviewStoreRequest) IsApprove() bool {
	return r.Action == "approve"
}

type CreateProductRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	PriceCents   int64  `json:"price_cents" binding:"min=0"`
	DeliveryType string `json:"delivery_type" binding:"required,oneof=instant manual"`
}

type UpdateProductRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=200"`
	PriceCents int64  `json:"price_cents" binding:"min=0"`
}

type SetStockRequest struct {
	InStock *bool `json:"in_stock" binding:"required"`
}
