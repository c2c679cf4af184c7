package api

import (
	"errors"
	"net/http"

	"giftcode-market/internal/handler/dto/request"
	resdto "giftcode-market/internal/handler/dto/response"
	"giftcode-market/internal/handler/httperr"
	"giftcode-market/internal/handler/middleware"
	"giftcode-market/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	couponQueries queries.CouponQueries
}

func NewCouponHandler(couponQueries queries.CouponQueries) *CouponHandler {
	return &CouponHandler{couponQueries: couponQueries}
}

// @Summary Validate coupon
// @Description Preview the discount a coupon would apply to a cart total
// @Tags coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.ValidateCouponRequest true "Coupon and cart total"
// @Success 200 {object} response.CouponPreviewResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /coupons/validate [post]
func (h *CouponHandler) Validate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	var req request.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.couponQueries.Preview(c.Request.Context(), userID, req.Code, req.OrderTotalCents)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrCouponNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
		case errors.Is(err, queries.ErrCouponNotApplicable):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Coupon cannot be applied to this order", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromCouponPreview(view))
}
