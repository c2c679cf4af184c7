package api

import (
	"errors"
	"net/http"

	"giftcode-market/internal/handler/dto/request"
	resdto "giftcode-market/internal/handler/dto/response"
	"giftcode-market/internal/handler/httperr"
	"giftcode-market/internal/handler/middleware"
	"giftcode-market/internal/usecase/commands"
	"giftcode-market/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the manual payment verification and store review workflows.
type AdminHandler struct {
	paymentCommands commands.PaymentCommands
	storeCommands   commands.StoreCommands
	orderQueries    queries.OrderQueries
}

func NewAdminHandler(paymentCommands commands.PaymentCommands, storeCommands commands.StoreCommands, orderQueries queries.OrderQueries) *AdminHandler {
	return &AdminHandler{
		paymentCommands: paymentCommands,
		storeCommands:   storeCommands,
		orderQueries:    orderQueries,
	}
}

// @Summary List orders awaiting verification
// @Description List orders whose bank transfer payment needs a manual check
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} response.OrderListResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/orders/pending-verification [get]
func (h *AdminHandler) ListPendingVerification(c *gin.Context) {
	after, limit := parseListArgs(c)

	items, next, err := h.orderQueries.ListPendingVerification(c.Request.Context(), after, limit)
	if err != nil {
		if errors.Is(err, queries.ErrInvalidCursor) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list orders", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderListItems(items, next))
}

// @Summary Review a submitted payment
// @Description Verify or reject a bank transfer payment for an order
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body request.VerifyPaymentRequest true "Review decision"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/orders/{id}/payment-review [post]
func (h *AdminHandler) ReviewPayment(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	var req request.VerifyPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	if req.IsReject() {
		err = h.paymentCommands.RejectPayment(c.Request.Context(), orderID, adminID, req.TrimmedReason())
	} else {
		err = h.paymentCommands.VerifyPayment(c.Request.Context(), orderID, adminID)
	}
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
		case errors.Is(err, commands.ErrRejectionReasonRequired):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Rejection reason is required", nil)
		case errors.Is(err, commands.ErrInvalidTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Order is not awaiting verification", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Review a store application
// @Description Approve or suspend a store
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Param request body request.ReviewStoreRequest true "Review decision"
// @Success 200 {object} response.StoreResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/stores/{id}/review [post]
func (h *AdminHandler) ReviewStore(c *gin.Context) {
	storeID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid store id", nil)
		return
	}

	var req request.ReviewStoreRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	snap, err := h.storeCommands.ReviewStore(c.Request.Context(), storeID, req.IsApprove())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrStoreNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Store not found", nil)
		case errors.Is(err, commands.ErrInvalidTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Store cannot change to that status", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromStoreSnapshot(snap))
}
