package api

import (
	"errors"
	"net/http"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/handler/dto/request"
	resdto "giftcode-market/internal/handler/dto/response"
	"giftcode-market/internal/handler/httperr"
	"giftcode-market/internal/handler/middleware"
	"giftcode-market/internal/usecase/commands"
	"giftcode-market/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderCommands   commands.OrderCommands
	paymentCommands commands.PaymentCommands
	orderQueries    queries.OrderQueries
	codeQueries     queries.CodeQueries
	cartQueries     queries.CartQueries
}

func NewOrderHandler(
	orderCommands commands.OrderCommands,
	paymentCommands commands.PaymentCommands,
	orderQueries queries.OrderQueries,
	codeQueries queries.CodeQueries,
	cartQueries queries.CartQueries,
) *OrderHandler {
	return &OrderHandler{
		orderCommands:   orderCommands,
		paymentCommands: paymentCommands,
		orderQueries:    orderQueries,
		codeQueries:     codeQueries,
		cartQueries:     cartQueries,
	}
}

// @Summary Create order
// @Description Place an order for gift card products with idempotency key
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body request.CreateOrderRequest true "Order request"
// @Success 201 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	idempotencyKey, err := uuid.Parse(c.GetHeader("Idempotency-Key"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Idempotency-Key header must be a valid UUID", nil)
		return
	}

	var req request.CreateOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.orderCommands.CreateOrder(c.Request.Context(), req, userID, idempotencyKey)
	if err != nil {
		h.abortCreateOrderError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromOrderView(result.Order))
}

func (h *OrderHandler) abortCreateOrderError(c *gin.Context, err error) {
	var stockErr *codepool.InsufficientStockError
	switch {
	case errors.Is(err, commands.ErrProductNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
	case errors.Is(err, commands.ErrCouponNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
	case errors.Is(err, commands.ErrStoreNotApproved):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Store is not approved for sales", nil)
	case errors.Is(err, commands.ErrProductUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Product is out of stock", nil)
	case errors.Is(err, commands.ErrInsufficientStock):
		httperr.AbortWithError(c, http.StatusConflict, err, "Not enough codes available for the requested quantity", nil)
	case errors.Is(err, commands.ErrInvalidCoupon):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid or expired coupon", nil)
	case errors.Is(err, commands.ErrDuplicateRequest):
		httperr.AbortWithError(c, http.StatusConflict, err, "Idempotency key reused with a different request", nil)
	case errors.Is(err, commands.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request with this idempotency key is being processed", nil)
	case errors.As(err, &stockErr):
		httperr.AbortWithError(c, http.StatusConflict, err, "Insufficient stock", gin.H{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Order validation failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

// @Summary List own orders
// @Description List the caller's orders, newest first, cursor-paginated
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} response.OrderListResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	after, limit := parseListArgs(c)
	items, next, err := h.orderQueries.ListByUser(c.Request.Context(), userID, after, limit)
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

// @Summary Get order
// @Description Get an order with its line items
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}
	scope, ok := middleware.GetAccessScope(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	view, err := h.orderQueries.GetByID(c.Request.Context(), scope, orderID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrOrderNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
		case errors.Is(err, queries.ErrOrderAccess):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary Cancel order
// @Description Cancel an order before codes are delivered
// @Tags orders
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)

	err = h.orderCommands.CancelOrder(c.Request.Context(), orderID, userID, role.String() == "admin")
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
		case errors.Is(err, commands.ErrNotOrderOwner):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrOrderNotCancellable):
			httperr.AbortWithError(c, http.StatusConflict, err, "Order can no longer be cancelled", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Submit payment
// @Description Report that an external payment was sent for the order
// @Tags orders
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/payment [post]
func (h *OrderHandler) SubmitPayment(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	err = h.paymentCommands.SubmitPayment(c.Request.Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
		case errors.Is(err, commands.ErrNotOrderOwner):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrInvalidTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Order is not awaiting payment", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List order codes
// @Description List the codes delivered for an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.DeliveredCodeListResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/codes [get]
func (h *OrderHandler) ListOrderCodes(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order id", nil)
		return
	}
	scope, ok := middleware.GetAccessScope(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	views, err := h.codeQueries.ListByOrder(c.Request.Context(), scope, orderID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrOrderNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
		case errors.Is(err, queries.ErrOrderAccess):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromDeliveredCodeViews(views))
}

// @Summary Validate cart
// @Description Check cart lines against current stock and pricing before checkout
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.ValidateCartRequest true "Cart lines"
// @Success 200 {object} response.CartValidationResponse
// @Failure 400 {object} map[string]string
// @Router /cart/validate [post]
func (h *OrderHandler) ValidateCart(c *gin.Context) {
	var req request.ValidateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	items := make([]queries.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, queries.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	view, err := h.cartQueries.Validate(c.Request.Context(), items)
	if err != nil {
		if errors.Is(err, queries.ErrEmptyCart) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Cart has no items", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartValidationView(view))
}
