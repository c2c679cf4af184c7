package api

import (
	"errors"
	"net/http"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/domain/user"
	"giftcode-market/internal/handler/dto/request"
	resdto "giftcode-market/internal/handler/dto/response"
	"giftcode-market/internal/handler/httperr"
	"giftcode-market/internal/handler/middleware"
	"giftcode-market/internal/usecase/commands"
	"giftcode-market/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StoreHandler exposes the seller-side operations: stocking the code
// pool, watching incoming orders and confirming manual handovers.
type StoreHandler struct {
	storeCommands       commands.StoreCommands
	productCommands     commands.ProductCommands
	codeCommands        commands.CodeCommands
	fulfillmentCommands commands.FulfillmentCommands
	orderQueries        queries.OrderQueries
	codeQueries         queries.CodeQueries
}

func NewStoreHandler(
	storeCommands commands.StoreCommands,
	productCommands commands.ProductCommands,
	codeCommands commands.CodeCommands,
	fulfillmentCommands commands.FulfillmentCommands,
	orderQueries queries.OrderQueries,
	codeQueries queries.CodeQueries,
) *StoreHandler {
	return &StoreHandler{
		storeCommands:       storeCommands,
		productCommands:     productCommands,
		codeCommands:        codeCommands,
		fulfillmentCommands: fulfillmentCommands,
		orderQueries:        orderQueries,
		codeQueries:         codeQueries,
	}
}

// resolveStoreID picks the store the caller operates on: sellers always
// act on their own store, admins may name one via the store_id query.
func resolveStoreID(c *gin.Context) (uuid.UUID, bool) {
	role, _ := middleware.GetUserRole(c)
	if role == user.RoleAdmin {
		if raw := c.Query("store_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return uuid.Nil, false
			}
			return id, true
		}
	}
	return middleware.GetStoreID(c)
}

// @Summary List store orders
// @Description List orders containing this store's products
// @Tags store
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} response.OrderListResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /store/orders [get]
func (h *StoreHandler) ListStoreOrders(c *gin.Context) {
	scope, ok := middleware.GetAccessScope(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}
	storeID, ok := resolveStoreID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusForbidden, errMissingAuthContext, "No store associated with this account", nil)
		return
	}

	after, limit := parseListArgs(c)
	items, next, err := h.orderQueries.ListByStore(c.Request.Context(), scope, storeID, after, limit)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrInvalidCursor):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
		case errors.Is(err, queries.ErrOrderAccess):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list orders", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderListItems(items, next))
}

// @Summary List store deliveries
// @Description List codes delivered from this store's pool
// @Tags store
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.DeliveredCodeListResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /store/deliveries [get]
func (h *StoreHandler) ListDeliveries(c *gin.Context) {
	scope, ok := middleware.GetAccessScope(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}
	storeID, ok := resolveStoreID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusForbidden, errMissingAuthContext, "No store associated with this account", nil)
		return
	}

	views, err := h.codeQueries.ListStoreDeliveries(c.Request.Context(), scope, storeID)
	if err != nil {
		if errors.Is(err, queries.ErrOrderAccess) {
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list deliveries", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromDeliveredCodeViews(views))
}

// @Summary Append codes
// @Description Add a batch of gift card codes to a product's pool
// @Tags store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body request.AppendCodesRequest true "Codes to append"
// @Success 200 {object} response.AppendCodesResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /store/products/{id}/codes [post]
func (h *StoreHandler) AppendCodes(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product id", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)
	var storeID *uuid.UUID
	if id, ok := middleware.GetStoreID(c); ok {
		storeID = &id
	}

	var req request.AppendCodesRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.codeCommands.AppendCodes(c.Request.Context(), productID, userID, storeID, role == user.RoleAdmin, req.TrimmedCodes())
	if err != nil {
		var dupErr *codepool.DuplicateCodeError
		switch {
		case errors.Is(err, commands.ErrProductNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
		case errors.Is(err, commands.ErrNotProductOwner):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Product does not belong to your store", nil)
		case errors.As(err, &dupErr):
			httperr.AbortWithError(c, http.StatusConflict, err, "Batch contains codes already in the pool", gin.H{
				"duplicates": dupErr.Duplicates,
			})
		default:
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid code batch", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.AppendCodesResponse{
		ProductID:      result.ProductID,
		Added:          result.Added,
		AvailableCodes: result.AvailableCodes,
	})
}

// @Summary Acknowledge fulfillment
// @Description Confirm a manual line item has been handed over to the buyer
// @Tags store
// @Security BearerAuth
// @Param id path string true "Order item ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /store/order-items/{id}/fulfill [post]
func (h *StoreHandler) AcknowledgeFulfillment(c *gin.Context) {
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order item id", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)
	var storeID *uuid.UUID
	if id, ok := middleware.GetStoreID(c); ok {
		storeID = &id
	}

	err = h.fulfillmentCommands.AcknowledgeFulfillment(c.Request.Context(), itemID, userID, storeID, role == user.RoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderItemNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order item not found", nil)
		case errors.Is(err, commands.ErrNotStoreSeller):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Item does not belong to your store", nil)
		case errors.Is(err, commands.ErrInvalidTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Order is not in a fulfillable state", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Open a store
// @Description Register a pending store for the current user and promote them to seller
// @Tags store
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} response.StoreResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /stores [post]
func (h *StoreHandler) CreateStore(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	var req request.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	snap, err := h.storeCommands.CreateStore(c.Request.Context(), userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrAlreadyHasStore):
			httperr.AbortWithError(c, http.StatusConflict, err, "You already own a store", nil)
		case errors.Is(err, commands.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid store name", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromStoreSnapshot(snap))
}

// @Summary Create product
// @Description List a new product under the seller's store
// @Tags store
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} response.ProductCreatedResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /store/products [post]
func (h *StoreHandler) CreateProduct(c *gin.Context) {
	storeID, ok := resolveStoreID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusForbidden, errMissingAuthContext, "No store associated with this account", nil)
		return
	}

	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	productID, err := h.productCommands.CreateProduct(c.Request.Context(), storeID, req.Name, req.PriceCents, req.DeliveryType)
	if err != nil {
		if errors.Is(err, commands.ErrDomainValidation) {
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Product validation failed", nil)
		} else {
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.ProductCreatedResponse{ID: productID})
}

// @Summary Update product
// @Description Change a product's name or price
// @Tags store
// @Security BearerAuth
// @Accept json
// @Param id path string true "Product ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /store/products/{id} [put]
func (h *StoreHandler) UpdateProduct(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product id", nil)
		return
	}
	storeID, ok := resolveStoreID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusForbidden, errMissingAuthContext, "No store associated with this account", nil)
		return
	}

	var req request.UpdateProductRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	err = h.productCommands.UpdateProduct(c.Request.Context(), productID, storeID, req.Name, req.PriceCents)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrProductNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
		case errors.Is(err, commands.ErrNotProductOwner):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Product does not belong to your store", nil)
		case errors.Is(err, commands.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Product validation failed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Toggle product stock
// @Description Flip availability of a manual-delivery product
// @Tags store
// @Security BearerAuth
// @Accept json
// @Param id path string true "Product ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /store/products/{id}/stock [patch]
func (h *StoreHandler) SetStock(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product id", nil)
		return
	}
	storeID, ok := resolveStoreID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusForbidden, errMissingAuthContext, "No store associated with this account", nil)
		return
	}

	var req request.SetStockRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	err = h.productCommands.SetStock(c.Request.Context(), productID, storeID, *req.InStock)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrProductNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
		case errors.Is(err, commands.ErrNotProductOwner):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Product does not belong to your store", nil)
		case errors.Is(err, commands.ErrInstantStockDerived):
			httperr.AbortWithError(c, http.StatusConflict, err, "Instant product stock follows the code pool", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
