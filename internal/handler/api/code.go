package api

import (
	"errors"
	"net/http"

	resdto "giftcode-market/internal/handler/dto/response"
	"giftcode-market/internal/handler/httperr"
	"giftcode-market/internal/handler/middleware"
	"giftcode-market/internal/usecase/commands"
	"giftcode-market/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CodeHandler struct {
	codeCommands commands.CodeCommands
	codeQueries  queries.CodeQueries
}

func NewCodeHandler(codeCommands commands.CodeCommands, codeQueries queries.CodeQueries) *CodeHandler {
	return &CodeHandler{
		codeCommands: codeCommands,
		codeQueries:  codeQueries,
	}
}

// @Summary List own codes
// @Description List all codes delivered to the caller
// @Tags codes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.DeliveredCodeListResponse
// @Failure 401 {object} map[string]string
// @Router /codes [get]
func (h *CodeHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	views, err := h.codeQueries.ListMine(c.Request.Context(), userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list codes", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromDeliveredCodeViews(views))
}

// @Summary Mark code viewed
// @Description Record the first time the buyer revealed a delivered code
// @Tags codes
// @Security BearerAuth
// @Param id path string true "Delivered code ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /codes/{id}/viewed [post]
func (h *CodeHandler) MarkViewed(c *gin.Context) {
	codeID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid code id", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingAuthContext, "Unauthorized", nil)
		return
	}

	err = h.codeCommands.MarkViewed(c.Request.Context(), codeID, userID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrCodeNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Code not found", nil)
		case errors.Is(err, commands.ErrNotCodeOwner):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Product availability
// @Description Number of unconsumed codes available for a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id}/availability [get]
func (h *CodeHandler) Availability(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid product id", nil)
		return
	}

	view, err := h.codeQueries.Availability(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, queries.ErrProductNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}
