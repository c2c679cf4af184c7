//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/domain/user"
	"giftcode-market/internal/handler/api"
	"giftcode-market/internal/handler/dto/request"
	resdto "giftcode-market/internal/handler/dto/response"
	"giftcode-market/internal/usecase/commands"
	"giftcode-market/internal/usecase/queries"
	"giftcode-market/tests/common/builder"
	"giftcode-market/tests/common/httptest"
	"giftcode-market/tests/common/testutil"
	commandsmock "giftcode-market/tests/mock/commands"
	queriesmock "giftcode-market/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OrderHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockOrders   *commandsmock.MockOrderCommands
	mockPayments *commandsmock.MockPaymentCommands
	mockQueries  *queriesmock.MockOrderQueries
	mockCodes    *queriesmock.MockCodeQueries
	mockCart     *queriesmock.MockCartQueries
	handler      *api.OrderHandler
	userID       uuid.UUID
}

func (s *OrderHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockOrders = commandsmock.NewMockOrderCommands(s.mockCtrl)
	s.mockPayments = commandsmock.NewMockPaymentCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockOrderQueries(s.mockCtrl)
	s.mockCodes = queriesmock.NewMockCodeQueries(s.mockCtrl)
	s.mockCart = queriesmock.NewMockCartQueries(s.mockCtrl)
	s.handler = api.NewOrderHandler(s.mockOrders, s.mockPayments, s.mockQueries, s.mockCodes, s.mockCart)
	s.userID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.userID)
		c.Set("user_role", user.RoleCustomer)
		c.Next()
	}

	s.router.POST("/orders", authMiddleware, s.handler.CreateOrder)
	s.router.GET("/orders", authMiddleware, s.handler.ListMyOrders)
	s.router.GET("/orders/:id", authMiddleware, s.handler.GetOrder)
	s.router.POST("/orders/:id/cancel", authMiddleware, s.handler.CancelOrder)
	s.router.POST("/orders/:id/payment", authMiddleware, s.handler.SubmitPayment)
	s.router.GET("/orders/:id/codes", authMiddleware, s.handler.ListOrderCodes)
	s.router.POST("/cart/validate", authMiddleware, s.handler.ValidateCart)
}

func (s *OrderHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestOrderHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrderHandlerTestSuite))
}

func idempotencyHeader() map[string]string {
	return map[string]string{"Idempotency-Key": uuid.New().String()}
}

// ================================================================================
// TestCreateOrder
// ================================================================================

func (s *OrderHandlerTestSuite) TestCreateOrder() {
	url := "/orders"

	orderBuilder := builder.NewOrderBuilder()
	reqBody := orderBuilder.BuildCreateRequestDTO()
	returnView := orderBuilder.BuildOrderView()

	s.Run("success: returns 201 Created for a fresh order", func() {
		s.mockOrders.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), s.userID, gomock.Any()).
			Return(&commands.CreateOrderResult{Order: returnView}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token", idempotencyHeader())

		var response resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(returnView.ID, response.ID)
		s.Equal(returnView.Status, response.Status)
		s.Len(response.Items, len(returnView.Items))
	})

	s.Run("success: returns 200 OK for an idempotent replay", func() {
		s.mockOrders.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), s.userID, gomock.Any()).
			Return(&commands.CreateOrderResult{Order: returnView, IsReplayed: true}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token", idempotencyHeader())

		var response resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(returnView.ID, response.ID)
	})

	s.Run("error: 400 Bad Request without a valid Idempotency-Key header", func() {
		for _, key := range []string{"", "not-a-uuid"} {
			rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token",
				map[string]string{"Idempotency-Key": key})
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key")
		}
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		testCases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing field: items", mutate: testutil.Field("items", nil)},
			{name: "empty items", mutate: testutil.Field("items", []any{})},
			{name: "missing field: payment_method", mutate: testutil.Field("payment_method", nil)},
			{name: "unknown payment_method", mutate: testutil.Field("payment_method", "PAYPAL")},
			{name: "zero quantity item", mutate: testutil.Field("items", []map[string]any{
				{"product_id": uuid.New().String(), "quantity": 0},
			})},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token", idempotencyHeader())
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "", idempotencyHeader())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "product not found",
				commandsError:  commands.ErrProductNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Product not found",
			},
			{
				name:           "store not approved",
				commandsError:  commands.ErrStoreNotApproved,
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "not approved",
			},
			{
				name:           "product unavailable",
				commandsError:  commands.ErrProductUnavailable,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "out of stock",
			},
			{
				name:           "invalid coupon",
				commandsError:  commands.ErrInvalidCoupon,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "coupon",
			},
			{
				name:           "idempotency key reused with a different body",
				commandsError:  commands.ErrDuplicateRequest,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "Idempotency key",
			},
			{
				name:           "concurrent request with the same key",
				commandsError:  commands.ErrIdempotencyInProgress,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "being processed",
			},
			{
				name:           "domain validation error",
				commandsError:  commands.ErrDomainValidation,
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "validation",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockOrders.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), s.userID, gomock.Any()).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token", idempotencyHeader())
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})

	s.Run("error: 409 Conflict with shortfall detail on insufficient stock", func() {
		productID := uuid.New()
		s.mockOrders.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), s.userID, gomock.Any()).
			Return(nil, &codepool.InsufficientStockError{ProductID: productID, Requested: 3, Available: 1}).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token", idempotencyHeader())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Insufficient stock")
		s.Contains(rec.Body.String(), productID.String())
	})
}

// ================================================================================
// TestGetOrder
// ================================================================================

func (s *OrderHandlerTestSuite) TestGetOrder() {
	returnView := builder.NewOrderBuilder().BuildOrderView()
	url := "/orders/" + returnView.ID.String()

	s.Run("success: returns 200 OK with OrderResponse", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), returnView.ID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(returnView.ID, response.ID)
		s.Equal(returnView.TotalCents, response.TotalCents)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders/invalid-uuid", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid order id")
	})

	s.Run("error: 404 Not Found for missing order", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), returnView.ID).
			Return(nil, queries.ErrOrderNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Order not found")
	})

	s.Run("error: 403 Forbidden for another user's order", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), returnView.ID).
			Return(nil, queries.ErrOrderAccess).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Access denied")
	})
}

// ================================================================================
// TestListMyOrders
// ================================================================================

func (s *OrderHandlerTestSuite) TestListMyOrders() {
	url := "/orders"

	s.Run("success: returns 200 OK with cursor-paginated orders", func() {
		items := []*queries.OrderListItem{
			{ID: uuid.New(), Status: "PENDING", PaymentMethod: "COD", TotalCents: 2000, ItemCount: 2},
			{ID: uuid.New(), Status: "COMPLETED", PaymentMethod: "STRIPE", TotalCents: 500, ItemCount: 1},
		}
		next := &queries.Cursor{After: "opaque-cursor"}
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.userID, gomock.Nil(), 50).
			Return(items, next, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.OrderListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response.Orders, 2)
		s.Equal(items[0].ID, response.Orders[0].ID)
		s.Require().NotNil(response.NextCursor)
		s.Equal("opaque-cursor", *response.NextCursor)
	})

	s.Run("success: passes cursor and limit through", func() {
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.userID, &queries.Cursor{After: "abc"}, 10).
			Return(nil, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?cursor=abc&limit=10", nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 Bad Request for a malformed cursor", func() {
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.userID, gomock.Any(), gomock.Any()).
			Return(nil, nil, queries.ErrInvalidCursor).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?cursor=garbage", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid cursor")
	})
}

// ================================================================================
// TestCancelOrder
// ================================================================================

func (s *OrderHandlerTestSuite) TestCancelOrder() {
	orderID := uuid.New()
	url := "/orders/" + orderID.String() + "/cancel"

	s.Run("success: returns 204 No Content", func() {
		s.mockOrders.EXPECT().CancelOrder(gomock.Any(), orderID, s.userID, false).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 409 Conflict once codes are delivered", func() {
		s.mockOrders.EXPECT().CancelOrder(gomock.Any(), orderID, s.userID, false).
			Return(commands.ErrOrderNotCancellable).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "no longer be cancelled")
	})

	s.Run("error: 403 Forbidden for another user's order", func() {
		s.mockOrders.EXPECT().CancelOrder(gomock.Any(), orderID, s.userID, false).
			Return(commands.ErrNotOrderOwner).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Access denied")
	})
}

// ================================================================================
// TestSubmitPayment
// ================================================================================

func (s *OrderHandlerTestSuite) TestSubmitPayment() {
	orderID := uuid.New()
	url := "/orders/" + orderID.String() + "/payment"

	s.Run("success: returns 204 No Content", func() {
		s.mockPayments.EXPECT().SubmitPayment(gomock.Any(), orderID, s.userID).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 409 Conflict when the order is not awaiting payment", func() {
		s.mockPayments.EXPECT().SubmitPayment(gomock.Any(), orderID, s.userID).
			Return(commands.ErrInvalidTransition).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "not awaiting payment")
	})
}

// ================================================================================
// TestValidateCart
// ================================================================================

func (s *OrderHandlerTestSuite) TestValidateCart() {
	url := "/cart/validate"
	productID := uuid.New()

	s.Run("success: returns 200 OK with per-line results", func() {
		view := &queries.CartValidationView{
			Valid:         false,
			SubtotalCents: 2000,
			Items: []queries.CartItemView{
				{ProductID: productID, ProductName: "Game Card", Quantity: 2, PriceCents: 1000, LineCents: 2000, DeliveryType: "instant", OK: true},
				{ProductID: uuid.New(), Quantity: 1, Problem: queries.CartProblemProductNotFound},
			},
		}
		s.mockCart.EXPECT().Validate(gomock.Any(), gomock.Len(2)).
			Return(view, nil).Times(1)

		body := request.ValidateCartRequest{Items: []request.OrderItemRequest{
			{ProductID: productID, Quantity: 2},
			{ProductID: view.Items[1].ProductID, Quantity: 1},
		}}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "bearer-token")

		var response resdto.CartValidationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.False(response.Valid)
		s.Equal(int64(2000), response.SubtotalCents)
		s.Require().Len(response.Items, 2)
		s.True(response.Items[0].OK)
		s.Equal("product_not_found", response.Items[1].Problem)
	})

	s.Run("error: 400 Bad Request when items are missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("auth test: 401 Unauthorized without a token", func() {
		body := request.ValidateCartRequest{Items: []request.OrderItemRequest{{ProductID: productID, Quantity: 1}}}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
