//go:build e2e

package store_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"giftcode-market/internal/handler/dto/request"
	"giftcode-market/internal/handler/dto/response"
	"giftcode-market/tests/common/authtest"
	"giftcode-market/tests/common/dbtest"
	"giftcode-market/tests/common/httptest"
	"giftcode-market/tests/e2e"
)

const storesURL = "/api/stores"

type StoreManagementSuite struct {
	e2e.SharedSuite
}

func TestStoreManagementSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(StoreManagementSuite))
}

func (s *StoreManagementSuite) openStore(t *testing.T, token, name string) response.StoreResponse {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, storesURL,
		request.CreateStoreRequest{Name: name}, token)

	var created response.StoreResponse
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)
	return created
}

func (s *StoreManagementSuite) reviewStore(t *testing.T, token, storeID, action string) *response.StoreResponse {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost,
		"/api/admin/stores/"+storeID+"/review", request.ReviewStoreRequest{Action: action}, token)

	var reviewed response.StoreResponse
	httptest.AssertSuccessResponse(t, w, http.StatusOK, &reviewed)
	return &reviewed
}

func (s *StoreManagementSuite) TestStoreLifecycle() {
	s.Run("Normal case: open, approve, list a product, toggle its stock", func() {
		t := s.T()

		dbtest.CreateTestUser(t, s.DB, "applicant@example.com", "customer")
		dbtest.CreateTestUser(t, s.DB, "admin@example.com", "admin")
		token := authtest.LoginUser(t, s.Router, "applicant@example.com", "password123")
		adminToken := authtest.LoginUser(t, s.Router, "admin@example.com", "password123")

		created := s.openStore(t, token, "Card Corner")
		require.Equal(t, "pending", created.Status)

		var role string
		err := s.DB.QueryRow(context.Background(),
			"SELECT role FROM users WHERE email = 'applicant@example.com'").Scan(&role)
		require.NoError(t, err)
		require.Equal(t, "seller", role)

		approved := s.reviewStore(t, adminToken, created.ID.String(), "approve")
		require.Equal(t, "approved", approved.Status)

		// The session predates the promotion, so a fresh token carries
		// the seller role and store claim.
		token = authtest.LoginUser(t, s.Router, "applicant@example.com", "password123")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/store/products",
			request.CreateProductRequest{Name: "Console Top-Up", PriceCents: 2500, DeliveryType: "manual"}, token)
		var product response.ProductCreatedResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &product)

		inStock := false
		w = httptest.PerformRequest(t, s.Router, http.MethodPatch,
			"/api/store/products/"+product.ID.String()+"/stock",
			request.SetStockRequest{InStock: &inStock}, token)
		require.Equal(t, http.StatusNoContent, w.Code)

		var stocked bool
		err = s.DB.QueryRow(context.Background(),
			"SELECT in_stock FROM products WHERE id = $1", product.ID).Scan(&stocked)
		require.NoError(t, err)
		require.False(t, stocked)
	})

	s.Run("Error case: one store per account", func() {
		t := s.T()

		dbtest.CreateTestUser(t, s.DB, "applicant@example.com", "customer")
		token := authtest.LoginUser(t, s.Router, "applicant@example.com", "password123")

		s.openStore(t, token, "First Store")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, storesURL,
			request.CreateStoreRequest{Name: "Second Store"}, token)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "You already own a store")
	})

	s.Run("Error case: a pending store cannot be suspended", func() {
		t := s.T()

		dbtest.CreateTestUser(t, s.DB, "applicant@example.com", "customer")
		dbtest.CreateTestUser(t, s.DB, "admin@example.com", "admin")
		token := authtest.LoginUser(t, s.Router, "applicant@example.com", "password123")
		adminToken := authtest.LoginUser(t, s.Router, "admin@example.com", "password123")

		created := s.openStore(t, token, "Card Corner")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			"/api/admin/stores/"+created.ID.String()+"/review",
			request.ReviewStoreRequest{Action: "suspend"}, adminToken)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "Store cannot change to that status")
	})

	s.Run("Error case: instant product stock follows the code pool", func() {
		t := s.T()

		_, storeID := dbtest.CreateTestSeller(t, s.DB, "seller@example.com", "Instant Goods")
		productID := dbtest.CreateTestProduct(t, s.DB, storeID, "Gift Card 100", 10000, "instant")
		token := authtest.LoginUser(t, s.Router, "seller@example.com", "password123")

		inStock := true
		w := httptest.PerformRequest(t, s.Router, http.MethodPatch,
			"/api/store/products/"+productID.String()+"/stock",
			request.SetStockRequest{InStock: &inStock}, token)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "Instant product stock follows the code pool")
	})
}
