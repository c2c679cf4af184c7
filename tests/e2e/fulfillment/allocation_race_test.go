//go:build e2e

package fulfillment_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/tests/common/authtest"
	"giftcode-market/tests/common/dbtest"
)

// =============================================================================
// TestConcurrentAllocation - competing claims against one code pool
// =============================================================================

func (s *OrderFlowSuite) TestConcurrentAllocation() {
	s.Run("Race case: competing orders never overdraw the pool", func() {
		t := s.T()

		_, storeID := dbtest.CreateTestSeller(t, s.DB, "race-seller@example.com", "Race Store")
		productID := dbtest.CreateTestProduct(t, s.DB, storeID, "Hot Card", 1500, "instant")
		dbtest.SeedProductCodes(t, s.DB, productID, "RACE-1", "RACE-2")

		orderIDs := make([]uuid.UUID, 3)
		for i := range orderIDs {
			email := fmt.Sprintf("race-buyer%d@example.com", i)
			dbtest.CreateTestUser(t, s.DB, email, "customer")
			token := authtest.LoginUser(t, s.Router, email, "password123")
			created := s.placeOrder(t, token, productID, 1, "COD")
			orderIDs[i] = created.ID
		}

		var wg sync.WaitGroup
		results := make(chan error, len(orderIDs))
		for _, id := range orderIDs {
			wg.Add(1)
			go func(orderID uuid.UUID) {
				defer wg.Done()
				_, err := s.Fulfillment.AllocateOrder(context.Background(), orderID)
				results <- err
			}(id)
		}
		wg.Wait()
		close(results)

		var failures int
		for err := range results {
			if err == nil {
				continue
			}
			failures++
			var stockErr *codepool.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			require.Equal(t, 1, stockErr.Requested)
		}
		require.Equal(t, 1, failures, "exactly one order must lose the race")

		// The two pooled codes were handed out once each, nothing more
		var delivered int64
		require.NoError(t, s.DB.QueryRow(context.Background(),
			`SELECT count(*) FROM delivered_codes dc
			 JOIN product_codes pc ON pc.id = dc.code_id
			 WHERE pc.product_id = $1`, productID).Scan(&delivered))
		require.Equal(t, int64(2), delivered)
		require.Equal(t, int64(0), dbtest.CountAvailableCodes(t, s.DB, productID))
	})
}
