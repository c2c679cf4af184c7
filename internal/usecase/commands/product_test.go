//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcode-market/internal/domain/product"
	"giftcode-market/internal/usecase/commands"
)

func TestProductCommands_CreateProduct(t *testing.T) {
	t.Run("manual product starts sellable", func(t *testing.T) {
		uow := newFakeUoW()
		storeID := uuid.New()

		id, err := commands.NewProductCommands(uow).CreateProduct(
			context.Background(), storeID, "Steam Wallet 500", 50000, string(product.DeliveryManual))

		require.NoError(t, err)
		snaps, readErr := uow.CommandReads().ProductsByIDs(context.Background(), []uuid.UUID{id})
		require.NoError(t, readErr)
		require.Len(t, snaps, 1)
		assert.Equal(t, storeID, snaps[0].StoreID)
		assert.True(t, snaps[0].InStock)
	})

	t.Run("instant product waits for its first codes", func(t *testing.T) {
		uow := newFakeUoW()

		id, err := commands.NewProductCommands(uow).CreateProduct(
			context.Background(), uuid.New(), "Gift Card 100", 10000, string(product.DeliveryInstant))

		require.NoError(t, err)
		snaps, readErr := uow.CommandReads().ProductsByIDs(context.Background(), []uuid.UUID{id})
		require.NoError(t, readErr)
		require.Len(t, snaps, 1)
		assert.False(t, snaps[0].InStock)
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		uow := newFakeUoW()

		_, err := commands.NewProductCommands(uow).CreateProduct(
			context.Background(), uuid.New(), "Gift Card 100", -1, string(product.DeliveryInstant))

		require.ErrorIs(t, err, commands.ErrDomainValidation)
	})
}

func TestProductCommands_UpdateProduct(t *testing.T) {
	t.Run("updates name and price", func(t *testing.T) {
		uow := newFakeUoW()
		storeID := uuid.New()
		snap := manualProduct(uuid.New(), storeID)
		uow.seedProduct(snap)

		err := commands.NewProductCommands(uow).UpdateProduct(
			context.Background(), snap.ID, storeID, "Renamed Card", 2500)

		require.NoError(t, err)
		snaps, readErr := uow.CommandReads().ProductsByIDs(context.Background(), []uuid.UUID{snap.ID})
		require.NoError(t, readErr)
		require.Len(t, snaps, 1)
		assert.Equal(t, "Renamed Card", snaps[0].Name)
		assert.Equal(t, int64(2500), snaps[0].PriceCents)
	})

	t.Run("another store's product", func(t *testing.T) {
		uow := newFakeUoW()
		snap := manualProduct(uuid.New(), uuid.New())
		uow.seedProduct(snap)

		err := commands.NewProductCommands(uow).UpdateProduct(
			context.Background(), snap.ID, uuid.New(), "Renamed Card", 2500)

		require.ErrorIs(t, err, commands.ErrNotProductOwner)
	})

	t.Run("unknown product", func(t *testing.T) {
		uow := newFakeUoW()

		err := commands.NewProductCommands(uow).UpdateProduct(
			context.Background(), uuid.New(), uuid.New(), "Renamed Card", 2500)

		require.ErrorIs(t, err, commands.ErrProductNotFound)
	})
}

func TestProductCommands_SetStock(t *testing.T) {
	t.Run("toggles a manual product", func(t *testing.T) {
		uow := newFakeUoW()
		storeID := uuid.New()
		snap := manualProduct(uuid.New(), storeID)
		uow.seedProduct(snap)

		cmds := commands.NewProductCommands(uow)
		require.NoError(t, cmds.SetStock(context.Background(), snap.ID, storeID, false))

		snaps, err := uow.CommandReads().ProductsByIDs(context.Background(), []uuid.UUID{snap.ID})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.False(t, snaps[0].InStock)

		require.NoError(t, cmds.SetStock(context.Background(), snap.ID, storeID, true))
		snaps, err = uow.CommandReads().ProductsByIDs(context.Background(), []uuid.UUID{snap.ID})
		require.NoError(t, err)
		assert.True(t, snaps[0].InStock)
	})

	t.Run("instant product stock follows the pool", func(t *testing.T) {
		uow := newFakeUoW()
		storeID := uuid.New()
		snap := instantProduct(uuid.New(), storeID, 5)
		uow.seedProduct(snap)

		err := commands.NewProductCommands(uow).SetStock(context.Background(), snap.ID, storeID, false)

		require.ErrorIs(t, err, commands.ErrInstantStockDerived)
	})

	t.Run("another store's product", func(t *testing.T) {
		uow := newFakeUoW()
		snap := manualProduct(uuid.New(), uuid.New())
		uow.seedProduct(snap)

		err := commands.NewProductCommands(uow).SetStock(context.Background(), snap.ID, uuid.New(), false)

		require.ErrorIs(t, err, commands.ErrNotProductOwner)
	})
}
