package components

import (
	"giftcode-market/internal/domain/order"
	"giftcode-market/internal/pkg/clock"
	"giftcode-market/internal/usecase/commands"
	"giftcode-market/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	order.NewFactory,
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOrderQueries,
		queries.NewCodeQueries,
		queries.NewCouponQueries,
		queries.NewCartQueries,
		queries.NewUserQueries,
		// CodeQueries checks order visibility through the same scope rules
		// as the order detail endpoint.
		func(q queries.OrderQueries) queries.OrderAccessChecker { return q },
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewOrderCommands,
		commands.NewPaymentCommands,
		commands.NewCodeCommands,
		commands.NewFulfillmentCommands,
		commands.NewStoreCommands,
		commands.NewProductCommands,
	),
)
