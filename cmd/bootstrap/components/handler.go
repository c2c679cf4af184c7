package components

import (
	"giftcode-market/internal/handler"
	"giftcode-market/internal/handler/api"
	"giftcode-market/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewOrderHandler,
		api.NewCodeHandler,
		api.NewCouponHandler,
		api.NewStoreHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
