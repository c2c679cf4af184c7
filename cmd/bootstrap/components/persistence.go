package components

import (
	"giftcode-market/internal/infra/cache"
	"giftcode-market/internal/infra/readstore"
	"giftcode-market/internal/infra/repository"
	"giftcode-market/internal/infra/uow"
	"giftcode-market/internal/pkg/config"
	"giftcode-market/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	readstoreModule,
	repositoryModule,
	cacheModule,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Order
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderViewRepo)),
		),
		// DeliveredCode
		fx.Annotate(
			readstore.NewDeliveredCodeReadStore,
			fx.As(new(queries.DeliveredCodeReadStore)),
		),
		// Coupon
		fx.Annotate(
			readstore.NewCouponReadStore,
			fx.As(new(queries.CouponReadStore)),
		),
		// User
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		// Product, read side of cart validation
		fx.Annotate(
			readstore.NewProductReadStore,
			fx.As(new(queries.CartProductReadStore)),
		),
		// CodePool, kept concrete so the availability cache can wrap it
		readstore.NewCodePoolReadStore,
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		uow.NewPostgresUoW,
		repository.NewNotificationRepository,
	),
)

var cacheModule = fx.Module("persistence/cache",
	fx.Provide(
		NewAvailabilityCache,
		func(c *cache.AvailabilityCache) queries.AvailabilityReadStore { return c },
	),
)

func NewAvailabilityCache(rdb *redis.Client, store *readstore.CodePoolReadStore, cfg config.Config) *cache.AvailabilityCache {
	return cache.NewAvailabilityCache(rdb, store, cfg.Redis.AvailableTTL)
}
