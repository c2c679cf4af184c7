package components

import (
	"context"

	"giftcode-market/internal/infra/cache"
	"giftcode-market/internal/infra/events"
	"giftcode-market/internal/infra/repository"
	"giftcode-market/internal/pkg/config"
	"giftcode-market/internal/usecase/commands"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// WorkerModule runs the background side of order fulfillment: the outbox
// relay that ships notification jobs to the broker, and the consumer
// that allocates codes when an order becomes payable.
var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewPublisher,
		NewOutboxRelay,
		NewFulfillmentConsumer,
	),
	fx.Invoke(startWorkers),
)

func NewPublisher(lc fx.Lifecycle, cfg config.Config) (*events.Publisher, error) {
	publisher, err := events.NewPublisher(cfg.AMQP.URL)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			publisher.Close()
			return nil
		},
	})

	return publisher, nil
}

func NewOutboxRelay(pool *pgxpool.Pool, repo *repository.NotificationRepository, publisher *events.Publisher, cfg config.Config) *events.OutboxRelay {
	return events.NewOutboxRelay(pool, repo, publisher, cfg.Worker.OutboxPollInterval, int32(cfg.Worker.OutboxBatchSize))
}

func NewFulfillmentConsumer(cfg config.Config, fulfillment commands.FulfillmentCommands, availability *cache.AvailabilityCache) *events.FulfillmentConsumer {
	return events.NewFulfillmentConsumer(cfg.AMQP.URL, fulfillment, availability)
}

func startWorkers(lc fx.Lifecycle, relay *events.OutboxRelay, consumer *events.FulfillmentConsumer) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go relay.Run(ctx)
			go consumer.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
