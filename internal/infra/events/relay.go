package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"giftcode-market/internal/infra/repository"
)

const (
	relayMaxAttempts = 10
	relayBaseBackoff = 30  // seconds, doubled per attempt
	relayLeaseSec    = 300 // publishing claims older than this are retaken
)

// OutboxRelay drains notification_jobs into the broker. Jobs are written
// in the same transaction as the business change, so a crash between
// commit and publish only ever delays a message, never loses it.
type OutboxRelay struct {
	pool      *pgxpool.Pool
	repo      *repository.NotificationRepository
	publisher *Publisher
	interval  time.Duration
	batchSize int32
}

func NewOutboxRelay(pool *pgxpool.Pool, repo *repository.NotificationRepository, publisher *Publisher, interval time.Duration, batchSize int32) *OutboxRelay {
	return &OutboxRelay{
		pool:      pool,
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("outbox relay started", "interval", r.interval.String(), "batch_size", r.batchSize)
	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox relay stopped")
			return
		case <-ticker.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelay) drainOnce(ctx context.Context) {
	// Claiming flips the jobs to 'publishing' in one statement, so
	// concurrent relay instances never pick up the same job. A claim
	// whose relay died before marking expires after relayLeaseSec and
	// becomes claimable again.
	jobs, err := r.repo.ClaimPending(ctx, r.pool, r.batchSize, relayMaxAttempts, relayLeaseSec)
	if err != nil {
		slog.Error("outbox claim failed", "error", err.Error())
		return
	}

	for _, job := range jobs {
		if err := r.publisher.Publish(ctx, job.Topic, job.Payload); err != nil {
			retryAfter := backoffSeconds(job.Attempts)
			slog.Warn("outbox publish failed",
				"job_id", job.ID,
				"topic", job.Topic,
				"attempts", job.Attempts,
				"retry_after_sec", retryAfter,
				"error", err.Error())
			if markErr := r.repo.MarkFailed(ctx, r.pool, job.ID, err.Error(), retryAfter); markErr != nil {
				slog.Error("outbox mark failed errored", "job_id", job.ID, "error", markErr.Error())
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, r.pool, job.ID); err != nil {
			// The message went out; on restart the job is retried and
			// consumers must tolerate the duplicate.
			slog.Error("outbox mark sent errored", "job_id", job.ID, "error", err.Error())
		}
	}
}

func backoffSeconds(attempts int32) int64 {
	sec := int64(relayBaseBackoff)
	for i := int32(1); i < attempts && sec < 3600; i++ {
		sec *= 2
	}
	if sec > 3600 {
		sec = 3600
	}
	return sec
}
