package repository

import (
	"context"
	"time"

	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"giftcode-market/internal/pkg/pgconv"
)

const insertNotificationJobSQL = `
INSERT INTO notification_jobs (id, kind, topic, payload, run_at)
VALUES ($1, $2, $3, $4, $5)`

// Claims due jobs for one relay pass. SKIP LOCKED lets multiple relay
// instances drain the outbox without double-publishing. Rows stuck in
// 'publishing' past the lease are claims from a relay that died between
// claiming and marking; they are taken back once the lease expires, so
// delivery is at-least-once.
const claimPendingJobsSQL = `
UPDATE notification_jobs nj SET
	status = 'publishing',
	attempts = attempts + 1,
	updated_at = now()
FROM (
	SELECT id FROM notification_jobs
	WHERE (
		(status IN ('pending', 'failed') AND run_at <= now())
		OR (status = 'publishing' AND updated_at < now() - ($3 * interval '1 second'))
	) AND attempts < $2
	ORDER BY run_at, id
	LIMIT $1
	FOR UPDATE SKIP LOCKED
) due
WHERE nj.id = due.id
RETURNING nj.id, nj.kind, nj.topic, nj.payload, nj.run_at, nj.attempts, nj.status, nj.last_error, nj.created_at`

const markJobSentSQL = `
UPDATE notification_jobs SET status = 'sent', updated_at = now()
WHERE id = $1`

const markJobFailedSQL = `
UPDATE notification_jobs SET
	status = 'failed',
	last_error = $2,
	run_at = now() + ($3 * interval '1 second'),
	updated_at = now()
WHERE id = $1`

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := tx.Exec(ctx, insertNotificationJobSQL, uuid.New(), kind, topic, payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

func (r *NotificationRepository) ClaimPending(ctx context.Context, tx db.DBTX, limit, maxAttempts, leaseSec int32) ([]queries.NotificationJobView, error) {
	rows, err := tx.Query(ctx, claimPendingJobsSQL, limit, maxAttempts, leaseSec)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim pending notification jobs", err)
	}
	defer rows.Close()

	var jobs []queries.NotificationJobView
	for rows.Next() {
		var job queries.NotificationJobView
		var lastError pgtype.Text
		if err := rows.Scan(
			&job.ID,
			&job.Kind,
			&job.Topic,
			&job.Payload,
			&job.RunAt,
			&job.Attempts,
			&job.Status,
			&lastError,
			&job.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		job.LastError = pgconv.StringPtrFromPgtype(lastError)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, markJobSentSQL, id); err != nil {
		return infra.WrapRepoErr("failed to mark notification job sent", err)
	}
	return nil
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, cause string, retryAfterSec int64) error {
	if _, err := tx.Exec(ctx, markJobFailedSQL, id, cause, retryAfterSec); err != nil {
		return infra.WrapRepoErr("failed to mark notification job failed", err)
	}
	return nil
}
