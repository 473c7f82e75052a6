package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/DJCodeOne/freshwax-sub002/logger"
)

// Lease TTL must comfortably exceed the longest expected pipeline run so a
// crashed worker cannot block a submission forever.
const leaseTTL = 15 * time.Minute

// ErrLeaseHeld means another invocation is already processing the submission.
var ErrLeaseHeld = fmt.Errorf("submission is already being processed")

// SubmissionLocker serializes processing per submission id. Acquire returns a
// release func; the release func is a no-op when the lease already expired or
// was taken over.
type SubmissionLocker interface {
	Acquire(ctx context.Context, submissionID string) (release func(), err error)
}

// NewSubmissionLocker returns a Redis-backed locker, or a process-local noop
// when no Redis client is available (single-node deployments).
func NewSubmissionLocker(client *redis.Client) SubmissionLocker {
	if client == nil {
		return noopLocker{}
	}
	return &redisLocker{client: client}
}

type redisLocker struct {
	client *redis.Client
}

func leaseKey(submissionID string) string {
	return "submission:lease:" + submissionID
}

func (l *redisLocker) Acquire(ctx context.Context, submissionID string) (func(), error) {
	key := leaseKey(submissionID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, leaseTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire submission lease: %w", err)
	}
	if !ok {
		return nil, ErrLeaseHeld
	}

	release := func() {
		// Only delete when we still own the lease; a TTL expiry may have let
		// another worker take it over.
		val, err := l.client.Get(context.Background(), key).Result()
		if err != nil {
			if err != redis.Nil {
				logger.Warn("Failed to read submission lease on release",
					logger.String("submissionId", submissionID),
					logger.ErrorField(err))
			}
			return
		}
		if val != token {
			logger.Warn("Submission lease was taken over before release",
				logger.String("submissionId", submissionID))
			return
		}
		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			logger.Warn("Failed to release submission lease",
				logger.String("submissionId", submissionID),
				logger.ErrorField(err))
		}
	}
	return release, nil
}

type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, submissionID string) (func(), error) {
	return func() {}, nil
}
