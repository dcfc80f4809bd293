package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

const submissionLockScope = "sale-submission"

// SubmissionGuard serializes identical baskets from the same seller while a
// create is in flight. Acquire returns a release func on success.
type SubmissionGuard interface {
	Acquire(ctx context.Context, sellerID uuid.UUID, fingerprint string) (func(), error)
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReleaseIfOwner(ctx context.Context, key, owner string) (bool, error)
	LockKey(scope string, parts ...string) string
}

// RedisSubmissionGuard implements SubmissionGuard with SETNX and an owner-checked release.
type RedisSubmissionGuard struct {
	store lockStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewRedisSubmissionGuard builds a guard whose locks expire after ttl.
func NewRedisSubmissionGuard(store lockStore, ttl time.Duration, logg *logger.Logger) (*RedisSubmissionGuard, error) {
	if store == nil {
		return nil, fmt.Errorf("lock store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RedisSubmissionGuard{store: store, ttl: ttl, logg: logg}, nil
}

// Acquire takes the lock for the seller and basket. When Redis is unavailable
// the create proceeds unguarded and only the duplicate scan applies.
func (g *RedisSubmissionGuard) Acquire(ctx context.Context, sellerID uuid.UUID, fingerprint string) (func(), error) {
	key := g.store.LockKey(submissionLockScope, sellerID.String(), fingerprint)
	owner := uuid.NewString()

	acquired, err := g.store.SetNX(ctx, key, owner, g.ttl)
	if err != nil {
		g.logg.Warn(g.logg.WithField(ctx, "error", err.Error()), "submission lock unavailable")
		return func() {}, nil
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateSubmission, "an identical sale is already being processed")
	}

	return func() {
		if _, err := g.store.ReleaseIfOwner(context.WithoutCancel(ctx), key, owner); err != nil {
			g.logg.Warn(g.logg.WithField(ctx, "error", err.Error()), "submission lock release failed")
		}
	}, nil
}
