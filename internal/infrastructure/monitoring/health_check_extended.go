package monitoring

import (
	"context"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// AddRedisCheck adds a Redis health check
func (h *HealthChecker) AddRedisCheck(client *redis.Client, interval, timeout time.Duration) {
	h.AddCheck("redis", func(ctx context.Context) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			return false, err
		}
		return true, nil
	}, interval, timeout)
}

// AddRepositoryCheck adds an assignment repository health check. Reading a
// probe visitor exercises the full storage path without mutating anything.
func (h *HealthChecker) AddRepositoryCheck(repo ports.AssignmentRepository, interval, timeout time.Duration) {
	h.AddCheck("repository", func(ctx context.Context) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if _, err := repo.Get(ctx, domain.VisitorID("healthcheck")); err != nil {
			return false, err
		}
		return true, nil
	}, interval, timeout)
}

// AddReadinessCheck verifies the dependencies that must answer before the
// beacon accepts traffic: the assignment repository plus an optional storage
// ping supplied by the caller.
func (h *HealthChecker) AddReadinessCheck(
	repo ports.AssignmentRepository,
	ping func(ctx context.Context) error,
	interval, timeout time.Duration,
) {
	h.AddCheck("readiness", func(ctx context.Context) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if ping != nil {
			if err := ping(ctx); err != nil {
				return false, err
			}
		}

		if repo != nil {
			if _, err := repo.Get(ctx, domain.VisitorID("healthcheck")); err != nil {
				return false, err
			}
		}

		return true, nil
	}, interval, timeout)
}
