package repositories

import (
	"context"

	"futurfounder/internal/core/ports"
	"futurfounder/internal/infrastructure/repositories/memory"
	redisrepo "futurfounder/internal/infrastructure/repositories/redis"
	"futurfounder/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	// Try to connect to Redis if enabled
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis assignment repository")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory assignment repository")
	}

	return factory, nil
}

// CreateAssignmentRepository creates an assignment repository (Redis or
// memory with fallback). A memory repository means assignments survive only
// as long as the process, which is acceptable for a single-instance beacon.
func (f *RepositoryFactory) CreateAssignmentRepository() ports.AssignmentRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisAssignmentRepository(f.redisClient)
	}
	return memory.NewMemoryAssignmentRepository()
}

// RedisClient exposes the underlying client for health checks. Nil when the
// factory fell back to memory.
func (f *RepositoryFactory) RedisClient() *redis.Client {
	if !f.useRedis {
		return nil
	}
	return f.redisClient
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
