package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// Assignments are kept for a year per visitor; experiments on a landing page
// never outlive that.
const assignmentTTL = 365 * 24 * time.Hour

// RedisAssignmentRepository stores one JSON blob per visitor holding the
// full testID→assignment map. Reads and writes cover the whole blob; two
// instances racing to assign the same visitor overwrite each other
// last-write-wins, which the experiment contract accepts.
type RedisAssignmentRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisAssignmentRepository(client *redis.Client) ports.AssignmentRepository {
	return &RedisAssignmentRepository{
		client: client,
		prefix: "futurfounder:assignments:",
	}
}

func (r *RedisAssignmentRepository) visitorKey(id domain.VisitorID) string {
	return r.prefix + string(id)
}

func (r *RedisAssignmentRepository) Get(ctx context.Context, visitorID domain.VisitorID) (domain.AssignmentMap, error) {
	data, err := r.client.Get(ctx, r.visitorKey(visitorID)).Result()
	if err == redis.Nil {
		return domain.AssignmentMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments from Redis: %w", err)
	}

	var assignments domain.AssignmentMap
	if err := json.Unmarshal([]byte(data), &assignments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignments: %w", err)
	}

	return assignments, nil
}

func (r *RedisAssignmentRepository) Put(ctx context.Context, visitorID domain.VisitorID, assignments domain.AssignmentMap) error {
	data, err := json.Marshal(assignments)
	if err != nil {
		return fmt.Errorf("failed to marshal assignments: %w", err)
	}

	if err := r.client.Set(ctx, r.visitorKey(visitorID), data, assignmentTTL).Err(); err != nil {
		return fmt.Errorf("failed to set assignments in Redis: %w", err)
	}

	return nil
}
