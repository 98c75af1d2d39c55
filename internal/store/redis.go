package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Yug-More/Parallel-AI/internal/models"
)

const (
	activityTTL = 7 * 24 * time.Hour
	presenceTTL = 120 * time.Second

	// maxActivityFeed caps the per-org activity sorted set.
	maxActivityFeed = 500
)

// RedisStore handles Redis operations for the activity feed and
// presence markers, and exposes its client for pub/sub and the rate
// limiter middleware.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for pub/sub consumers.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// activityKey returns the key for an org's activity sorted set.
func activityKey(orgID uuid.UUID) string {
	return fmt.Sprintf("activity:org:%s", orgID)
}

// presenceKey returns the key for a user's presence marker.
func presenceKey(userID uuid.UUID) string {
	return fmt.Sprintf("presence:%s", userID)
}

// AddActivity appends an entry to an org's activity feed, trimming the
// feed to its cap.
func (s *RedisStore) AddActivity(ctx context.Context, orgID uuid.UUID, act *models.Activity) error {
	if act.ID == "" {
		act.ID = ulid.Make().String()
	}
	if act.Timestamp == 0 {
		act.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(act)
	if err != nil {
		return err
	}

	key := activityKey(orgID)

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(act.Timestamp),
		Member: string(data),
	})
	pipe.ZRemRangeByRank(ctx, key, 0, -(maxActivityFeed + 1))
	pipe.Expire(ctx, key, activityTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// RecentActivities retrieves the newest activity entries for an org,
// most recent first.
func (s *RedisStore) RecentActivities(ctx context.Context, orgID uuid.UUID, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	key := activityKey(orgID)
	results, err := s.client.ZRevRange(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, len(results))
	for _, data := range results {
		var act models.Activity
		if err := json.Unmarshal([]byte(data), &act); err != nil {
			continue
		}
		activities = append(activities, act)
	}

	return activities, nil
}

// MarkOnline refreshes a user's presence marker.
func (s *RedisStore) MarkOnline(ctx context.Context, userID uuid.UUID) error {
	return s.client.Set(ctx, presenceKey(userID), "1", presenceTTL).Err()
}

// IsOnline reports whether a user's presence marker is still live.
func (s *RedisStore) IsOnline(ctx context.Context, userID uuid.UUID) bool {
	exists, _ := s.client.Exists(ctx, presenceKey(userID)).Result()
	return exists > 0
}
