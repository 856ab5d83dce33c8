package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/domain"
	"point-canvas/internal/repository"
)

// DefaultKeyPrefix 是默认的 key 前缀 ("pc" = point canvas)
const DefaultKeyPrefix = "pc:"

// RedisStateRepository 是 StateRepository 接口的 Redis 实现
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStateRepository 创建 RedisStateRepository 实例
func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStateRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// --- Key Generation Helpers ---

func (r *RedisStateRepository) latestPointKey() string {
	return r.keyPrefix + "canvas:latest"
}

func (r *RedisStateRepository) recordedCountKey() string {
	return r.keyPrefix + "canvas:recorded_count"
}

// RecordedChannel 返回已记录点的 pub/sub 频道名，Hub 订阅同一个频道。
func RecordedChannel(keyPrefix string) string {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return keyPrefix + "canvas:recorded"
}

// --- StateRepository Interface Implementation ---

// SetLatestPoint 保存最近一次被记录的点
func (r *RedisStateRepository) SetLatestPoint(ctx context.Context, point domain.RecordedPoint, ttl time.Duration) error {
	key := r.latestPointKey()
	data, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal latest point %s: %w", point.ID, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set latest point on key %s: %w", key, err)
	}
	return nil
}

// GetLatestPoint 获取最近一次被记录的点
func (r *RedisStateRepository) GetLatestPoint(ctx context.Context) (*domain.RecordedPoint, error) {
	key := r.latestPointKey()
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrLatestPointNotFound
		}
		return nil, fmt.Errorf("redis: failed to get latest point from %s: %w", key, err)
	}
	var point domain.RecordedPoint
	if err := json.Unmarshal(data, &point); err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal latest point from %s: %w", key, err)
	}
	return &point, nil
}

// IncrementRecordedCount 原子地增加已记录点的计数
func (r *RedisStateRepository) IncrementRecordedCount(ctx context.Context) (int64, error) {
	key := r.recordedCountKey()
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: failed to increment recorded count on key %s: %w", key, err)
	}
	return n, nil
}

// PublishRecorded 把已记录的点发布到频道
func (r *RedisStateRepository) PublishRecorded(ctx context.Context, point domain.RecordedPoint) error {
	channel := RecordedChannel(r.keyPrefix)
	payload, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal point %s for publish: %w", point.ID, err)
	}
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      channel,
			"payload_size": len(payload),
			"point_id":     point.ID,
		}).WithError(err).Error("Redis Publish failed")
		return fmt.Errorf("redis: failed to publish point to channel %s: %w", channel, err)
	}
	return nil
}
