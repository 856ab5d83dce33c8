package repository

import (
	"context"
	"time"

	"point-canvas/internal/domain"
)

// StateRepository 定义了画布的临时共享状态，通常由 Redis 实现。
// 这里的数据都有 TTL，不做持久化。
type StateRepository interface {
	// === Latest Point ===

	// SetLatestPoint 保存最近一次被记录的点，ttl 为 0 表示不过期。
	SetLatestPoint(ctx context.Context, point domain.RecordedPoint, ttl time.Duration) error

	// GetLatestPoint 获取最近一次被记录的点。
	// 没有记录时返回 ErrLatestPointNotFound。
	GetLatestPoint(ctx context.Context) (*domain.RecordedPoint, error)

	// IncrementRecordedCount 原子地增加已记录点的计数并返回新值。
	IncrementRecordedCount(ctx context.Context) (int64, error)

	// === PubSub ===

	// PublishRecorded 把已记录的点发布到频道，供 Hub 推送给订阅者。
	PublishRecorded(ctx context.Context, point domain.RecordedPoint) error
}
