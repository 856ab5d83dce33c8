package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/domain"
	"point-canvas/internal/repository"
	"point-canvas/internal/tasks"
)

// TaskEnqueuer 是 asynq.Client 的最小接口
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RecordService 是 /draw_point 记录接口背后的逻辑：
// 确认收到的点，并通过后台任务更新最近记录的点。
type RecordService struct {
	enqueuer  TaskEnqueuer
	stateRepo repository.StateRepository
	latestTTL time.Duration
	newID     func() string
	now       func() time.Time
}

// NewRecordService 创建 RecordService 实例。latestTTL 为 0 表示不过期。
func NewRecordService(enqueuer TaskEnqueuer, stateRepo repository.StateRepository, latestTTL time.Duration) *RecordService {
	if enqueuer == nil || stateRepo == nil {
		panic("All dependencies must be non-nil for RecordService")
	}
	return &RecordService{
		enqueuer:  enqueuer,
		stateRepo: stateRepo,
		latestTTL: latestTTL,
		newID:     func() string { return uuid.NewString() },
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record 校验点，入队点记录任务并返回确认。
func (s *RecordService) Record(ctx context.Context, p domain.Point) (domain.Ack, error) {
	if err := p.Validate(); err != nil {
		return domain.Ack{}, fmt.Errorf("%w: %w", ErrInvalidPoint, err)
	}
	rp := domain.RecordedPoint{ID: s.newID(), Point: p, RecordedAt: s.now()}
	logCtx := logrus.WithFields(logrus.Fields{"point_id": rp.ID, "x": p.X, "y": p.Y, "color": p.Color})

	payload, err := tasks.NewPointRecordPayload(rp)
	if err != nil {
		logCtx.WithError(err).Error("Failed to build point record payload")
		return domain.Ack{}, ErrInternalServer
	}
	task := asynq.NewTask(tasks.TypePointRecord, payload)
	info, err := s.enqueuer.EnqueueContext(ctx, task, asynq.TaskID(rp.ID), asynq.MaxRetry(3), asynq.Queue("default"))
	if err != nil {
		logCtx.WithError(err).Error("Failed to enqueue point record task")
		return domain.Ack{}, ErrInternalServer
	}
	if info != nil {
		logCtx = logCtx.WithField("task_id", info.ID)
	}
	logCtx.Info("Point accepted for recording")
	return domain.Ack{Message: domain.AckMessage, ID: rp.ID}, nil
}

// ApplyRecorded 由 worker 调用：更新最近记录的点、计数并发布事件。
func (s *RecordService) ApplyRecorded(ctx context.Context, rp domain.RecordedPoint) error {
	logCtx := logrus.WithField("point_id", rp.ID)
	if err := s.stateRepo.SetLatestPoint(ctx, rp, s.latestTTL); err != nil {
		return fmt.Errorf("failed to store latest point: %w", err)
	}
	if n, err := s.stateRepo.IncrementRecordedCount(ctx); err != nil {
		// 计数只用于观测，失败不影响记录
		logCtx.WithError(err).Warn("Failed to increment recorded count")
	} else {
		logCtx = logCtx.WithField("recorded_total", n)
	}
	if err := s.stateRepo.PublishRecorded(ctx, rp); err != nil {
		logCtx.WithError(err).Error("Failed to publish recorded point")
	}
	logCtx.Debug("Recorded point applied")
	return nil
}

// Latest 返回最近一次被记录的点
func (s *RecordService) Latest(ctx context.Context) (*domain.RecordedPoint, error) {
	rp, err := s.stateRepo.GetLatestPoint(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoRecordedPoint
		}
		logrus.WithError(err).Error("Failed to read latest point")
		return nil, ErrInternalServer
	}
	return rp, nil
}
