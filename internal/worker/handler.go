package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/cursor"
	"point-canvas/internal/domain"
	"point-canvas/internal/tasks"
)

// RecordedPointApplier 由 RecordService 实现
type RecordedPointApplier interface {
	ApplyRecorded(ctx context.Context, rp domain.RecordedPoint) error
}

// DemoTriggerer 由 DemoOrchestrator 实现
type DemoTriggerer interface {
	Trigger(ctx context.Context) domain.Point
}

// CursorCommander 由 cursor.Controller 实现
type CursorCommander interface {
	Execute(command string) (cursor.State, error)
}

// taskLogger 构造带任务信息的日志上下文
func taskLogger(ctx context.Context, t *asynq.Task) *logrus.Entry {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	currentRetry, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
		"max_retry": maxRetry,
	})
}

// PointRecordHandler 处理点记录任务
type PointRecordHandler struct {
	applier RecordedPointApplier
}

// NewPointRecordHandler 创建 Handler 实例
func NewPointRecordHandler(applier RecordedPointApplier) *PointRecordHandler {
	if applier == nil {
		panic("RecordedPointApplier cannot be nil for PointRecordHandler")
	}
	return &PointRecordHandler{applier: applier}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *PointRecordHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)
	logCtx.Debug("Processing point record task...")

	payload, err := tasks.ParsePointRecordPayload(t.Payload())
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := payload.Point.Point.Validate(); err != nil {
		logCtx.WithError(err).Error("Recorded point is invalid, dropping task")
		return fmt.Errorf("invalid point %s: %v: %w", payload.Point.ID, err, asynq.SkipRetry)
	}

	if err := h.applier.ApplyRecorded(ctx, payload.Point); err != nil {
		logCtx.WithError(err).Error("Failed to apply recorded point")
		return fmt.Errorf("failed to apply point %s: %w", payload.Point.ID, err)
	}

	logCtx.WithField("point_id", payload.Point.ID).Info("Point record task processed successfully")
	return nil
}

// DemoTriggerHandler 处理周期性的 demo 触发任务
type DemoTriggerHandler struct {
	triggerer DemoTriggerer
}

// NewDemoTriggerHandler 创建 Handler 实例
func NewDemoTriggerHandler(triggerer DemoTriggerer) *DemoTriggerHandler {
	if triggerer == nil {
		panic("DemoTriggerer cannot be nil for DemoTriggerHandler")
	}
	return &DemoTriggerHandler{triggerer: triggerer}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *DemoTriggerHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p := h.triggerer.Trigger(ctx)
	taskLogger(ctx, t).WithFields(logrus.Fields{
		"x":     p.X,
		"y":     p.Y,
		"color": p.Color,
	}).Info("Scheduled demo point drawn")
	return nil
}

// CursorCommandHandler 执行语音识别进程投递的光标命令
type CursorCommandHandler struct {
	commander CursorCommander
}

// NewCursorCommandHandler 创建 Handler 实例
func NewCursorCommandHandler(commander CursorCommander) *CursorCommandHandler {
	if commander == nil {
		panic("CursorCommander cannot be nil for CursorCommandHandler")
	}
	return &CursorCommandHandler{commander: commander}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *CursorCommandHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	payload, err := tasks.ParseCursorCommandPayload(t.Payload())
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	state, err := h.commander.Execute(payload.Command)
	if err != nil {
		// 命令本身无效或控制已结束，重试没有意义
		if errors.Is(err, cursor.ErrUnknownCommand) || errors.Is(err, cursor.ErrStopped) {
			logCtx.WithError(err).Warn("Cursor command rejected, dropping task")
			return fmt.Errorf("cursor command %q: %v: %w", payload.Command, err, asynq.SkipRetry)
		}
		return fmt.Errorf("cursor command %q: %w", payload.Command, err)
	}

	logCtx.WithFields(logrus.Fields{
		"command": payload.Command,
		"holding": state.Holding,
		"moving":  state.Moving,
	}).Info("Cursor command task processed successfully")
	return nil
}
