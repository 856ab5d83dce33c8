package recorder

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"point-canvas/internal/domain"
)

// DoneFunc 在一次记录完成后被调用，只用于观测 (日志)，不参与控制流。
type DoneFunc func(p domain.Point, ack domain.Ack, err error)

// Dispatcher 以 fire-and-forget 的方式调用 Recorder：
// Dispatch 立即返回，不等待结果，不重试。
type Dispatcher struct {
	recorder Recorder
	wg       sync.WaitGroup
}

// NewDispatcher 创建 Dispatcher
func NewDispatcher(recorder Recorder) *Dispatcher {
	if recorder == nil {
		panic("Recorder cannot be nil for Dispatcher")
	}
	return &Dispatcher{recorder: recorder}
}

// Dispatch 在后台发送点；done 可以为 nil。
func (d *Dispatcher) Dispatch(p domain.Point, done DoneFunc) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// 记录与触发它的请求无关，请求结束不应取消记录
		ack, err := d.recorder.Record(context.Background(), p)
		if done != nil {
			done(p, ack, err)
		}
	}()
}

// Wait 等待所有进行中的记录完成 (关闭时和测试中使用)
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogResult 返回一个把记录结果写入日志的 DoneFunc
func LogResult(log *logrus.Entry) DoneFunc {
	if log == nil {
		log = logrus.WithField("component", "recorder")
	}
	return func(p domain.Point, ack domain.Ack, err error) {
		logCtx := log.WithFields(logrus.Fields{
			"x":     p.X,
			"y":     p.Y,
			"color": p.Color,
		})
		if err != nil {
			logCtx.WithError(err).Warn("Point recording failed")
			return
		}
		logCtx.WithField("ack_id", ack.ID).Debugf("Point recorded: %s", ack.Message)
	}
}
