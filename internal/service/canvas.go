package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"point-canvas/internal/domain"
	"point-canvas/internal/recorder"
	"point-canvas/internal/render"
)

// Canvas 是 CanvasService 使用的绘制表面
type Canvas interface {
	render.Surface
	Clear()
	EncodePNG(w io.Writer) error
	EncodeThumbnailPNG(w io.Writer, width int) error
}

// ReadoutSink 接收每次绘制后的读数 (例如 Hub 推送给订阅者)。
type ReadoutSink interface {
	PublishReadout(r domain.Readout)
}

// ReadoutSinkFunc 把普通函数适配为 ReadoutSink
type ReadoutSinkFunc func(r domain.Readout)

func (f ReadoutSinkFunc) PublishReadout(r domain.Readout) { f(r) }

// RecordDispatcher 以 fire-and-forget 的方式转发点给记录服务
type RecordDispatcher interface {
	Dispatch(p domain.Point, done recorder.DoneFunc)
}

// CanvasService 持有绘制表面并串行化所有绘制：
// 一次绘制 (渲染 + 读数) 完成后下一次才开始。
type CanvasService struct {
	mu         sync.Mutex
	canvas     Canvas
	renderer   *render.Renderer
	sink       ReadoutSink
	dispatcher RecordDispatcher
	onRecorded recorder.DoneFunc
}

// NewCanvasService 创建 CanvasService 实例
func NewCanvasService(canvas Canvas, renderer *render.Renderer, sink ReadoutSink, dispatcher RecordDispatcher) *CanvasService {
	if canvas == nil || renderer == nil || sink == nil || dispatcher == nil {
		panic("All dependencies must be non-nil for CanvasService")
	}
	return &CanvasService{
		canvas:     canvas,
		renderer:   renderer,
		sink:       sink,
		dispatcher: dispatcher,
		onRecorded: recorder.LogResult(logrus.WithField("component", "canvas")),
	}
}

// Draw 校验并绘制一个点，更新读数，然后把点交给记录服务 (不等待结果)。
// 越界的点不会被绘制，也不会更新读数。
func (s *CanvasService) Draw(ctx context.Context, p domain.Point) (domain.Readout, error) {
	logCtx := logrus.WithFields(logrus.Fields{"x": p.X, "y": p.Y, "color": p.Color})
	if err := p.Validate(); err != nil {
		logCtx.WithError(err).Warn("Rejected point")
		return domain.Readout{}, fmt.Errorf("%w: %w", ErrInvalidPoint, err)
	}

	s.mu.Lock()
	s.renderer.Render(s.canvas, p.X, p.Y, p.Color)
	readout := p.Readout()
	s.sink.PublishReadout(readout)
	s.mu.Unlock()
	logCtx.Debug("Point drawn")

	s.dispatcher.Dispatch(p, s.onRecorded)
	return readout, nil
}

// Clear 清空画布
func (s *CanvasService) Clear() {
	s.mu.Lock()
	s.canvas.Clear()
	s.mu.Unlock()
	logrus.WithField("component", "canvas").Info("Canvas cleared")
}

// EncodePNG 输出当前画布的 PNG 快照
func (s *CanvasService) EncodePNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.canvas.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode canvas: %w", err)
	}
	return nil
}

// EncodeThumbnailPNG 输出按 width 缩放后的 PNG 快照
func (s *CanvasService) EncodeThumbnailPNG(w io.Writer, width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.canvas.EncodeThumbnailPNG(w, width); err != nil {
		return fmt.Errorf("failed to encode canvas thumbnail: %w", err)
	}
	return nil
}
