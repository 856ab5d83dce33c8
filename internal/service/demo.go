package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"point-canvas/internal/domain"
)

// ColorSource 产生随机颜色字符串
type ColorSource interface {
	NextColor() string
}

// CoordinateSource 产生 [0,1) 内的随机数
type CoordinateSource interface {
	Float64() float64
}

// PointDrawer 负责绘制点、更新读数并转发记录
type PointDrawer interface {
	Draw(ctx context.Context, p domain.Point) (domain.Readout, error)
}

// DemoOrchestrator 每次触发生成一个随机点和随机颜色并绘制。
type DemoOrchestrator struct {
	drawer PointDrawer
	colors ColorSource
	coords CoordinateSource
}

// NewDemoOrchestrator 创建 DemoOrchestrator 实例
func NewDemoOrchestrator(drawer PointDrawer, colors ColorSource, coords CoordinateSource) *DemoOrchestrator {
	if drawer == nil || colors == nil || coords == nil {
		panic("All dependencies must be non-nil for DemoOrchestrator")
	}
	return &DemoOrchestrator{drawer: drawer, colors: colors, coords: coords}
}

// Trigger 生成、绘制并返回一个随机点。
func (o *DemoOrchestrator) Trigger(ctx context.Context) domain.Point {
	p := domain.Point{
		X: o.coords.Float64(),
		Y: o.coords.Float64(),
	}
	p.Color = o.colors.NextColor()

	if _, err := o.drawer.Draw(ctx, p); err != nil {
		// 随机点总在 [0,1) 内，走到这里说明坐标源有问题
		logrus.WithFields(logrus.Fields{"x": p.X, "y": p.Y}).WithError(err).Error("Demo point could not be drawn")
	}
	return p
}
