// Package render 负责把归一化坐标的点画到固定尺寸的表面上。
package render

import "image/color"

// DefaultRadius 是点的默认半径 (像素)
const DefaultRadius = 3.0

// Surface 是一个固定像素尺寸、支持填充圆形的二维表面。
type Surface interface {
	// Size 返回表面的宽和高 (像素)
	Size() (width, height int)
	// FillCircle 以 (cx, cy) 为圆心、r 为半径填充颜色 c
	FillCircle(cx, cy, r float64, c color.Color)
}

// Renderer 把点映射为表面上的实心圆。
//
// x, y 必须在 [0,1] 内，由调用方在调用前校验；Render 本身不做范围检查。
type Renderer struct {
	radius float64
}

// NewRenderer 创建 Renderer，radius <= 0 时使用 DefaultRadius。
func NewRenderer(radius float64) *Renderer {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Renderer{radius: radius}
}

// Radius 返回绘制半径
func (r *Renderer) Radius() float64 { return r.radius }

// Render 在像素 (x·W, y·H) 处画一个半径固定、颜色为 col 的实心圆。
// 无法解析的颜色按黑色绘制，与 canvas 默认 fillStyle 一致。
func (r *Renderer) Render(s Surface, x, y float64, col string) {
	w, h := s.Size()
	c, ok := ParseColor(col)
	if !ok {
		c = color.RGBA{A: 0xff}
	}
	px, py := ToPixel(x, y, w, h)
	s.FillCircle(px, py, r.radius, c)
}

// ToPixel 把归一化坐标映射为 width x height 表面上的像素坐标 (x·W, y·H)。
func ToPixel(x, y float64, width, height int) (float64, float64) {
	return x * float64(width), y * float64(height)
}
