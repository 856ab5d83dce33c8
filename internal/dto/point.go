package dto

import "point-canvas/internal/domain"

// PointRequest 表示手动输入或 /draw_point 收到的点。
// X, Y 使用指针，以便区分缺失字段和 0。
type PointRequest struct {
	X     *float64 `json:"x" binding:"required"`
	Y     *float64 `json:"y" binding:"required"`
	Color string   `json:"color"`
}

// ToDomain 转换为 domain.Point
func (r PointRequest) ToDomain() domain.Point {
	var p domain.Point
	if r.X != nil {
		p.X = *r.X
	}
	if r.Y != nil {
		p.Y = *r.Y
	}
	p.Color = r.Color
	return p
}

// DrawResponse 是手动绘制成功后的响应
type DrawResponse struct {
	Readout domain.Readout `json:"readout"`
}

// TriggerResponse 是 demo 触发的响应
type TriggerResponse struct {
	Point   domain.Point   `json:"point"`
	Readout domain.Readout `json:"readout"`
}

// LatestResponse 是轮询读数接口的响应
type LatestResponse struct {
	Readout domain.Readout       `json:"readout"`
	Point   domain.RecordedPoint `json:"point"`
}
