package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrOutOfRange 表示坐标不在 [0,1] 闭区间内
var ErrOutOfRange = errors.New("coordinate out of range [0,1]")

// Point 表示画布上的一个点，坐标为归一化值。
type Point struct {
	X     float64 `json:"x"`     // 横向归一化坐标 [0,1]
	Y     float64 `json:"y"`     // 纵向归一化坐标 [0,1]
	Color string  `json:"color"` // 颜色字符串，例如 "#RRGGBB"
}

// Validate 检查坐标是否在 [0,1] 内，NaN 同样视为越界。
func (p Point) Validate() error {
	if !InUnitInterval(p.X) {
		return fmt.Errorf("x=%v: %w", p.X, ErrOutOfRange)
	}
	if !InUnitInterval(p.Y) {
		return fmt.Errorf("y=%v: %w", p.Y, ErrOutOfRange)
	}
	return nil
}

// Readout 返回该点的文本读数。
func (p Point) Readout() Readout {
	return NewReadout(p)
}

// InUnitInterval 判断 v 是否落在 [0,1]。
func InUnitInterval(v float64) bool {
	return v >= 0 && v <= 1 // NaN 的比较总是 false
}

// RecordedPoint 是记录服务确认过的点，只存在于 Redis 的临时状态中。
type RecordedPoint struct {
	ID         string    `json:"id"`
	Point      Point     `json:"point"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Ack 是 /draw_point 的确认响应。
type Ack struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// AckMessage 与原始 draw_point 接口的返回文本一致
const AckMessage = "Point added successfully!"
