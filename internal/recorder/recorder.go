// Package recorder 通知外部的记录服务每一个画出的点。
package recorder

import (
	"context"

	"point-canvas/internal/domain"
)

// Recorder 是外部记录服务的抽象。
type Recorder interface {
	Record(ctx context.Context, p domain.Point) (domain.Ack, error)
}

// Nop 不做任何记录，用于离线运行
type Nop struct{}

func (Nop) Record(ctx context.Context, p domain.Point) (domain.Ack, error) {
	return domain.Ack{Message: "recording disabled"}, nil
}
