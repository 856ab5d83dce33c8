package tasks

import (
	"encoding/json"

	"point-canvas/internal/domain"
)

// 定义任务类型常量
const (
	TypePointRecord   = "point:record"   // 更新最近记录的点并发布
	TypeDemoTrigger   = "demo:trigger"   // 周期性的服务端 demo 触发
	TypeCursorCommand = "cursor:command" // 语音识别进程投递的光标命令
)

// PointRecordPayload 定义了点记录任务的数据结构
type PointRecordPayload struct {
	Point domain.RecordedPoint `json:"point"`
}

// NewPointRecordPayload 创建点记录任务的 payload
func NewPointRecordPayload(point domain.RecordedPoint) ([]byte, error) {
	return json.Marshal(PointRecordPayload{Point: point})
}

// ParsePointRecordPayload 解析点记录任务的 payload
func ParsePointRecordPayload(data []byte) (PointRecordPayload, error) {
	var payload PointRecordPayload
	err := json.Unmarshal(data, &payload)
	return payload, err
}

// NewDemoTriggerPayload 创建 demo 触发任务的 payload (目前没有参数)
func NewDemoTriggerPayload() ([]byte, error) {
	return json.Marshal(struct{}{})
}

// CursorCommandPayload 定义了光标命令任务的数据结构
type CursorCommandPayload struct {
	Command string `json:"command"`
}

// NewCursorCommandPayload 创建光标命令任务的 payload
func NewCursorCommandPayload(command string) ([]byte, error) {
	return json.Marshal(CursorCommandPayload{Command: command})
}

// ParseCursorCommandPayload 解析光标命令任务的 payload
func ParseCursorCommandPayload(data []byte) (CursorCommandPayload, error) {
	var payload CursorCommandPayload
	err := json.Unmarshal(data, &payload)
	return payload, err
}
