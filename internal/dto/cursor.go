package dto

// CursorMoveRequest 把光标移动到归一化位置
type CursorMoveRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

// CursorNudgeRequest 按头部方向 (0..8) 移动一步
type CursorNudgeRequest struct {
	Direction *int `json:"direction" binding:"required"`
}

// CursorCommandRequest 是一条语音命令，例如 "left"、"follow"、"stop"
type CursorCommandRequest struct {
	Command string `json:"command" binding:"required"`
}
