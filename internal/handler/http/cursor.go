package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/cursor"
	"point-canvas/internal/domain"
	"point-canvas/internal/dto"
)

// CursorController 由 cursor.Controller 实现
type CursorController interface {
	State() cursor.State
	Move(x, y float64) (cursor.State, error)
	Nudge(direction int) (cursor.State, error)
	Execute(command string) (cursor.State, error)
	Reset() cursor.State
}

// CursorHandler 封装了免手光标控制的 HTTP 处理逻辑
type CursorHandler struct {
	controller CursorController
}

// NewCursorHandler 创建 CursorHandler 实例
func NewCursorHandler(controller CursorController) *CursorHandler {
	if controller == nil {
		panic("CursorController cannot be nil for CursorHandler")
	}
	return &CursorHandler{controller: controller}
}

// State 返回光标状态: GET /api/cursor
func (h *CursorHandler) State(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, h.controller.State())
}

// Move 移动光标: POST /api/cursor/move
func (h *CursorHandler) Move(c *gin.Context) {
	var req dto.CursorMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CursorMove: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: x and y must be numbers")
		return
	}
	state, err := h.controller.Move(*req.X, *req.Y)
	if err != nil {
		handleCursorError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, state)
}

// Nudge 按方向移动一步: POST /api/cursor/nudge
func (h *CursorHandler) Nudge(c *gin.Context) {
	var req dto.CursorNudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CursorNudge: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: direction must be an integer")
		return
	}
	state, err := h.controller.Nudge(*req.Direction)
	if err != nil {
		handleCursorError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, state)
}

// Command 执行语音命令: POST /api/cursor/command
func (h *CursorHandler) Command(c *gin.Context) {
	var req dto.CursorCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CursorCommand: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: command is required")
		return
	}
	state, err := h.controller.Execute(req.Command)
	if err != nil {
		handleCursorError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, state)
}

// Reset 恢复初始状态: POST /api/cursor/reset
func (h *CursorHandler) Reset(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, h.controller.Reset())
}

func handleCursorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOutOfRange), errors.Is(err, cursor.ErrInvalidDirection):
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cursor.ErrUnknownCommand):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, cursor.ErrMovementDisabled), errors.Is(err, cursor.ErrStopped):
		ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		HandleServiceError(c, err)
	}
}
