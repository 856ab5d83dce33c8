package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/domain"
	"point-canvas/internal/dto"
)

// PointRecorder 由 service.RecordService 实现
type PointRecorder interface {
	Record(ctx context.Context, p domain.Point) (domain.Ack, error)
}

// RecordHandler 提供记录协作方的两个接口: /draw_point 和 /demo
type RecordHandler struct {
	recorder    PointRecorder
	demoMessage string
}

// NewRecordHandler 创建 RecordHandler 实例
func NewRecordHandler(recorder PointRecorder, demoMessage string) *RecordHandler {
	if recorder == nil {
		panic("PointRecorder cannot be nil for RecordHandler")
	}
	return &RecordHandler{recorder: recorder, demoMessage: demoMessage}
}

// DrawPoint 接收要记录的点: POST /draw_point
func (h *RecordHandler) DrawPoint(c *gin.Context) {
	var req dto.PointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.RecordPoint: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: x and y must be numbers")
		return
	}

	ack, err := h.recorder.Record(c.Request.Context(), req.ToDomain())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ack)
}

// Demo 返回 demo 说明文本: GET /demo
func (h *RecordHandler) Demo(c *gin.Context) {
	c.String(http.StatusOK, h.demoMessage)
}
