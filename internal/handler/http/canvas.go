package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/domain"
	"point-canvas/internal/dto"
)

// CanvasDrawer 由 service.CanvasService 实现
type CanvasDrawer interface {
	Draw(ctx context.Context, p domain.Point) (domain.Readout, error)
	Clear()
	EncodePNG(w io.Writer) error
	EncodeThumbnailPNG(w io.Writer, width int) error
}

// DemoTriggerer 由 service.DemoOrchestrator 实现
type DemoTriggerer interface {
	Trigger(ctx context.Context) domain.Point
}

// LatestReader 由 service.RecordService 实现
type LatestReader interface {
	Latest(ctx context.Context) (*domain.RecordedPoint, error)
}

// CanvasHandler 封装了画布相关的 HTTP 处理逻辑
type CanvasHandler struct {
	canvas CanvasDrawer
	demo   DemoTriggerer
	latest LatestReader
}

// NewCanvasHandler 创建 CanvasHandler 实例
func NewCanvasHandler(canvas CanvasDrawer, demo DemoTriggerer, latest LatestReader) *CanvasHandler {
	if canvas == nil || demo == nil || latest == nil {
		panic("All dependencies must be non-nil for CanvasHandler")
	}
	return &CanvasHandler{canvas: canvas, demo: demo, latest: latest}
}

// DrawPoint 处理手动输入的点: POST /api/points
func (h *CanvasHandler) DrawPoint(c *gin.Context) {
	var req dto.PointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.DrawPoint: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: x and y must be numbers")
		return
	}

	readout, err := h.canvas.Draw(c.Request.Context(), req.ToDomain())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, dto.DrawResponse{Readout: readout})
}

// Trigger 绘制一个随机点: POST /api/demo/trigger
func (h *CanvasHandler) Trigger(c *gin.Context) {
	p := h.demo.Trigger(c.Request.Context())
	SuccessResponse(c, http.StatusOK, dto.TriggerResponse{Point: p, Readout: p.Readout()})
}

// Readout 返回最近一次被记录的点: GET /api/readout
func (h *CanvasHandler) Readout(c *gin.Context) {
	rp, err := h.latest.Latest(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, dto.LatestResponse{Readout: rp.Point.Readout(), Point: *rp})
}

// Snapshot 返回画布 PNG: GET /api/canvas.png[?width=N]
// 带 width 时返回等比缩放的缩略图。
func (h *CanvasHandler) Snapshot(c *gin.Context) {
	var buf bytes.Buffer
	encode := h.canvas.EncodePNG
	if raw := c.Query("width"); raw != "" {
		width, err := strconv.Atoi(raw)
		if err != nil || width <= 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid width: must be a positive integer")
			return
		}
		encode = func(w io.Writer) error { return h.canvas.EncodeThumbnailPNG(w, width) }
	}
	if err := encode(&buf); err != nil {
		logrus.WithError(err).Error("Handler.Snapshot: Failed to encode canvas")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to encode canvas")
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Clear 清空画布: DELETE /api/canvas
func (h *CanvasHandler) Clear(c *gin.Context) {
	h.canvas.Clear()
	c.Status(http.StatusNoContent)
}
