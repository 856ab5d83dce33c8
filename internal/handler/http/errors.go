package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/service"
)

// HandleServiceError 把 service 层的业务错误映射为 HTTP 响应
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPoint):
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNoRecordedPoint):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
