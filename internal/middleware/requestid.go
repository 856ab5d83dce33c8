package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 是请求 ID 的 HTTP 头
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey 是请求 ID 在 gin.Context 中的 key
	RequestIDKey = "request_id"
)

// RequestID 为每个请求分配 ID：沿用客户端传入的值，否则生成 uuid。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
