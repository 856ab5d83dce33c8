package bootstrap

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	httpHandler "point-canvas/internal/handler/http"
	wsHandler "point-canvas/internal/handler/websocket"
	"point-canvas/internal/middleware"
	"point-canvas/internal/recorder"
)

// Handlers 是路由需要的全部 handler
type Handlers struct {
	Canvas    *httpHandler.CanvasHandler
	Record    *httpHandler.RecordHandler
	Cursor    *httpHandler.CursorHandler
	WebSocket *wsHandler.WebSocketHandler
}

// NewRouter 创建 Gin Engine 并注册中间件和路由
func NewRouter(cfg *Config, log *logrus.Logger, redisClient *redis.Client, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigin))
	router.Use(middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow))

	router.GET("/demo", h.Record.Demo)
	router.POST("/draw_point", middleware.Auth(cfg.RecordTokenSecret, recorder.RecorderSubject), h.Record.DrawPoint)

	api := router.Group("/api")
	{
		api.POST("/points", h.Canvas.DrawPoint)
		api.POST("/demo/trigger", h.Canvas.Trigger)
		api.GET("/readout", h.Canvas.Readout)
		api.GET("/canvas.png", h.Canvas.Snapshot)
		api.DELETE("/canvas", h.Canvas.Clear)

		cursorGroup := api.Group("/cursor")
		cursorGroup.GET("", h.Cursor.State)
		cursorGroup.POST("/move", h.Cursor.Move)
		cursorGroup.POST("/nudge", h.Cursor.Nudge)
		cursorGroup.POST("/command", h.Cursor.Command)
		cursorGroup.POST("/reset", h.Cursor.Reset)
	}
	router.GET("/ws/readout", h.WebSocket.HandleConnection)
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	return router
}

// CORSMiddleware 设置跨域响应头，OPTIONS 预检请求直接返回
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
			"request_id":  c.GetString(middleware.RequestIDKey),
		})

		if errorMessage != "" {
			entry.Error(errorMessage)
		} else if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request handled")
		}
	}
}
