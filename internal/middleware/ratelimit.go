package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8" // 导入 Redis 客户端
	"github.com/sirupsen/logrus"
)

// fixedWindowScript 对计数器执行 INCR，只在窗口的第一个请求时设置过期时间。
// 之后的请求不会刷新 TTL，窗口到期后计数从 0 重新开始。
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RateLimit 返回一个 Gin 中间件，用于基于客户端 IP 地址进行固定窗口限流。
// redisClient: 用于存储计数器的 Redis 客户端实例，必须提供。
// keyPrefix: Redis key 前缀，与其他状态共用同一个命名空间。
// maxRequests: 在一个时间窗口内允许的最大请求数。
// window: 速率限制的时间窗口。
func RateLimit(redisClient *redis.Client, keyPrefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	// 启动时检查依赖
	if redisClient == nil {
		panic("Redis client cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 {
		panic("maxRequests must be positive for RateLimit middleware")
	}
	if window <= 0 {
		panic("window duration must be positive for RateLimit middleware")
	}

	return func(c *gin.Context) {
		// 使用客户端 IP 作为限流键的一部分
		// 注意：如果服务在反向代理后面，需要配置 gin 的 TrustedProxies 才能拿到真实 IP
		key := keyPrefix + "ratelimit:" + c.ClientIP()
		ctx := c.Request.Context()

		// INCR 和首次 PEXPIRE 在同一个 Lua 脚本中执行，保证原子性
		count, err := fixedWindowScript.Run(ctx, redisClient, []string{key}, window.Milliseconds()).Int64()
		if err != nil {
			// 处理 Redis 错误
			logrus.WithError(err).Error("RateLimit: Redis script failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limiting error"})
			c.Abort()
			return
		}

		// 设置速率限制信息响应头 (即使未超限)
		remaining := int64(maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		// 检查请求次数是否超过限制：count > maxRequests 则超限
		if count > int64(maxRequests) {
			logrus.WithFields(logrus.Fields{"client_ip": c.ClientIP(), "count": count}).Warn("RateLimit: Too many requests")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next() // 未超限，继续处理请求
	}
}
