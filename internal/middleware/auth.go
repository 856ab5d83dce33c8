package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4" // 与 recorder.SignToken 使用同一版本
	"github.com/sirupsen/logrus"
)

// SubjectKey 是 Auth 中间件在 gin.Context 中保存调用方身份的 key
const SubjectKey = "subject"

// Auth 返回一个 Gin 中间件，用于验证记录客户端的 JWT token。
// jwtSecret: 用于验证签名的密钥，必须提供。
// subject: 要求的 sub 声明，为空时不检查。
func Auth(jwtSecret, subject string) gin.HandlerFunc {
	// 在创建中间件时就进行检查，避免运行时 panic
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for Auth middleware")
	}

	return func(c *gin.Context) {
		// 1. 从请求头提取 Token
		tokenStr, err := extractToken(c)
		if err != nil {
			// 根据错误类型返回不同的响应
			if errors.Is(err, ErrMissingAuthHeader) {
				logrus.Warn("Auth middleware: Missing Authorization header")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			} else {
				logrus.Warnf("Auth middleware: Malformed token format: %v", err)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			}
			c.Abort() // 终止请求处理链
			return
		}

		// 2. 验证 Token (签名、过期时间)
		claims, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			// 先创建一个带有错误上下文的日志条目
			logCtx := logrus.WithError(err)
			logCtx.Warn("Auth middleware: Invalid token")

			// 日志中记录更具体的原因，但对客户端返回通用错误
			var validationError *jwt.ValidationError
			if errors.As(err, &validationError) {
				if validationError.Errors&jwt.ValidationErrorExpired != 0 {
					logCtx.Warn("Reason: Token is expired")
				}
				if validationError.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
					logCtx.Warn("Reason: Token signature is invalid")
				}
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 3. 检查 sub 声明：只有记录客户端可以调用 /draw_point
		sub, _ := claims["sub"].(string)
		if subject != "" && sub != subject {
			logrus.WithField("sub", sub).Warn("Auth middleware: Token subject not allowed")
			c.JSON(http.StatusForbidden, gin.H{"error": "Token not allowed for this endpoint"})
			c.Abort()
			return
		}

		// 4. 把调用方身份存入 Gin 上下文，供后续处理程序使用
		c.Set(SubjectKey, sub)
		logrus.WithField("sub", sub).Debug("Auth middleware: Caller authenticated via JWT")
		c.Next() // 继续处理请求链
	}
}

// ErrMissingAuthHeader 表示缺少 Authorization 头
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// extractToken 从 Gin 上下文中提取 Bearer Token
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	// Authorization header 格式应为 "Bearer <token>"，"Bearer" 不区分大小写
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", jwt.ErrTokenMalformed
	}
	return parts[1], nil
}

// validateToken 解析并验证 JWT token 字符串
func validateToken(tokenStr string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法是否为 HMAC (HS256)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		// 过期、签名无效等错误被 jwt 包装在 ValidationError 中，保留原始错误供调用者检查
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	// Token 无效或 Claims 类型不匹配
	return nil, errors.New("invalid token or claims type")
}
