package recorder

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// RecorderSubject 是记录客户端 token 的 sub 声明
const RecorderSubject = "recorder"

// SignToken 签发短期 HS256 token，供 /draw_point 的 Auth 中间件校验。
func SignToken(secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("token secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	claims := jwt.MapClaims{
		"sub": RecorderSubject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign recorder token: %w", err)
	}
	return signed, nil
}
