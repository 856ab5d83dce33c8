package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"point-canvas/internal/domain"
)

// maxResponseSize 限制读取的响应体大小
const maxResponseSize = 64 << 10

// HTTPRecorder 以 JSON POST 的方式把点发送到 /draw_point 风格的接口。
type HTTPRecorder struct {
	client   *http.Client
	url      string
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
}

// NewHTTPRecorder 创建 HTTPRecorder。
// secret 为空时不带 Authorization 头；timeout 为 0 表示不设置超时。
func NewHTTPRecorder(url, secret string, timeout time.Duration) *HTTPRecorder {
	if url == "" {
		panic("record URL cannot be empty for HTTPRecorder")
	}
	return &HTTPRecorder{
		client:   &http.Client{Timeout: timeout},
		url:      url,
		secret:   secret,
		tokenTTL: time.Minute,
		now:      time.Now,
	}
}

// Record 发送点并解析确认信息
func (r *HTTPRecorder) Record(ctx context.Context, p domain.Point) (domain.Ack, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("recorder: failed to marshal point: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return domain.Ack{}, fmt.Errorf("recorder: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.secret != "" {
		token, err := SignToken(r.secret, r.tokenTTL, r.now())
		if err != nil {
			return domain.Ack{}, fmt.Errorf("recorder: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("recorder: request to %s failed: %w", r.url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domain.Ack{}, fmt.Errorf("recorder: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Ack{}, &StatusError{Code: resp.StatusCode, Body: string(payload)}
	}

	var ack domain.Ack
	if err := json.Unmarshal(payload, &ack); err != nil {
		// 非 JSON 的确认直接当作文本
		ack = domain.Ack{Message: string(payload)}
	}
	return ack, nil
}

// StatusError 表示记录服务返回了非 2xx 状态码
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("recorder: unexpected status %d: %s", e.Code, e.Body)
}

// FetchDemoInfo GET /demo 风格的接口，返回原始文本。
func FetchDemoInfo(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("recorder: failed to build demo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("recorder: demo request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	text, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("recorder: failed to read demo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(text)}
	}
	return string(text), nil
}
