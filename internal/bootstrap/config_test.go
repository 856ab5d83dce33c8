package bootstrap

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RECORD_TOKEN_SECRET", "secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "pc:", cfg.KeyPrefix)
	assert.Equal(t, "http://localhost:8080/draw_point", cfg.RecordURL)
	assert.Zero(t, cfg.RecordTimeout)
	assert.Equal(t, 500, cfg.CanvasWidth)
	assert.Equal(t, 500, cfg.CanvasHeight)
	assert.Equal(t, 3.0, cfg.PointRadius)
	assert.Equal(t, time.Hour, cfg.LatestTTL)
	assert.Equal(t, 1920, cfg.ScreenWidth)
	assert.Equal(t, 1080, cfg.ScreenHeight)
	assert.Empty(t, cfg.DemoSchedule)
	assert.Equal(t, DefaultDemoMessage, cfg.DemoMessage)
	assert.Equal(t, 100, cfg.RateLimitMax)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_KEY_PREFIX", "demo:")
	t.Setenv("RECORD_URL", "")
	t.Setenv("RECORD_TIMEOUT", "2s")
	t.Setenv("CANVAS_WIDTH", "640")
	t.Setenv("CANVAS_HEIGHT", "480")
	t.Setenv("POINT_RADIUS", "5.5")
	t.Setenv("LATEST_TTL", "10m")
	t.Setenv("DEMO_SCHEDULE", "@every 30s")
	t.Setenv("DEMO_MESSAGE", "hello")
	t.Setenv("RATE_LIMIT_MAX", "7")
	t.Setenv("SCREEN_WIDTH", "1366")
	t.Setenv("SCREEN_HEIGHT", "768")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "demo:", cfg.KeyPrefix)
	assert.Empty(t, cfg.RecordURL, "显式设置为空时关闭记录")
	assert.Equal(t, 2*time.Second, cfg.RecordTimeout)
	assert.Equal(t, 640, cfg.CanvasWidth)
	assert.Equal(t, 480, cfg.CanvasHeight)
	assert.Equal(t, 5.5, cfg.PointRadius)
	assert.Equal(t, 10*time.Minute, cfg.LatestTTL)
	assert.Equal(t, "@every 30s", cfg.DemoSchedule)
	assert.Equal(t, "hello", cfg.DemoMessage)
	assert.Equal(t, 7, cfg.RateLimitMax)
	assert.Equal(t, 1366, cfg.ScreenWidth)
	assert.Equal(t, 768, cfg.ScreenHeight)
}

func TestLoadConfig_RecordURLFollowsServerPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090/draw_point", cfg.RecordURL)

	t.Setenv("RECORD_URL", "http://recorder:7000/draw_point")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://recorder:7000/draw_point", cfg.RecordURL, "显式配置优先")
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("CANVAS_WIDTH", "wide")
	t.Setenv("LATEST_TTL", "forever")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 500, cfg.CanvasWidth)
	assert.Equal(t, time.Hour, cfg.LatestTTL)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RECORD_TOKEN_SECRET", "secret")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "REDIS_ADDR")

	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RECORD_TOKEN_SECRET", "")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "RECORD_TOKEN_SECRET")
}

func TestLoadConfig_RejectsBadCanvas(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CANVAS_WIDTH", "0")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("CANVAS_WIDTH", "500")
	t.Setenv("SCREEN_HEIGHT", "-1")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "screen size")
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(&Config{AppEnv: "production", LogLevel: "warn"})
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log = NewLogger(&Config{AppEnv: "development", LogLevel: "debug"})
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}
