package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	redisstate "point-canvas/internal/infra/state/redis"
	"point-canvas/internal/render"
)

// DefaultRecordURL 返回默认的记录服务地址：本服务自己的 /draw_point
func DefaultRecordURL(serverPort string) string {
	return "http://localhost:" + serverPort + "/draw_point"
}

// DefaultDemoMessage 是 GET /demo 的默认文本
const DefaultDemoMessage = "point canvas demo: POST /api/demo/trigger draws a random point"

// Config 结构体用于存储从环境变量或文件加载的配置
type Config struct {
	ServerPort string
	LogLevel   string
	AppEnv     string // development/production

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	RecordTokenSecret string
	RecordURL         string        // 为空表示不转发记录
	RecordTimeout     time.Duration // 0 表示不设超时

	CanvasWidth  int
	CanvasHeight int
	PointRadius  float64
	LatestTTL    time.Duration

	// 免手光标控制的屏幕尺寸
	ScreenWidth  int
	ScreenHeight int

	DemoSchedule string // asynq cron 表达式，为空则不注册周期任务
	DemoMessage  string

	CORSAllowedOrigin string
	RateLimitMax      int
	RateLimitWindow   time.Duration
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:        os.Getenv("SERVER_PORT"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		AppEnv:            os.Getenv("APP_ENV"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:         os.Getenv("REDIS_KEY_PREFIX"),
		RecordTokenSecret: os.Getenv("RECORD_TOKEN_SECRET"),
		DemoSchedule:      os.Getenv("DEMO_SCHEDULE"),
		DemoMessage:       os.Getenv("DEMO_MESSAGE"),
		CORSAllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
		RedisDB:           envInt("REDIS_DB", 0),
		RecordTimeout:     envDuration("RECORD_TIMEOUT", 0),
		CanvasWidth:       envInt("CANVAS_WIDTH", 500),
		CanvasHeight:      envInt("CANVAS_HEIGHT", 500),
		PointRadius:       envFloat("POINT_RADIUS", render.DefaultRadius),
		LatestTTL:         envDuration("LATEST_TTL", time.Hour),
		ScreenWidth:       envInt("SCREEN_WIDTH", 1920),
		ScreenHeight:      envInt("SCREEN_HEIGHT", 1080),
		RateLimitMax:      envInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:   time.Second,
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	// 显式设置为空字符串时关闭记录转发；未设置时指向本服务实际监听的端口
	if url, ok := os.LookupEnv("RECORD_URL"); ok {
		cfg.RecordURL = url
	} else {
		cfg.RecordURL = DefaultRecordURL(cfg.ServerPort)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = redisstate.DefaultKeyPrefix
	}
	if cfg.DemoMessage == "" {
		cfg.DemoMessage = DefaultDemoMessage
	}
	if cfg.CORSAllowedOrigin == "" {
		cfg.CORSAllowedOrigin = "http://localhost:3000"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.RecordTokenSecret == "" {
		return nil, fmt.Errorf("environment variable RECORD_TOKEN_SECRET must be set")
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.ScreenWidth <= 0 || cfg.ScreenHeight <= 0 {
		return nil, fmt.Errorf("screen size must be positive, got %dx%d", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", cfg.RateLimitMax)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %d", key, raw, def)
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %v", key, raw, def)
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %s", key, raw, def)
		return def
	}
	return v
}
