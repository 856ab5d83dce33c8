package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/colorgen"
	"point-canvas/internal/cursor"
	httpHandler "point-canvas/internal/handler/http"
	wsHandler "point-canvas/internal/handler/websocket"
	"point-canvas/internal/hub"
	"point-canvas/internal/infra/setup"
	redisstate "point-canvas/internal/infra/state/redis"
	"point-canvas/internal/recorder"
	"point-canvas/internal/render"
	"point-canvas/internal/service"
	"point-canvas/internal/tasks"
	"point-canvas/internal/worker"
)

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	Scheduler   *asynq.Scheduler
	Hub         *hub.Hub
	Dispatcher  *recorder.Dispatcher
	HttpServer  *http.Server
}

// NewLogger 按配置创建 logrus Logger
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	// 包级别的 logrus 调用 (各组件的 logCtx) 使用同样的格式和级别
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(level)
	return log
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	log.Infof("Logger initialized (Level: %s, Env: %s)", log.GetLevel(), cfg.AppEnv)

	// 3. 初始化基础设施
	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Infrastructure initialized")

	// 4. Repository 和 Hub
	stateRepo := redisstate.NewRedisStateRepository(redisClient, cfg.KeyPrefix)
	hubInstance := hub.NewHub(redisClient, redisstate.RecordedChannel(cfg.KeyPrefix))

	// 5. 画布、记录转发和 Services
	surface := render.NewRasterSurface(cfg.CanvasWidth, cfg.CanvasHeight, nil)
	renderer := render.NewRenderer(cfg.PointRadius)

	var rec recorder.Recorder = recorder.Nop{}
	if cfg.RecordURL != "" {
		rec = recorder.NewHTTPRecorder(cfg.RecordURL, cfg.RecordTokenSecret, cfg.RecordTimeout)
		log.WithField("record_url", cfg.RecordURL).Info("Points will be forwarded to recorder")
	} else {
		log.Warn("RECORD_URL is empty, recording disabled")
	}
	dispatcher := recorder.NewDispatcher(rec)

	canvasService := service.NewCanvasService(surface, renderer, hubInstance, dispatcher)
	gen := colorgen.New()
	orchestrator := service.NewDemoOrchestrator(canvasService, gen, gen)
	recordService := service.NewRecordService(asynqClient, stateRepo, cfg.LatestTTL)
	// 鼠标动作通过 Hub 推送给显示端执行
	cursorController := cursor.NewController(hubInstance, cfg.ScreenWidth, cfg.ScreenHeight)
	log.Info("Services initialized")

	// 6. Handlers 和 Worker
	handlers := Handlers{
		Canvas:    httpHandler.NewCanvasHandler(canvasService, orchestrator, recordService),
		Record:    httpHandler.NewRecordHandler(recordService, cfg.DemoMessage),
		Cursor:    httpHandler.NewCursorHandler(cursorController),
		WebSocket: wsHandler.NewWebSocketHandler(hubInstance, cfg.CORSAllowedOrigin),
	}
	workerServer := worker.NewWorkerServer(redisClientOpt, recordService, orchestrator, cursorController, log)

	var scheduler *asynq.Scheduler
	if cfg.DemoSchedule != "" {
		scheduler = asynq.NewScheduler(redisClientOpt, &asynq.SchedulerOpts{
			Logger:   worker.NewAsynqLogger(log.WithField("component", "scheduler")),
			LogLevel: asynq.WarnLevel,
		})
		if err := registerDemoTask(scheduler, cfg.DemoSchedule); err != nil {
			return nil, err
		}
		log.Infof("Demo trigger scheduled with '%s'", cfg.DemoSchedule)
	}

	// 7. Gin 路由和 HTTP Server
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := NewRouter(cfg, log, redisClient, handlers)
	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		Config:      cfg,
		Log:         log,
		RedisClient: redisClient,
		AsynqClient: asynqClient,
		AsynqServer: workerServer,
		Scheduler:   scheduler,
		Hub:         hubInstance,
		Dispatcher:  dispatcher,
		HttpServer:  httpServer,
	}, nil
}

// registerDemoTask 注册周期性的 demo 触发任务
func registerDemoTask(scheduler *asynq.Scheduler, schedule string) error {
	payload, err := tasks.NewDemoTriggerPayload()
	if err != nil {
		return fmt.Errorf("failed to create demo trigger payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeDemoTrigger, payload)
	if _, err := scheduler.Register(schedule, task, asynq.Queue("low"), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("could not register demo trigger task with schedule '%s': %w", schedule, err)
	}
	return nil
}

// Start 启动应用的所有后台 Goroutine 和 HTTP 服务器
func (a *App) Start() error {
	go a.Hub.Run()

	if err := a.Hub.SubscribeRecorded(context.Background()); err != nil {
		return fmt.Errorf("failed to subscribe to recorded points: %w", err)
	}
	if err := a.AsynqServer.Start(); err != nil {
		return err
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Start(); err != nil {
			return fmt.Errorf("could not start scheduler: %w", err)
		}
		a.Log.Info("Asynq scheduler started")
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
	return nil
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 先停止接收新请求
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 2. 停止周期任务和 Worker
	if a.Scheduler != nil {
		a.Scheduler.Shutdown()
	}
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	// 3. 等待进行中的记录请求
	if a.Dispatcher != nil {
		a.Dispatcher.Wait()
	}

	// 4. 停止 Hub
	if a.Hub != nil {
		a.Hub.StopAllSubscriptions()
		a.Hub.Stop()
	}

	// 5. 关闭 Asynq Client 和 Redis 连接
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}
