package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/tasks"
)

// WorkerServer 封装了 Asynq Worker Server 的启动和关闭逻辑
type WorkerServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logrus.Entry
}

// NewWorkerServer 创建一个新的 WorkerServer 实例并注册任务处理器
func NewWorkerServer(redisOpt asynq.RedisConnOpt, applier RecordedPointApplier, triggerer DemoTriggerer, commander CursorCommander, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskLogger(ctx, task).WithField("component", "worker_server").Errorf("Task failed: %v", err)
			}),
			Logger:   NewAsynqLogger(logEntry),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &WorkerServer{
		server: server,
		mux:    NewServeMux(applier, triggerer, commander),
		log:    logEntry,
	}
}

// NewServeMux 注册本服务所有的任务处理器
func NewServeMux(applier RecordedPointApplier, triggerer DemoTriggerer, commander CursorCommander) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypePointRecord, NewPointRecordHandler(applier))
	mux.Handle(tasks.TypeDemoTrigger, NewDemoTriggerHandler(triggerer))
	mux.Handle(tasks.TypeCursorCommand, NewCursorCommandHandler(commander))
	return mux
}

// Start 启动 Worker Server (非阻塞)，由 Shutdown 停止
func (ws *WorkerServer) Start() error {
	ws.log.Info("Worker server starting...")
	if err := ws.server.Start(ws.mux); err != nil {
		return fmt.Errorf("could not start worker server: %w", err)
	}
	return nil
}

// Shutdown 优雅地关闭 Worker Server
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}

// NewAsynqLogger 把 asynq 的日志接到 logrus，worker 和 scheduler 共用
func NewAsynqLogger(entry *logrus.Entry) asynq.Logger {
	return &asynqLogger{entry: entry}
}

type asynqLogger struct {
	entry *logrus.Entry
}

func (l *asynqLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }
