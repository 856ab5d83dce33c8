package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"point-canvas/internal/cursor"
	"point-canvas/internal/domain"
	httpHandler "point-canvas/internal/handler/http"
	wsHandler "point-canvas/internal/handler/websocket"
	"point-canvas/internal/hub"
	"point-canvas/internal/middleware"
	"point-canvas/internal/recorder"
	"point-canvas/internal/render"
	"point-canvas/internal/service"
)

type acceptAll struct{}

func (acceptAll) Record(ctx context.Context, p domain.Point) (domain.Ack, error) {
	return domain.Ack{Message: domain.AckMessage}, nil
}

type noLatest struct{}

func (noLatest) Latest(ctx context.Context) (*domain.RecordedPoint, error) {
	return nil, service.ErrNoRecordedPoint
}

func newTestRouter(t *testing.T) (*gin.Engine, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &Config{
		KeyPrefix:         "pc:",
		RecordTokenSecret: "secret",
		CORSAllowedOrigin: "http://localhost:3000",
		DemoMessage:       "demo",
		RateLimitMax:      100,
		RateLimitWindow:   time.Second,
	}
	var logs bytes.Buffer
	log := logrus.New()
	log.SetOutput(&logs)
	log.SetFormatter(&logrus.JSONFormatter{})

	h := hub.NewHub(nil, "")
	dispatcher := recorder.NewDispatcher(recorder.Nop{})
	t.Cleanup(dispatcher.Wait)
	canvas := service.NewCanvasService(render.NewRasterSurface(50, 50, nil), render.NewRenderer(0), h, dispatcher)
	demo := service.NewDemoOrchestrator(canvas, stubColors{}, stubCoords{})

	router := NewRouter(cfg, log, rdb, Handlers{
		Canvas:    httpHandler.NewCanvasHandler(canvas, demo, noLatest{}),
		Record:    httpHandler.NewRecordHandler(acceptAll{}, cfg.DemoMessage),
		Cursor:    httpHandler.NewCursorHandler(cursor.NewController(h, 1920, 1080)),
		WebSocket: wsHandler.NewWebSocketHandler(h, cfg.CORSAllowedOrigin),
	})
	return router, &logs
}

type stubColors struct{}

func (stubColors) NextColor() string { return "#123456" }

type stubCoords struct{}

func (stubCoords) Float64() float64 { return 0.5 }

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PingAndLogging(t *testing.T) {
	router, logs := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
	requestID := w.Header().Get(middleware.RequestIDHeader)
	require.NotEmpty(t, requestID)
	assert.Contains(t, logs.String(), requestID)
	assert.Contains(t, logs.String(), `"path":"/ping"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodOptions, "/api/points", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_DrawPointRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)
	body := `{"x":0.1,"y":0.2,"color":"#FFFFFF"}`

	req := httptest.NewRequest(http.MethodPost, "/draw_point", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)

	token, err := recorder.SignToken("secret", time.Minute, time.Now())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/draw_point", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), domain.AckMessage)
}

func TestRouter_Routes(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, "demo", serve(router, httptest.NewRequest(http.MethodGet, "/demo", nil)).Body.String())
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodPost, "/api/demo/trigger", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodGet, "/api/readout", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/api/canvas.png", nil)).Code)
	assert.Equal(t, http.StatusNoContent, serve(router, httptest.NewRequest(http.MethodDelete, "/api/canvas", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/api/cursor", nil)).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/cursor/command", strings.NewReader(`{"command":"go"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
}

func TestRegisterDemoTask(t *testing.T) {
	mr := miniredis.RunT(t)
	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: mr.Addr()}, &asynq.SchedulerOpts{})

	assert.NoError(t, registerDemoTask(scheduler, "@every 30s"))
	assert.Error(t, registerDemoTask(scheduler, "every now and then"))
}
