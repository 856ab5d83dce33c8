package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"point-canvas/internal/domain"
)

func TestHTTPRecorder_Record(t *testing.T) {
	const secret = "record-secret"
	var got domain.Point
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// 校验 bearer token
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "Bearer "))
		token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if assert.NoError(t, err) {
			claims := token.Claims.(jwt.MapClaims)
			assert.Equal(t, RecorderSubject, claims["sub"])
		}

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Point added successfully!","id":"abc"}`))
	}))
	defer srv.Close()

	rec := NewHTTPRecorder(srv.URL, secret, time.Second)
	ack, err := rec.Record(context.Background(), domain.Point{X: 0.25, Y: 0.75, Color: "#112233"})
	require.NoError(t, err)
	assert.Equal(t, domain.Ack{Message: domain.AckMessage, ID: "abc"}, ack)
	assert.Equal(t, domain.Point{X: 0.25, Y: 0.75, Color: "#112233"}, got)
}

func TestHTTPRecorder_PlainTextAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "没有 secret 时不应带 token")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ack, err := NewHTTPRecorder(srv.URL, "", 0).Record(context.Background(), domain.Point{})
	require.NoError(t, err)
	assert.Equal(t, "ok", ack.Message)
}

func TestHTTPRecorder_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPRecorder(srv.URL, "", 0).Record(context.Background(), domain.Point{X: 2})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Code)
}

func TestFetchDemoInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("hello from demo"))
	}))
	defer srv.Close()

	text, err := FetchDemoInfo(context.Background(), nil, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello from demo", text)
}

// blockingRecorder 在 release 关闭前一直阻塞
type blockingRecorder struct {
	release chan struct{}
	mu      sync.Mutex
	points  []domain.Point
	err     error
}

func (b *blockingRecorder) Record(ctx context.Context, p domain.Point) (domain.Ack, error) {
	<-b.release
	b.mu.Lock()
	b.points = append(b.points, p)
	b.mu.Unlock()
	return domain.Ack{Message: domain.AckMessage}, b.err
}

func TestDispatcher_DoesNotBlock(t *testing.T) {
	rec := &blockingRecorder{release: make(chan struct{}), err: errors.New("boom")}
	d := NewDispatcher(rec)

	var (
		mu      sync.Mutex
		results []error
	)
	returned := make(chan struct{})
	go func() {
		d.Dispatch(domain.Point{X: 0.1}, func(p domain.Point, ack domain.Ack, err error) {
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		})
		d.Dispatch(domain.Point{X: 0.2}, nil)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Dispatch 不应等待记录结果")
	}

	close(rec.release)
	d.Wait()

	assert.Len(t, rec.points, 2)
	require.Len(t, results, 1)
	assert.EqualError(t, results[0], "boom")
}

func TestLogResult_DoesNotPanic(t *testing.T) {
	done := LogResult(nil)
	done(domain.Point{X: 1}, domain.Ack{}, errors.New("failed"))
	done(domain.Point{X: 1}, domain.Ack{Message: "ok"}, nil)
}
