package main

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"point-canvas/internal/domain"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-n", "3", "-out", "x.svg", "-width", "100", "-height", "80", "-seed", "7"})
	require.NoError(t, err)
	assert.Equal(t, 3, o.count)
	assert.Equal(t, "x.svg", o.out)
	assert.Equal(t, 100, o.width)
	assert.Equal(t, int64(7), o.seed)

	_, err = parseFlags([]string{"-out", "x.gif"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"-width", "0"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"-n", "-1"})
	assert.Error(t, err)
}

func TestRealMain_FlushesProfileOnFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "missing", "canvas.png")

	code := realMain([]string{"-n", "1", "-out", out, "-profile", dir})

	assert.Equal(t, 1, code)
	_, err := os.Stat(filepath.Join(dir, "cpu.pprof"))
	assert.NoError(t, err, "失败时也应写出 CPU profile")
}

func TestRealMain_BadFlags(t *testing.T) {
	assert.Equal(t, 2, realMain([]string{"-out", "canvas.gif"}))
}

func TestRun_WritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "canvas.png")
	o, err := parseFlags([]string{"-n", "5", "-out", out, "-width", "64", "-height", "32", "-seed", "1"})
	require.NoError(t, err)

	require.NoError(t, run(context.Background(), o))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestRun_WritesSVG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "canvas.svg")
	o, err := parseFlags([]string{"-n", "4", "-out", out, "-seed", "1"})
	require.NoError(t, err)

	require.NoError(t, run(context.Background(), o))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "<circle"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), "</svg>"))
}

func TestRun_RecordsAndFetchesDemo(t *testing.T) {
	var recorded atomic.Int32
	var demoHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/draw_point", func(w http.ResponseWriter, r *http.Request) {
		var p domain.Point
		if json.NewDecoder(r.Body).Decode(&p) == nil && domain.InUnitInterval(p.X) && domain.InUnitInterval(p.Y) {
			recorded.Add(1)
		}
		_ = json.NewEncoder(w).Encode(domain.Ack{Message: domain.AckMessage})
	})
	mux.HandleFunc("/demo", func(w http.ResponseWriter, r *http.Request) {
		demoHits.Add(1)
		_, _ = w.Write([]byte("hello"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "canvas.png")
	o, err := parseFlags([]string{
		"-n", "3", "-out", out,
		"-record-url", srv.URL + "/draw_point",
		"-demo-url", srv.URL + "/demo",
		"-secret", "s",
	})
	require.NoError(t, err)

	require.NoError(t, run(context.Background(), o))

	// run 在保存前等待所有记录完成
	assert.Equal(t, int32(3), recorded.Load())
	assert.Equal(t, int32(1), demoHits.Load())
}
