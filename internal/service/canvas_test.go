package service_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"point-canvas/internal/colorgen"
	"point-canvas/internal/domain"
	"point-canvas/internal/recorder"
	"point-canvas/internal/render"
	"point-canvas/internal/service"
)

// fakeSink 收集读数
type fakeSink struct {
	mu       sync.Mutex
	readouts []domain.Readout
}

func (s *fakeSink) PublishReadout(r domain.Readout) {
	s.mu.Lock()
	s.readouts = append(s.readouts, r)
	s.mu.Unlock()
}

// fakeDispatcher 同步记录被转发的点，并调用完成回调
type fakeDispatcher struct {
	mu     sync.Mutex
	points []domain.Point
}

func (d *fakeDispatcher) Dispatch(p domain.Point, done recorder.DoneFunc) {
	d.mu.Lock()
	d.points = append(d.points, p)
	d.mu.Unlock()
	if done != nil {
		done(p, domain.Ack{Message: domain.AckMessage}, nil)
	}
}

func newCanvas(t *testing.T) (*service.CanvasService, *render.RasterSurface, *fakeSink, *fakeDispatcher) {
	t.Helper()
	surface := render.NewRasterSurface(200, 100, nil)
	sink := &fakeSink{}
	dispatcher := &fakeDispatcher{}
	svc := service.NewCanvasService(surface, render.NewRenderer(3), sink, dispatcher)
	return svc, surface, sink, dispatcher
}

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func TestCanvasService_Draw_ManualEntry(t *testing.T) {
	svc, surface, sink, dispatcher := newCanvas(t)

	readout, err := svc.Draw(context.Background(), domain.Point{X: 0.5, Y: 0.5, Color: "#112233"})
	require.NoError(t, err)

	assert.Equal(t, domain.Readout{X: "0.50", Y: "0.50", Color: "#112233"}, readout)
	assert.Equal(t, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}, surface.Image().RGBAAt(100, 50), "应在 (0.5·W, 0.5·H) 绘制")
	assert.Equal(t, []domain.Readout{readout}, sink.readouts)
	assert.Equal(t, []domain.Point{{X: 0.5, Y: 0.5, Color: "#112233"}}, dispatcher.points)
}

func TestCanvasService_Draw_RejectsOutOfRange(t *testing.T) {
	svc, surface, sink, dispatcher := newCanvas(t)
	before := append([]byte(nil), surface.Image().Pix...)

	_, err := svc.Draw(context.Background(), domain.Point{X: 1.5, Y: 0.2, Color: "#112233"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidPoint))
	assert.True(t, errors.Is(err, domain.ErrOutOfRange))
	assert.Equal(t, before, surface.Image().Pix, "越界的点不应绘制")
	assert.Empty(t, sink.readouts, "越界的点不应更新读数")
	assert.Empty(t, dispatcher.points, "越界的点不应被记录")
}

func TestCanvasService_ClearAndPNG(t *testing.T) {
	svc, surface, _, _ := newCanvas(t)
	_, err := svc.Draw(context.Background(), domain.Point{X: 0, Y: 0, Color: "black"})
	require.NoError(t, err)

	svc.Clear()
	assert.Equal(t, white, surface.Image().RGBAAt(0, 0))

	var buf bytes.Buffer
	require.NoError(t, svc.EncodePNG(&buf))
	assert.NotZero(t, buf.Len())
}

func TestDemoOrchestrator_Trigger(t *testing.T) {
	svc, surface, sink, dispatcher := newCanvas(t)
	gen := colorgen.NewSeeded(7)
	orchestrator := service.NewDemoOrchestrator(svc, gen, gen)

	p := orchestrator.Trigger(context.Background())

	assert.True(t, domain.InUnitInterval(p.X))
	assert.True(t, domain.InUnitInterval(p.Y))
	assert.Regexp(t, regexp.MustCompile(`^#[0-9A-F]{6}$`), p.Color)

	require.Len(t, sink.readouts, 1)
	assert.Equal(t, domain.NewReadout(p), sink.readouts[0])
	assert.Regexp(t, `^[01]\.\d{2}$`, sink.readouts[0].X)
	assert.Regexp(t, `^[01]\.\d{2}$`, sink.readouts[0].Y)
	assert.Equal(t, p.Color, sink.readouts[0].Color)
	assert.Equal(t, []domain.Point{p}, dispatcher.points)

	want, ok := render.ParseColor(p.Color)
	require.True(t, ok)
	w, h := surface.Size()
	px, py := int(p.X*float64(w)), int(p.Y*float64(h))
	assert.Equal(t, want, surface.Image().RGBAAt(px, py))
}

// fixedCoords 按顺序返回预设坐标
type fixedCoords struct{ values []float64 }

func (f *fixedCoords) Float64() float64 {
	v := f.values[0]
	f.values = f.values[1:]
	return v
}

type fixedColor string

func (c fixedColor) NextColor() string { return string(c) }

func TestDemoOrchestrator_UsesSources(t *testing.T) {
	svc, _, sink, _ := newCanvas(t)
	orchestrator := service.NewDemoOrchestrator(svc, fixedColor("#00FF00"), &fixedCoords{values: []float64{0.125, 0.875}})

	p := orchestrator.Trigger(context.Background())

	assert.Equal(t, domain.Point{X: 0.125, Y: 0.875, Color: "#00FF00"}, p)
	assert.Equal(t, []domain.Readout{{X: "0.13", Y: "0.88", Color: "#00FF00"}}, sink.readouts)
}

func TestDemoOrchestrator_WithRealDispatcher(t *testing.T) {
	surface := render.NewRasterSurface(50, 50, nil)
	dispatcher := recorder.NewDispatcher(recorder.Nop{})
	var got []domain.Readout
	svc := service.NewCanvasService(surface, render.NewRenderer(2), service.ReadoutSinkFunc(func(r domain.Readout) {
		got = append(got, r)
	}), dispatcher)
	orchestrator := service.NewDemoOrchestrator(svc, colorgen.NewSeeded(3), colorgen.NewSeeded(4))

	for i := 0; i < 5; i++ {
		orchestrator.Trigger(context.Background())
	}
	dispatcher.Wait()
	assert.Len(t, got, 5)
}
