// pointdemo 在本地画布上运行随机点 demo，并把结果保存为 PNG 或 SVG。
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/colorgen"
	"point-canvas/internal/domain"
	"point-canvas/internal/recorder"
	"point-canvas/internal/render"
	"point-canvas/internal/service"
)

type options struct {
	count      int
	interval   time.Duration
	out        string
	width      int
	height     int
	radius     float64
	seed       int64
	recordURL  string
	demoURL    string
	secret     string
	timeout    time.Duration
	profileDir string
	verbose    bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("pointdemo", flag.ContinueOnError)
	fs.IntVar(&o.count, "n", 10, "number of random points to draw")
	fs.DurationVar(&o.interval, "interval", 0, "delay between triggers")
	fs.StringVar(&o.out, "out", "canvas.png", "output file (.png or .svg)")
	fs.IntVar(&o.width, "width", 500, "canvas width in pixels")
	fs.IntVar(&o.height, "height", 500, "canvas height in pixels")
	fs.Float64Var(&o.radius, "radius", render.DefaultRadius, "point radius in pixels")
	fs.Int64Var(&o.seed, "seed", 0, "random seed (0 = time based)")
	fs.StringVar(&o.recordURL, "record-url", "", "recording endpoint, e.g. http://localhost:8080/draw_point")
	fs.StringVar(&o.demoURL, "demo-url", "", "demo info endpoint, e.g. http://localhost:8080/demo")
	fs.StringVar(&o.secret, "secret", os.Getenv("RECORD_TOKEN_SECRET"), "token secret for the recording endpoint")
	fs.DurationVar(&o.timeout, "timeout", 0, "recording request timeout (0 = none)")
	fs.StringVar(&o.profileDir, "profile", "", "write a CPU profile into this directory")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.count < 0 {
		return o, fmt.Errorf("-n must not be negative")
	}
	if o.width <= 0 || o.height <= 0 {
		return o, fmt.Errorf("canvas size must be positive, got %dx%d", o.width, o.height)
	}
	switch strings.ToLower(filepath.Ext(o.out)) {
	case ".png", ".svg":
	default:
		return o, fmt.Errorf("unsupported output format %q (want .png or .svg)", o.out)
	}
	return o, nil
}

// logSink 把每次读数写入日志
type logSink struct {
	log *logrus.Entry
}

func (s logSink) PublishReadout(r domain.Readout) {
	s.log.WithFields(logrus.Fields{"x": r.X, "y": r.Y, "color": r.Color}).Info("Readout")
}

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain 返回进程退出码。os.Exit 放在 main 中，保证这里的 defer (profile 落盘) 都已执行。
func realMain(args []string) int {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	o, err := parseFlags(args)
	if err != nil {
		logrus.Error(err)
		return 2
	}
	if o.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if o.profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(o.profileDir), profile.Quiet, profile.NoShutdownHook).Stop()
	}

	if err := run(context.Background(), o); err != nil {
		logrus.Error(err)
		return 1
	}
	return 0
}

func run(ctx context.Context, o options) error {
	log := logrus.WithField("component", "pointdemo")

	if o.demoURL != "" {
		info, err := recorder.FetchDemoInfo(ctx, nil, o.demoURL)
		if err != nil {
			log.WithError(err).Warn("Could not fetch demo info")
		} else {
			log.WithField("demo", info).Info("Demo info")
		}
	}

	var rec recorder.Recorder = recorder.Nop{}
	if o.recordURL != "" {
		rec = recorder.NewHTTPRecorder(o.recordURL, o.secret, o.timeout)
	}
	dispatcher := recorder.NewDispatcher(rec)

	surface := render.NewRasterSurface(o.width, o.height, nil)
	renderer := render.NewRenderer(o.radius)
	canvas := service.NewCanvasService(surface, renderer, logSink{log: log}, dispatcher)

	gen := colorgen.New()
	if o.seed != 0 {
		gen = colorgen.NewSeeded(o.seed)
	}
	demo := service.NewDemoOrchestrator(canvas, gen, gen)

	points := make([]domain.Point, 0, o.count)
	for i := 0; i < o.count; i++ {
		if i > 0 && o.interval > 0 {
			time.Sleep(o.interval)
		}
		points = append(points, demo.Trigger(ctx))
	}
	dispatcher.Wait()

	if err := save(o, canvas, renderer, points); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"points": len(points), "out": o.out}).Info("Canvas saved")
	return nil
}

// save 写出画布。SVG 通过按顺序重放同样的点生成。
func save(o options, canvas *service.CanvasService, renderer *render.Renderer, points []domain.Point) (err error) {
	f, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", o.out, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if strings.EqualFold(filepath.Ext(o.out), ".svg") {
		svg := render.NewSVGSurface(f, o.width, o.height, color.White)
		for _, p := range points {
			renderer.Render(svg, p.X, p.Y, p.Color)
		}
		return svg.Close()
	}
	return canvas.EncodePNG(f)
}
