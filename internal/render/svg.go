package render

import (
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

var _ Surface = (*SVGSurface)(nil)

// SVGSurface 把每个圆直接写成一个 <circle> 元素，不保留历史。
// 写完后必须调用 Close 输出结束标签。
type SVGSurface struct {
	canvas        *svg.SVG
	width, height int
}

// NewSVGSurface 写入 SVG 头部；background 非 nil 时先画一个满幅矩形。
func NewSVGSurface(w io.Writer, width, height int, background color.Color) *SVGSurface {
	canvas := svg.New(w)
	canvas.Start(width, height)
	if background != nil {
		canvas.Rect(0, 0, width, height, "fill:"+HexColor(background))
	}
	return &SVGSurface{canvas: canvas, width: width, height: height}
}

func (s *SVGSurface) Size() (int, int) { return s.width, s.height }

func (s *SVGSurface) FillCircle(cx, cy, r float64, c color.Color) {
	s.canvas.Circle(round(cx), round(cy), round(r), "fill:"+HexColor(c))
}

// Close 输出 </svg>
func (s *SVGSurface) Close() error {
	s.canvas.End()
	return nil
}

func round(v float64) int { return int(math.Round(v)) }
