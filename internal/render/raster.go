package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
)

var _ Surface = (*RasterSurface)(nil)

// RasterSurface 是基于 image.RGBA 的表面，用 rasterx 的扫描线填充器画圆 (带抗锯齿)。
type RasterSurface struct {
	img        *image.RGBA
	filler     *rasterx.Filler
	background color.Color
}

// NewRasterSurface 创建 width x height 的表面，并用 background 填充 (nil 表示白色)。
func NewRasterSurface(width, height int, background color.Color) *RasterSurface {
	if background == nil {
		background = color.White
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	s := &RasterSurface{
		img:        img,
		filler:     rasterx.NewFiller(width, height, scanner),
		background: background,
	}
	s.Clear()
	return s
}

func (s *RasterSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *RasterSurface) FillCircle(cx, cy, r float64, c color.Color) {
	s.filler.Clear()
	s.filler.SetColor(c)
	rasterx.AddCircle(cx, cy, r, s.filler)
	s.filler.Draw()
	s.filler.Clear()
}

// Clear 用背景色重置整个表面
func (s *RasterSurface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
}

// Image 返回底层图像，调用方不应在绘制期间并发读取
func (s *RasterSurface) Image() *image.RGBA { return s.img }

// EncodePNG 把当前表面编码为 PNG
func (s *RasterSurface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

// EncodeThumbnailPNG 把表面按比例缩放到 width 像素宽后编码为 PNG。
// width <= 0 或不小于原宽度时输出原图。
func (s *RasterSurface) EncodeThumbnailPNG(w io.Writer, width int) error {
	return png.Encode(w, Thumbnail(s.img, width))
}

// Thumbnail 按比例把 src 缩放到 width 像素宽 (双线性插值)
func Thumbnail(src image.Image, width int) image.Image {
	b := src.Bounds()
	if width <= 0 || width >= b.Dx() {
		return src
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
