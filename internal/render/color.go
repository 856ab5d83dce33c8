package render

import (
	"fmt"
	"image/color"

	"github.com/mazznoer/csscolorparser"
)

// ParseColor 解析 CSS 颜色字符串：#RGB、#RRGGBB(AA)、颜色名、rgb()/hsl() 等。
// 返回预乘 alpha 的 color.RGBA。
func ParseColor(s string) (color.RGBA, bool) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.RGBA{}, false
	}
	r, g, b, a := c.RGBA255()
	return color.RGBAModel.Convert(color.NRGBA{R: r, G: g, B: b, A: a}).(color.RGBA), true
}

// HexColor 把颜色格式化为大写 "#RRGGBB"，忽略 alpha。
func HexColor(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02X%02X%02X", rgba.R, rgba.G, rgba.B)
}
