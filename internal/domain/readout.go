package domain

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Readout 是最近一次绘制点的文本读数 (x, y 保留两位小数)。
type Readout struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Color string `json:"color"`
}

// NewReadout 根据点生成读数
func NewReadout(p Point) Readout {
	return Readout{
		X:     toFixed2(p.X),
		Y:     toFixed2(p.Y),
		Color: p.Color,
	}
}

var (
	hundred = big.NewFloat(100)
	half    = big.NewFloat(0.5)
)

// toFixed2 按 Number.prototype.toFixed(2) 的规则格式化：
// 基于 float64 的精确十进制值，恰好一半时向远离零的方向进位 (strconv 是四舍六入五成双)。
func toFixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	x := new(big.Float).SetPrec(256).SetFloat64(v)
	x.Mul(x, hundred)
	n, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(x, new(big.Float).SetPrec(256).SetInt(n))
	if frac.Cmp(half) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	q, r := new(big.Int).QuoRem(n, big.NewInt(100), new(big.Int))
	return fmt.Sprintf("%s%s.%02d", sign, q.String(), r.Int64())
}
