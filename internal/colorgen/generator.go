// Package colorgen 生成随机颜色和随机归一化坐标。
package colorgen

import (
	"math/rand"
	"sync"
	"time"
)

const hexDigits = "0123456789ABCDEF"

// Generator 是并发安全的随机源，rand.Rand 本身不是并发安全的。
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New 创建以当前时间为种子的 Generator
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded 创建固定种子的 Generator，用于可重复的测试
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NextColor 返回 "#RRGGBB"，每一位独立、均匀地取自 0-9A-F。
func (g *Generator) NextColor() string {
	buf := [7]byte{'#'}
	g.mu.Lock()
	for i := 1; i < len(buf); i++ {
		buf[i] = hexDigits[g.rnd.Intn(len(hexDigits))]
	}
	g.mu.Unlock()
	return string(buf[:])
}

// Float64 返回 [0,1) 内的均匀随机数
func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}
