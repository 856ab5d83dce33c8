// Package cursor 实现免手操作的光标控制：归一化坐标移动光标，语音命令触发鼠标动作。
// 真正的鼠标由 Actuator 执行，本包只维护状态 (移动开关、持续按下、速度)。
package cursor

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"point-canvas/internal/domain"
	"point-canvas/internal/render"
)

var (
	ErrUnknownCommand   = errors.New("unknown cursor command")
	ErrMovementDisabled = errors.New("cursor movement is disabled")
	ErrStopped          = errors.New("cursor controller stopped")
	ErrInvalidDirection = errors.New("invalid nudge direction")
)

// 语音命令
const (
	CmdLeft   = "left"   // 左键单击
	CmdRight  = "right"  // 右键单击
	CmdUp     = "up"     // 向上滚动 speed 格
	CmdDown   = "down"   // 向下滚动 speed 格
	CmdGo     = "go"     // 左键双击
	CmdFollow = "follow" // 持续按下左键，再说一次松开
	CmdOn     = "on"     // 打开移动
	CmdOff    = "off"    // 关闭移动
	CmdOne    = "one"    // 慢速
	CmdTwo    = "two"    // 中速
	CmdThree  = "three"  // 快速
	CmdStop   = "stop"   // 结束控制
)

// 动作类型
const (
	ActionMove        = "move"
	ActionClick       = "click"
	ActionDoubleClick = "double_click"
	ActionPress       = "press"
	ActionRelease     = "release"
	ActionScroll      = "scroll"
)

// Action 是交给 Actuator 执行的一次鼠标动作
type Action struct {
	Type   string `json:"type"`
	Button string `json:"button,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Steps  int    `json:"steps,omitempty"` // 滚动格数，正数向上
}

// Actuator 执行鼠标动作 (系统鼠标、远程显示端等)
type Actuator interface {
	Perform(a Action)
}

// ActuatorFunc 把普通函数适配为 Actuator
type ActuatorFunc func(a Action)

func (f ActuatorFunc) Perform(a Action) { f(a) }

// DefaultSpeed 对应 "two"
const DefaultSpeed = 2

// 头部位置的 9 个方向：0 不动，1..8 从上方开始逆时针
var directions = [9][2]float64{
	{0, 0}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1},
}

// State 是控制器的当前状态
type State struct {
	X         float64 `json:"x"`       // 归一化位置
	Y         float64 `json:"y"`       // 归一化位置
	PixelX    int     `json:"pixel_x"` // 屏幕像素位置
	PixelY    int     `json:"pixel_y"`
	Moving    bool    `json:"moving"`
	Holding   bool    `json:"holding"` // 左键是否处于持续按下
	Speed     int     `json:"speed"`
	Stopped   bool    `json:"stopped"`
	LastEvent string  `json:"last_event,omitempty"`
}

// Controller 维护光标状态并把命令翻译为 Action，所有方法并发安全。
type Controller struct {
	mu       sync.Mutex
	actuator Actuator
	width    int
	height   int
	state    State
}

// NewController 创建屏幕尺寸为 width x height 的控制器，初始位置为屏幕中心。
func NewController(actuator Actuator, width, height int) *Controller {
	if actuator == nil {
		panic("Actuator cannot be nil for cursor Controller")
	}
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("screen size must be positive, got %dx%d", width, height))
	}
	c := &Controller{actuator: actuator, width: width, height: height}
	c.state = State{X: 0.5, Y: 0.5, Moving: true, Speed: DefaultSpeed}
	c.state.PixelX, c.state.PixelY = c.pixel(0.5, 0.5)
	return c
}

// pixel 使用与画布相同的映射，然后截断为整数像素
func (c *Controller) pixel(x, y float64) (int, int) {
	px, py := render.ToPixel(x, y, c.width, c.height)
	return int(px), int(py)
}

// State 返回当前状态的副本
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Move 把光标移动到归一化位置 (x, y)。移动关闭时返回 ErrMovementDisabled。
func (c *Controller) Move(x, y float64) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMovable(); err != nil {
		return c.state, err
	}
	if err := (domain.Point{X: x, Y: y}).Validate(); err != nil {
		return c.state, err
	}
	c.moveLocked(x, y)
	return c.state, nil
}

// Nudge 按头部方向 (0..8) 移动一步，步长为 10·speed 像素，位置保持在 [0.001, 0.999]。
func (c *Controller) Nudge(direction int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if direction < 0 || direction >= len(directions) {
		return c.state, fmt.Errorf("direction %d: %w", direction, ErrInvalidDirection)
	}
	if err := c.checkMovable(); err != nil {
		return c.state, err
	}
	d := directions[direction]
	step := 10 * float64(c.state.Speed)
	x := clampUnit(c.state.X + d[0]*step/float64(c.width))
	y := clampUnit(c.state.Y + d[1]*step/float64(c.height))
	c.moveLocked(x, y)
	return c.state, nil
}

func clampUnit(v float64) float64 {
	return math.Min(math.Max(v, 0.001), 0.999)
}

func (c *Controller) checkMovable() error {
	if c.state.Stopped {
		return ErrStopped
	}
	if !c.state.Moving {
		return ErrMovementDisabled
	}
	return nil
}

func (c *Controller) moveLocked(x, y float64) {
	c.state.X, c.state.Y = x, y
	c.state.PixelX, c.state.PixelY = c.pixel(x, y)
	c.actuator.Perform(Action{Type: ActionMove, X: c.state.PixelX, Y: c.state.PixelY})
}

// Execute 执行一条语音命令 (不区分大小写)。
func (c *Controller) Execute(command string) (State, error) {
	cmd := strings.ToLower(strings.TrimSpace(command))
	logCtx := logrus.WithFields(logrus.Fields{"component": "cursor", "command": cmd})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Stopped {
		return c.state, ErrStopped
	}

	switch cmd {
	case CmdLeft:
		c.actuator.Perform(Action{Type: ActionClick, Button: "left"})
		c.state.LastEvent = "Left mouse click executed."
	case CmdRight:
		c.actuator.Perform(Action{Type: ActionClick, Button: "right"})
		c.state.LastEvent = "Right mouse click executed."
	case CmdUp, CmdDown:
		steps := c.state.Speed
		if cmd == CmdDown {
			steps = -steps
		}
		c.actuator.Perform(Action{Type: ActionScroll, Steps: steps})
		c.state.LastEvent = fmt.Sprintf("Mouse scroll (%s) executed.", cmd)
	case CmdGo:
		c.actuator.Perform(Action{Type: ActionDoubleClick, Button: "left"})
		c.state.LastEvent = "Double left click executed."
	case CmdFollow:
		c.toggleHoldLocked()
	case CmdOn:
		c.state.Moving = true
		c.state.LastEvent = "Cursor movement enabled."
	case CmdOff:
		c.state.Moving = false
		c.state.LastEvent = "Cursor movement disabled."
	case CmdOne, CmdTwo, CmdThree:
		c.state.Speed = map[string]int{CmdOne: 1, CmdTwo: 2, CmdThree: 3}[cmd]
		c.state.LastEvent = fmt.Sprintf("Cursor speed set to %d.", c.state.Speed)
	case CmdStop:
		// 结束前松开仍按着的左键
		if c.state.Holding {
			c.toggleHoldLocked()
		}
		c.state.Moving = false
		c.state.Stopped = true
		c.state.LastEvent = "Cursor control finished."
	default:
		logCtx.Warn("Unknown cursor command")
		return c.state, fmt.Errorf("%q: %w", command, ErrUnknownCommand)
	}

	logCtx.Info(c.state.LastEvent)
	return c.state, nil
}

func (c *Controller) toggleHoldLocked() {
	if !c.state.Holding {
		c.actuator.Perform(Action{Type: ActionPress, Button: "left"})
		c.state.Holding = true
		c.state.LastEvent = "Sustained left mouse click initiated."
		return
	}
	c.actuator.Perform(Action{Type: ActionRelease, Button: "left"})
	c.state.Holding = false
	c.state.LastEvent = "Sustained left mouse click finished."
}

// Reset 恢复初始状态 (中心位置、移动打开、中速)，松开仍按着的左键。
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Holding {
		c.toggleHoldLocked()
	}
	c.state = State{X: 0.5, Y: 0.5, Moving: true, Speed: DefaultSpeed}
	c.state.PixelX, c.state.PixelY = c.pixel(0.5, 0.5)
	return c.state
}
