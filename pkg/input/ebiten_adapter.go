package input

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/utils"
)

// Options 输入适配器参数
type Options struct {
	CenterX, CenterY float64 // 旋钮圆心（逻辑屏幕坐标）
	Radius           float64 // 旋钮半径
	DetentsPerTurn   int     // 拖动一整圈对应的格数
	LongPressTicks   int     // 长按阈值（帧）
	KeyRepeatDelay   int     // 方向键重复延迟（帧）
	KeyRepeatEvery   int     // 方向键重复间隔（帧）
}

// DefaultOptions 以 (cx, cy, r) 为旋钮的默认参数
func DefaultOptions(cx, cy, r float64) Options {
	return Options{
		CenterX:        cx,
		CenterY:        cy,
		Radius:         r,
		DetentsPerTurn: 24,
		LongPressTicks: 45,
		KeyRepeatDelay: 18,
		KeyRepeatEvery: 3,
	}
}

var (
	forwardKeys  = []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyArrowUp, ebiten.KeyL, ebiten.KeyK}
	backwardKeys = []ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyArrowDown, ebiten.KeyH, ebiten.KeyJ}
	buttonKeys   = []ebiten.Key{ebiten.KeySpace, ebiten.KeyEnter}
)

// EbitenAdapter 实现 systems.InputAdapter
//
// 旋转来源：鼠标滚轮、方向键（支持按住重复）、在旋钮环上拖动（鼠标或单指触摸）。
// 按键来源：空格/回车，或双指按住。
// 必须在 ebiten 的 Update 中调用。
type EbitenAdapter struct {
	opts  Options
	wheel *DetentDecoder
	drag  *DetentDecoder
	press *PressClassifier

	dragging  bool
	lastAngle float64
}

// NewEbitenAdapter 创建适配器
func NewEbitenAdapter(opts Options) *EbitenAdapter {
	detents := opts.DetentsPerTurn
	if detents <= 0 {
		detents = 24
	}
	return &EbitenAdapter{
		opts:  opts,
		wheel: NewDetentDecoder(1),
		drag:  NewDetentDecoder(2 * math.Pi / float64(detents)),
		press: NewPressClassifier(opts.LongPressTicks),
	}
}

// SampleRotation 实现 systems.InputAdapter
func (a *EbitenAdapter) SampleRotation() (int, error) {
	delta := 0

	_, wheelY := ebiten.Wheel()
	delta += a.wheel.Add(wheelY)

	for _, k := range forwardKeys {
		if repeatFires(inpututil.KeyPressDuration(k), a.opts.KeyRepeatDelay, a.opts.KeyRepeatEvery) {
			delta++
		}
	}
	for _, k := range backwardKeys {
		if repeatFires(inpututil.KeyPressDuration(k), a.opts.KeyRepeatDelay, a.opts.KeyRepeatEvery) {
			delta--
		}
	}

	delta += a.sampleDrag()
	return delta, nil
}

// sampleDrag 在旋钮环附近拖动时按角度变化产生格数
func (a *EbitenAdapter) sampleDrag() int {
	pressed, x, y := utils.GetPointerState()
	if !pressed || utils.TouchCount() > 1 {
		a.dragging = false
		a.drag.Reset()
		return 0
	}

	fx, fy := float64(x), float64(y)
	angle, ok := utils.PointerAngle(a.opts.CenterX, a.opts.CenterY, fx, fy)
	dist := math.Hypot(fx-a.opts.CenterX, fy-a.opts.CenterY)
	if !ok || dist < a.opts.Radius*0.25 {
		a.dragging = false
		return 0
	}

	if !a.dragging {
		// 只有从旋钮范围内开始的拖动才计数
		if dist > a.opts.Radius*1.3 {
			return 0
		}
		a.dragging = true
		a.lastAngle = angle
		return 0
	}

	d := utils.AngleDelta(a.lastAngle, angle)
	a.lastAngle = angle
	return a.drag.Add(d)
}

// SampleButton 实现 systems.InputAdapter
func (a *EbitenAdapter) SampleButton() (components.ButtonEvent, error) {
	pressed := utils.TouchCount() >= 2
	for _, k := range buttonKeys {
		if ebiten.IsKeyPressed(k) {
			pressed = true
		}
	}
	return a.press.Update(pressed), nil
}
