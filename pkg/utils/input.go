// Package utils 提供通用工具函数
package utils

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// GetPointerState 获取指针的完整状态
// 优先检测触摸（移动设备），其次鼠标左键
//
// 返回：是否按下、X坐标、Y坐标
func GetPointerState() (pressed bool, x, y int) {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y = ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	x, y = ebiten.CursorPosition()
	pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	return pressed, x, y
}

// TouchCount 当前活动的触摸点数量
func TouchCount() int {
	return len(ebiten.AppendTouchIDs(nil))
}

// PointerAngle 返回 (x, y) 相对圆心 (cx, cy) 的角度（弧度，屏幕坐标系顺时针为正）
// 点与圆心重合时 ok 为 false
func PointerAngle(cx, cy, x, y float64) (angle float64, ok bool) {
	dx, dy := x-cx, y-cy
	if dx == 0 && dy == 0 {
		return 0, false
	}
	return math.Atan2(dy, dx), true
}

// AngleDelta 返回从 from 到 to 的最短有向角度差，范围 (-π, π]
func AngleDelta(from, to float64) float64 {
	d := math.Mod(to-from, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
