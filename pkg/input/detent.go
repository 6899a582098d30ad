// Package input 把 ebiten 的鼠标、键盘和触摸输入转换为旋钮增量和按键事件
package input

import (
	"math"

	"github.com/decker502/shatterdial/pkg/components"
)

// DetentDecoder 把连续量（角度、滚轮偏移）量化为整数格数
// 不足一格的余量保留到下次
type DetentDecoder struct {
	step float64
	acc  float64
}

// NewDetentDecoder 创建量化器，step 为一格对应的量
func NewDetentDecoder(step float64) *DetentDecoder {
	if step <= 0 {
		step = 1
	}
	return &DetentDecoder{step: step}
}

// Add 累加 amount 并返回新产生的整格数（带符号）
func (d *DetentDecoder) Add(amount float64) int {
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	d.acc += amount
	detents := math.Trunc(d.acc / d.step)
	d.acc -= detents * d.step
	return int(detents)
}

// Reset 丢弃余量
func (d *DetentDecoder) Reset() {
	d.acc = 0
}

// PressClassifier 按住时长分类：松开时不足 longPress 帧为短按，
// 按住达到 longPress 帧立即触发长按（松开时不再触发短按）
type PressClassifier struct {
	longPress int
	held      int
	fired     bool
}

// NewPressClassifier 创建分类器，longPress 为长按阈值（帧）
func NewPressClassifier(longPress int) *PressClassifier {
	if longPress < 1 {
		longPress = 1
	}
	return &PressClassifier{longPress: longPress}
}

// Update 每帧调用一次，传入按键当前是否按下
func (p *PressClassifier) Update(pressed bool) components.ButtonEvent {
	if pressed {
		p.held++
		if p.held >= p.longPress && !p.fired {
			p.fired = true
			return components.ButtonLongPress
		}
		return components.ButtonNone
	}

	event := components.ButtonNone
	if p.held > 0 && !p.fired {
		event = components.ButtonShortPress
	}
	p.held = 0
	p.fired = false
	return event
}

// repeatFires 按键重复：第 1 帧触发，之后超过 delay 帧每 interval 帧触发一次
func repeatFires(duration, delay, interval int) bool {
	if duration == 1 {
		return true
	}
	if duration <= delay || interval <= 0 {
		return false
	}
	return (duration-delay)%interval == 0
}
