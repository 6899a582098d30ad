// Package tui 终端前端：tcell 屏幕渲染和键盘输入
package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/decker502/shatterdial/pkg/components"
)

// FastDetents Shift+方向键（H/L）一次转动的格数
const FastDetents = 5

// Input 实现 systems.InputAdapter
//
// 事件在主循环里通过 HandleEvent 喂入，两次采样之间累积。
// 同一帧内长按优先于短按。
type Input struct {
	rotation int
	button   components.ButtonEvent
	resized  bool
}

// NewInput 创建终端输入适配器
func NewInput() *Input {
	return &Input{}
}

// HandleEvent 处理一个 tcell 事件，返回 false 表示请求退出
func (in *Input) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return in.HandleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		in.resized = true
	}
	return true
}

// HandleKey 按键映射
//
//	←/h 反向一格, →/l 正向一格, H/L 五格
//	空格/回车 短按（回退一级）, r/R 长按（完全重置）
//	q/Esc/Ctrl+C 退出
func (in *Input) HandleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		in.rotation--
	case tcell.KeyRight:
		in.rotation++
	case tcell.KeyEnter:
		in.press(components.ButtonShortPress)
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'h':
			in.rotation--
		case 'l':
			in.rotation++
		case 'H':
			in.rotation -= FastDetents
		case 'L':
			in.rotation += FastDetents
		case ' ':
			in.press(components.ButtonShortPress)
		case 'r', 'R':
			in.press(components.ButtonLongPress)
		}
	}
	return true
}

func (in *Input) press(b components.ButtonEvent) {
	if b > in.button {
		in.button = b
	}
}

// SampleRotation 返回并清空累积的旋转格数
func (in *Input) SampleRotation() (int, error) {
	d := in.rotation
	in.rotation = 0
	return d, nil
}

// SampleButton 返回并清空本帧的按键事件
func (in *Input) SampleButton() (components.ButtonEvent, error) {
	b := in.button
	in.button = components.ButtonNone
	return b, nil
}

// Resized 终端尺寸是否变化过（读取后清除）
func (in *Input) Resized() bool {
	r := in.resized
	in.resized = false
	return r
}
