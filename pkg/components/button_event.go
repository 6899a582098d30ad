package components

// ButtonEvent 按键事件（已去抖）
type ButtonEvent int

const (
	ButtonNone ButtonEvent = iota
	// ButtonShortPress 短按：回退一级
	ButtonShortPress
	// ButtonLongPress 长按：完全重置
	ButtonLongPress
)

func (b ButtonEvent) String() string {
	switch b {
	case ButtonShortPress:
		return "short"
	case ButtonLongPress:
		return "long"
	default:
		return "none"
	}
}
