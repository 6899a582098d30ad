package systems

import "github.com/decker502/shatterdial/pkg/components"

// InputAdapter 旋钮和按键输入（外部协作者）
//
// 采样失败时返回 error，本帧按零输入处理，不会阻塞或中断主循环。
type InputAdapter interface {
	// SampleRotation 返回自上次采样以来的带符号旋转增量
	SampleRotation() (int, error)
	// SampleButton 返回本帧的去抖按键事件
	SampleButton() (components.ButtonEvent, error)
}

// FeedbackDispatcher 声音/震动反馈（外部协作者）
// Emit 即发即忘，核心不等待也不检查结果
type FeedbackDispatcher interface {
	Emit(cue components.Cue)
}

// Renderer 只读渲染器（外部协作者），每帧结算后调用一次
type Renderer interface {
	Render(snapshot components.Snapshot)
}
