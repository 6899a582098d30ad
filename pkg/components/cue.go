package components

import "time"

// CueKind 反馈事件类型
type CueKind int

const (
	// CueEnter 进入新的破坏阶段（Category 字段给出目标阶段）
	CueEnter CueKind = iota
	// CueRebuild 空闲超时，开始重建
	CueRebuild
	// CueRecovery 重建过半，进入恢复
	CueRecovery
	// CueRestored 恢复完成，回到 Pristine
	CueRestored
	// CueStepBack 手动回退一级
	CueStepBack
	// CueFullReset 手动完全重置
	CueFullReset
)

var cueKindNames = [...]string{
	CueEnter:     "Enter",
	CueRebuild:   "Rebuild",
	CueRecovery:  "Recovery",
	CueRestored:  "Restored",
	CueStepBack:  "StepBack",
	CueFullReset: "FullReset",
}

func (k CueKind) String() string {
	if k < 0 || int(k) >= len(cueKindNames) {
		return "Unknown"
	}
	return cueKindNames[k]
}

// Cue 抽象反馈事件
//
// 核心只负责发出；具体声音/震动映射由 FeedbackDispatcher 决定。
// Intensity 和 Duration 只是提示值。
type Cue struct {
	Kind      CueKind
	Category  Category      // 事件发生后的阶段
	Intensity float64       // 0-1
	Duration  time.Duration // 建议持续时间
}

// String returns e.g. "Enter(Medium)".
func (c Cue) String() string {
	return c.Kind.String() + "(" + c.Category.String() + ")"
}
