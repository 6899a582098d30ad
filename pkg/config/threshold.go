package config

import "github.com/decker502/shatterdial/pkg/components"

// DefaultThresholds 标准阈值表：Tiny..Silence 各阶段的下界
//
//	Pristine[0,.05) Tiny[.05,.15) Small[.15,.30) Medium[.30,.50)
//	Large[.50,.65) Shatter[.65,.75) HeavyShatter[.75,.85) Silence[.85,1.0]
var DefaultThresholds = []float64{0.05, 0.15, 0.30, 0.50, 0.65, 0.75, 0.85}

const (
	// DefaultRebuildExit Rebuilding 在 damage <= 0.5 时进入 Recovering
	DefaultRebuildExit = 0.5
)

// CategoryFor 按半开区间 [low, high) 将损伤值映射到破坏阶段
// 边界值归入较高阶段；损伤值 1.0 属于 Silence
func (c *DestructionConfig) CategoryFor(damage float64) components.Category {
	for i := len(c.Thresholds) - 1; i >= 0; i-- {
		if damage >= c.Thresholds[i] {
			return components.Category(i + 1)
		}
	}
	return components.CategoryPristine
}

// LowerBound 返回阶段的损伤下界
// Pristine 和恢复阶段返回 0
func (c *DestructionConfig) LowerBound(cat components.Category) float64 {
	if cat.IsRecovery() || cat == components.CategoryPristine {
		return 0
	}
	idx := int(cat) - 1
	if idx < 0 || idx >= len(c.Thresholds) {
		return 0
	}
	return c.Thresholds[idx]
}
