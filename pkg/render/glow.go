package render

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/utils"
)

// 外观参数（与状态机无关，只由快照计算）
const (
	breathePeriod   = 2.4 // 重建/恢复呼吸周期（秒）
	silencePeriod   = 5.0 // Silence 阶段缓慢呼吸（秒）
	enterFlashTime  = 0.35
	maxCrackWidth   = 2.6
	minCrackWidth   = 0.6
	crackWidthDecay = 0.45
)

var (
	backgroundColor = color.RGBA{R: 8, G: 8, B: 12, A: 255}
	crackColor      = color.RGBA{R: 235, G: 240, B: 255, A: 255}
	shardColor      = color.RGBA{R: 200, G: 220, B: 255, A: 255}
	hudColor        = color.RGBA{R: 180, G: 180, B: 190, A: 255}
)

// 各阶段的表面颜色：从冷蓝逐渐变暗，Silence 几乎全黑
var surfaceColors = map[components.Category]color.RGBA{
	components.CategoryPristine:     {R: 70, G: 120, B: 190, A: 255},
	components.CategoryTiny:         {R: 66, G: 112, B: 178, A: 255},
	components.CategorySmall:        {R: 60, G: 100, B: 160, A: 255},
	components.CategoryMedium:       {R: 54, G: 86, B: 138, A: 255},
	components.CategoryLarge:        {R: 48, G: 72, B: 116, A: 255},
	components.CategoryShatter:      {R: 40, G: 54, B: 86, A: 255},
	components.CategoryHeavyShatter: {R: 30, G: 38, B: 60, A: 255},
	components.CategorySilence:      {R: 14, G: 16, B: 24, A: 255},
	components.CategoryRebuilding:   {R: 40, G: 70, B: 110, A: 255},
	components.CategoryRecovering:   {R: 56, G: 98, B: 156, A: 255},
}

// SurfaceColor 阶段对应的表面颜色
func SurfaceColor(cat components.Category) color.RGBA {
	if c, ok := surfaceColors[cat]; ok {
		return c
	}
	return backgroundColor
}

// GlowIntensity 呼吸光晕强度 [0, 1]
// 只在重建/恢复和 Silence 阶段出现，纯粹由阶段停留时间决定
func GlowIntensity(s components.Snapshot) float64 {
	elapsed := s.StateElapsed.Seconds()
	switch {
	case s.Category.IsRecovery():
		return utils.Breathe(elapsed, breathePeriod)
	case s.Category == components.CategorySilence:
		return 0.4 * utils.Breathe(elapsed, silencePeriod)
	}
	return 0
}

// FlashIntensity 进入新阶段时的闪光 [0, 1]，随停留时间衰减
func FlashIntensity(s components.Snapshot) float64 {
	if s.Category == s.Previous {
		return 0
	}
	return utils.Pulse(s.StateElapsed.Seconds(), enterFlashTime) * severity(s.Category)
}

// severity 阶段严重程度 [0, 1]
func severity(cat components.Category) float64 {
	return float64(cat.Ordinal()) / float64(components.CategorySilence)
}

// CrackWidth 裂纹线宽，随代数减小
func CrackWidth(generation int) float32 {
	w := maxCrackWidth * math.Pow(1-crackWidthDecay, float64(generation))
	return float32(math.Max(w, minCrackWidth))
}

// withAlpha 按 [0, 1] 缩放颜色透明度（预乘 alpha）
func withAlpha(c color.RGBA, a float64) color.RGBA {
	a = utils.Clamp01(a)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

// mix 颜色线性插值
func mix(a, b color.RGBA, t float64) color.RGBA {
	t = utils.Clamp01(t)
	return color.RGBA{
		R: uint8(utils.Lerp(float64(a.R), float64(b.R), t)),
		G: uint8(utils.Lerp(float64(a.G), float64(b.G), t)),
		B: uint8(utils.Lerp(float64(a.B), float64(b.B), t)),
		A: uint8(utils.Lerp(float64(a.A), float64(b.A), t)),
	}
}

// hudLabel HUD 文本
func hudLabel(s components.Snapshot) string {
	return fmt.Sprintf("%s  %d%%", s.Category, int(math.Round(utils.Clamp01(s.Damage)*100)))
}

// idleHint 空闲时长提示，超过 2 秒才显示
func idleHint(s components.Snapshot) string {
	if s.IdleFor < 2*time.Second || s.Category.IsRecovery() || s.Damage == 0 {
		return ""
	}
	return fmt.Sprintf("idle %ds", int(s.IdleFor.Seconds()))
}
