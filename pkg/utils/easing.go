package utils

import "math"

// Easing Functions (缓动函数)
//
// 所有函数接受进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 输入超出范围时先截断。

// Clamp01 将 t 限制在 [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// EaseOutCubic 三次方缓出：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	t = Clamp01(t)
	return 1 - math.Pow(1-t, 3)
}

// EaseInOutSine 正弦缓入缓出
// 公式：f(t) = -(cos(πt) - 1) / 2
func EaseInOutSine(t float64) float64 {
	t = Clamp01(t)
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// Lerp 线性插值，t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Breathe 周期性呼吸曲线，elapsed=0 时为 0，半个周期时为 1
//
// 参数:
//   - elapsed: 经过的秒数
//   - period: 周期（秒），<= 0 时恒为 0
func Breathe(elapsed, period float64) float64 {
	if period <= 0 || elapsed <= 0 {
		return 0
	}
	phase := math.Mod(elapsed, period) / period
	if phase > 0.5 {
		phase = 1 - phase
	}
	return EaseInOutSine(phase * 2)
}

// Pulse 一次性衰减脉冲：elapsed=0 时为 1，duration 之后为 0
func Pulse(elapsed, duration float64) float64 {
	if duration <= 0 || elapsed >= duration {
		return 0
	}
	if elapsed <= 0 {
		return 1
	}
	return 1 - EaseOutCubic(elapsed/duration)
}
