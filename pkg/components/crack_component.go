package components

import "math"

// CrackComponent 一条分形裂纹线段
//
// 位置在创建后不可变，终点由 (起点, 角度, 长度) 推导，不单独存储。
// Alpha 仅在重建阶段淡出时变化。
type CrackComponent struct {
	X, Y   float64 // 起点（画布坐标，像素）
	Angle  float64 // 方向（弧度，0 = 向右，顺时针为正，与屏幕坐标一致）
	Length float64 // 长度（像素）

	Generation int      // 分支深度，0 为主裂纹
	Tier       Category // 创建时所处的破坏阶段（手动回退时按此裁剪）
	Alpha      float64  // 透明度 0-1
}

// End 返回裂纹终点
func (c CrackComponent) End() (float64, float64) {
	return c.X + math.Cos(c.Angle)*c.Length, c.Y + math.Sin(c.Angle)*c.Length
}

// Midpoint 返回裂纹中点
func (c CrackComponent) Midpoint() (float64, float64) {
	return c.X + math.Cos(c.Angle)*c.Length/2, c.Y + math.Sin(c.Angle)*c.Length/2
}
