package components

// ParticleMode 粒子运动模式
type ParticleMode int

const (
	// ParticleDisperse 向外飞散：速度积分 + 重力 + 阻尼，透明度衰减
	ParticleDisperse ParticleMode = iota
	// ParticleConverge 向目标中心聚合（重建阶段），到达目标后移除
	ParticleConverge
)

// String returns the mode name.
func (m ParticleMode) String() string {
	if m == ParticleConverge {
		return "converge"
	}
	return "disperse"
}

// ParticleComponent represents a single shard particle.
// It stores all the runtime state for an individual particle; the
// ParticleSystem updates it every tick and drops it once it fades out
// or reaches its convergence target.
//
// This is a pure data component - it contains no behavior.
type ParticleComponent struct {
	// Position (画布坐标, 像素)
	X, Y float64

	// Velocity (速度, 像素/标准帧)
	VelocityX float64
	VelocityY float64

	// Transparency (透明度, 0-1)
	Alpha float64

	Mode ParticleMode
}
