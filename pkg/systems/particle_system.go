package systems

import (
	"math"
	"math/rand"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

// ParticleSystem manages all shard particles.
// It handles burst spawning, updating their properties each tick
// (position, velocity, alpha), and dropping particles once they fade
// out or reach their convergence target.
//
// Particles move in one of two modes:
//  1. Disperse: velocity integration with gravity, drag and alpha decay
//  2. Converge: velocity is re-aimed at a target centre every tick (重建阶段)
//
// The store is bounded: spawning past Capacity is a silent no-op.
type ParticleSystem struct {
	cfg       config.ParticleConfig
	display   config.DisplayConfig
	particles []components.ParticleComponent

	mode             components.ParticleMode
	targetX, targetY float64
}

// NewParticleSystem creates a new ParticleSystem instance.
func NewParticleSystem(cfg config.ParticleConfig, display config.DisplayConfig) *ParticleSystem {
	cx, cy := display.Center()
	return &ParticleSystem{
		cfg:       cfg,
		display:   display,
		particles: make([]components.ParticleComponent, 0, cfg.Capacity),
		mode:      components.ParticleDisperse,
		targetX:   cx,
		targetY:   cy,
	}
}

// Size 当前粒子数量
func (ps *ParticleSystem) Size() int {
	return len(ps.particles)
}

// Capacity 粒子上限
func (ps *ParticleSystem) Capacity() int {
	return ps.cfg.Capacity
}

// Mode 当前运动模式
func (ps *ParticleSystem) Mode() components.ParticleMode {
	return ps.mode
}

// Particles 返回所有粒子的拷贝
func (ps *ParticleSystem) Particles() []components.ParticleComponent {
	out := make([]components.ParticleComponent, len(ps.particles))
	copy(out, ps.particles)
	return out
}

// SpawnBurst 在指定区域生成最多 count 个粒子
//
// 参数:
//   - count: 期望数量（受容量限制）
//   - region: 生成区域（圆环或整个画布）
//   - rng: 随机源
//
// 返回:
//   - int: 实际生成数量
func (ps *ParticleSystem) SpawnBurst(count int, region config.SpawnRegion, rng *rand.Rand) int {
	spawned := 0
	for i := 0; i < count; i++ {
		if len(ps.particles) >= ps.cfg.Capacity {
			break
		}

		x, y := ps.spawnPosition(region, rng)

		// 随机方向 + 随机速度
		theta := rng.Float64() * 2 * math.Pi
		speed := ps.cfg.Speed.Random(rng)

		ps.particles = append(ps.particles, components.ParticleComponent{
			X:         x,
			Y:         y,
			VelocityX: speed * math.Cos(theta),
			VelocityY: speed * math.Sin(theta),
			Alpha:     1,
			Mode:      ps.mode,
		})
		spawned++
	}
	return spawned
}

// spawnPosition 按区域模式取生成位置
func (ps *ParticleSystem) spawnPosition(region config.SpawnRegion, rng *rand.Rand) (float64, float64) {
	if region == config.SpawnCanvas {
		return rng.Float64() * ps.display.Size, rng.Float64() * ps.display.Size
	}

	// 圆环内按面积均匀分布：半径使用 sqrt 随机，角度均匀
	cx, cy := ps.display.Center()
	inner := ps.cfg.RingInner * ps.display.Radius
	outer := ps.cfg.RingOuter * ps.display.Radius
	r := math.Sqrt(inner*inner + rng.Float64()*(outer*outer-inner*inner))
	ang := rng.Float64() * 2 * math.Pi
	return cx + r*math.Cos(ang), cy + r*math.Sin(ang)
}

// SetMode 切换所有粒子（以及之后生成的粒子）的运动模式
// 聚合模式下 (tx, ty) 是目标中心
func (ps *ParticleSystem) SetMode(mode components.ParticleMode, tx, ty float64) {
	ps.mode = mode
	ps.targetX = tx
	ps.targetY = ty
	for i := range ps.particles {
		ps.particles[i].Mode = mode
	}
}

// Update 推进所有粒子 steps 个标准帧
// steps 为 0 时状态不变
func (ps *ParticleSystem) Update(steps float64) {
	if steps <= 0 || len(ps.particles) == 0 {
		return
	}

	drag := math.Pow(ps.cfg.Drag, steps)
	fade := math.Pow(ps.cfg.AlphaDecay, steps)

	kept := ps.particles[:0]
	for _, p := range ps.particles {
		var alive bool
		if p.Mode == components.ParticleConverge {
			alive = ps.converge(&p, steps)
		} else {
			alive = ps.disperse(&p, steps, drag, fade)
		}
		if alive {
			kept = append(kept, p)
		}
	}
	ps.particles = kept
}

// disperse 飞散模式：位置积分、重力、阻尼、透明度衰减
func (ps *ParticleSystem) disperse(p *components.ParticleComponent, steps, drag, fade float64) bool {
	p.X += p.VelocityX * steps
	p.Y += p.VelocityY * steps
	p.VelocityY += ps.cfg.Gravity * steps
	p.VelocityX *= drag
	p.VelocityY *= drag

	p.Alpha *= fade
	if p.Alpha < 0 {
		p.Alpha = 0
	}
	return p.Alpha >= ps.cfg.Epsilon
}

// converge 聚合模式：速度重新指向目标（带阻尼），进入吸附距离后移除
//
// 一次推进多帧时拆成不超过 1 帧的子步，每个子步后检查吸附。
func (ps *ParticleSystem) converge(p *components.ParticleComponent, steps float64) bool {
	n := int(math.Ceil(steps))
	h := steps / float64(n)
	damping := math.Pow(ps.cfg.ConvergeDamping, h)

	for i := 0; i < n; i++ {
		dx := ps.targetX - p.X
		dy := ps.targetY - p.Y
		if math.Hypot(dx, dy) <= ps.cfg.ConvergeSnap {
			return false
		}
		p.VelocityX = p.VelocityX*damping + dx*ps.cfg.ConvergeGain*(1-damping)
		p.VelocityY = p.VelocityY*damping + dy*ps.cfg.ConvergeGain*(1-damping)
		p.X += p.VelocityX * h
		p.Y += p.VelocityY * h
	}

	return math.Hypot(ps.targetX-p.X, ps.targetY-p.Y) > ps.cfg.ConvergeSnap
}

// Clear 移除所有粒子并恢复飞散模式
func (ps *ParticleSystem) Clear() {
	ps.particles = ps.particles[:0]
	ps.mode = components.ParticleDisperse
}
