package systems

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

// manualCommand 按键触发的手动命令，在下一帧开始时原子地执行
type manualCommand int

const (
	commandNone manualCommand = iota
	commandStepBack
	commandFullReset
)

// DestructionSystem 破坏/重建状态机
//
// 拥有损伤值、当前阶段、计时器，以及裂纹场和粒子系统两个存储。
// 所有随机行为都使用构造时注入的 rng，相同种子和输入序列得到相同结果。
//
// 每帧顺序：
//  1. 执行上一帧排队的手动命令（抢占本帧的一次性效果）
//  2. 恢复阶段：递减损伤值
//  3. 其他阶段：空闲检测，然后按阈值表重新分类并持续开裂
//  4. 粒子运动
//  5. 生成快照
type DestructionSystem struct {
	cfg *config.DestructionConfig
	rng *rand.Rand

	cracks    *CrackSystem
	particles *ParticleSystem

	damage   float64
	category components.Category
	previous components.Category

	stateEnteredAt time.Time
	lastActivityAt time.Time
	lastTickAt     time.Time

	pendingRecovery bool
	pendingSince    time.Time
	pendingCommand  manualCommand

	cues []components.Cue
}

// NewDestructionSystem 创建处于 Pristine 阶段的状态机
//
// 参数:
//   - cfg: 已验证的配置
//   - rng: 随机源（测试中传入固定种子实现确定性重放）
//   - now: 初始时间，用于初始化所有计时器
func NewDestructionSystem(cfg *config.DestructionConfig, rng *rand.Rand, now time.Time) *DestructionSystem {
	return &DestructionSystem{
		cfg:            cfg,
		rng:            rng,
		cracks:         NewCrackSystem(cfg.Cracks),
		particles:      NewParticleSystem(cfg.Particles, cfg.Display),
		category:       components.CategoryPristine,
		previous:       components.CategoryPristine,
		stateEnteredAt: now,
		lastActivityAt: now,
		lastTickAt:     now,
	}
}

// Damage 当前损伤值 [0, 1]
func (ds *DestructionSystem) Damage() float64 {
	return ds.damage
}

// Category 当前阶段
func (ds *DestructionSystem) Category() components.Category {
	return ds.category
}

// PendingRecovery 是否已检测到空闲、等待进入重建
func (ds *DestructionSystem) PendingRecovery() bool {
	return ds.pendingRecovery
}

// CrackCount 当前裂纹数量
func (ds *DestructionSystem) CrackCount() int {
	return ds.cracks.Size()
}

// ParticleCount 当前粒子数量
func (ds *DestructionSystem) ParticleCount() int {
	return ds.particles.Size()
}

// ApplyRotation 应用一次旋转输入
//
// 非零输入都会刷新最后活动时间。重建/恢复阶段忽略正向输入，
// 反向输入可加速恢复；其他阶段正向输入增加损伤，
// 反向输入仅在 ReverseRecovers 开启时降低损伤。
func (ds *DestructionSystem) ApplyRotation(delta int, now time.Time) {
	if delta == 0 {
		return
	}
	ds.lastActivityAt = now
	ds.pendingRecovery = false

	if ds.category.IsRecovery() && delta > 0 {
		return
	}
	if delta < 0 && !ds.category.IsRecovery() && !ds.cfg.ReverseRecovers {
		return
	}

	ds.damage = clampUnit(ds.damage + float64(delta)*ds.cfg.IncreaseRate)
}

// ManualStepBack 请求回退一级，下一帧开始时执行
func (ds *DestructionSystem) ManualStepBack() {
	if ds.pendingCommand != commandFullReset {
		ds.pendingCommand = commandStepBack
	}
}

// ManualFullReset 请求完全重置，下一帧开始时执行
func (ds *DestructionSystem) ManualFullReset() {
	ds.pendingCommand = commandFullReset
}

// Update 一次完整的输入+结算帧
//
// 有待执行的手动命令时本帧的旋转被抢占（只刷新活动时间）。
// 本帧的按键事件排队到下一帧开始时执行。
func (ds *DestructionSystem) Update(now time.Time, delta int, button components.ButtonEvent) components.Snapshot {
	if ds.pendingCommand == commandNone {
		ds.ApplyRotation(delta, now)
	} else if delta != 0 {
		ds.lastActivityAt = now
	}

	snapshot := ds.Tick(now)

	switch button {
	case components.ButtonShortPress:
		ds.ManualStepBack()
		ds.lastActivityAt = now
	case components.ButtonLongPress:
		ds.ManualFullReset()
		ds.lastActivityAt = now
	}

	return snapshot
}

// Tick 推进一帧并返回帧末快照
func (ds *DestructionSystem) Tick(now time.Time) components.Snapshot {
	ds.cues = nil
	steps := ds.advanceClock(now)

	if ds.pendingCommand != commandNone {
		cmd := ds.pendingCommand
		ds.pendingCommand = commandNone
		switch cmd {
		case commandStepBack:
			ds.stepBack(now)
		case commandFullReset:
			ds.fullReset(now)
		}
		ds.particles.Update(steps)
		return ds.Snapshot(now)
	}

	if ds.category.IsRecovery() {
		ds.advanceRecovery(now, steps)
	} else {
		// 进入重建的那一帧只切换状态，下一帧开始递减
		ds.IdleCheck(now)
		if !ds.category.IsRecovery() {
			ds.classify(now)
			ds.fracture(steps)
		}
	}

	ds.particles.Update(steps)
	return ds.Snapshot(now)
}

// advanceClock 记录本帧时间并返回经过的标准帧数（受 MaxDeltaTime 限制）
func (ds *DestructionSystem) advanceClock(now time.Time) float64 {
	dt := now.Sub(ds.lastTickAt).Seconds()
	if dt <= 0 {
		return 0
	}
	ds.lastTickAt = now
	if dt > ds.cfg.MaxDeltaTime {
		dt = ds.cfg.MaxDeltaTime
	}
	return dt * ds.cfg.TickRate
}

// IdleCheck 空闲检测
//
// 空闲超时且有损伤时先标记 pendingRecovery；
// 之后的某一帧（时间严格推进）仍然空闲才真正进入 Rebuilding。
func (ds *DestructionSystem) IdleCheck(now time.Time) {
	if ds.category.IsRecovery() {
		ds.pendingRecovery = false
		return
	}

	idle := now.Sub(ds.lastActivityAt) > ds.cfg.IdleTimeout()
	if !idle || ds.damage <= 0 {
		ds.pendingRecovery = false
		return
	}

	if !ds.pendingRecovery {
		ds.pendingRecovery = true
		ds.pendingSince = now
		return
	}
	if !now.After(ds.pendingSince) {
		return
	}

	ds.pendingRecovery = false
	ds.enter(components.CategoryRebuilding, now)
	cx, cy := ds.cfg.Display.Center()
	ds.particles.SetMode(components.ParticleConverge, cx, cy)
	ds.emit(components.CueRebuild, ds.damage, ds.cfg.RecoveryCueDuration())
	log.Printf("[DestructionSystem] Idle for %v, rebuilding from damage=%.3f", now.Sub(ds.lastActivityAt), ds.damage)
}

// advanceRecovery 重建/恢复阶段：递减损伤、淡出裂纹、检查阶段出口
func (ds *DestructionSystem) advanceRecovery(now time.Time, steps float64) {
	if steps > 0 {
		ds.damage = clampUnit(ds.damage - ds.cfg.RecoveryRate*steps)
		ds.cracks.FadeAndPrune(math.Pow(ds.cfg.Cracks.FadeFactor, steps))
	}

	if ds.category == components.CategoryRebuilding && ds.damage <= ds.cfg.RebuildExit {
		ds.enter(components.CategoryRecovering, now)
		ds.emit(components.CueRecovery, ds.damage, ds.cfg.RecoveryCueDuration())
		log.Printf("[DestructionSystem] Rebuilding -> Recovering (damage=%.3f)", ds.damage)
	}

	if ds.category == components.CategoryRecovering && ds.damage <= 0 {
		ds.restore(now)
		ds.emit(components.CueRestored, 0.2, ds.cfg.RecoveryCueDuration())
		log.Printf("[DestructionSystem] Recovering -> Pristine")
	}
}

// classify 按阈值表重新分类，阶段变化时触发一次性效果
func (ds *DestructionSystem) classify(now time.Time) {
	next := ds.cfg.CategoryFor(ds.damage)
	if next == ds.category {
		return
	}

	prev := ds.category
	ds.enter(next, now)

	if next > prev {
		ds.fireOneShot(next)
	}
	if next == components.CategoryPristine {
		ds.cracks.Clear()
		ds.particles.Clear()
	}

	ds.emit(components.CueEnter, float64(next.Ordinal())/float64(components.CategorySilence), ds.cfg.CueDuration())
	log.Printf("[DestructionSystem] %s -> %s (damage=%.3f, cracks=%d, particles=%d)",
		prev, next, ds.damage, ds.cracks.Size(), ds.particles.Size())
}

// fireOneShot 进入更高阶段时的一次性效果：碎裂阶段爆发粒子，其余阶段播种裂纹
func (ds *DestructionSystem) fireOneShot(cat components.Category) {
	switch cat {
	case components.CategoryShatter:
		ds.particles.SpawnBurst(ds.cfg.Particles.BurstCount, ds.cfg.Particles.SpawnRegion, ds.rng)
	case components.CategoryHeavyShatter:
		ds.particles.SpawnBurst(ds.cfg.Particles.HeavyBurstCount, ds.cfg.Particles.SpawnRegion, ds.rng)
	default:
		k := ds.cfg.Cracks.SeedsPerTier * cat.Ordinal()
		for i := 0; i < k; i++ {
			ds.seedRandomCrack(cat)
		}
	}
}

// fracture 持续开裂：按经过时间缩放的概率新增/分叉裂纹，高破坏阶段补充漂浮粒子
func (ds *DestructionSystem) fracture(steps float64) {
	if steps <= 0 {
		return
	}

	if ds.category.IsCracking() {
		if ds.chance(ds.cfg.Cracks.SeedChance, steps) {
			ds.seedRandomCrack(ds.category)
		}
		if ds.chance(ds.cfg.Cracks.BranchChance, steps) {
			ds.cracks.BranchExisting(ds.category, ds.rng)
		}
	}

	if ds.category.IsDrifting() && ds.chance(ds.cfg.Particles.DriftChance, steps) {
		ds.particles.SpawnBurst(1, ds.cfg.Particles.SpawnRegion, ds.rng)
	}
}

// seedRandomCrack 在圆盘内随机位置、随机方向播种一条主裂纹
func (ds *DestructionSystem) seedRandomCrack(tier components.Category) {
	if ds.cracks.IsFull() {
		return
	}
	cx, cy := ds.cfg.Display.Center()
	r := math.Sqrt(ds.rng.Float64()) * ds.cfg.Cracks.OriginSpread * ds.cfg.Display.Radius
	pos := ds.rng.Float64() * 2 * math.Pi
	angle := ds.rng.Float64() * 2 * math.Pi
	ds.cracks.Seed(cx+r*math.Cos(pos), cy+r*math.Sin(pos), angle, 0, tier, ds.rng)
}

// chance 以每标准帧概率 p 掷骰，按经过的帧数缩放
func (ds *DestructionSystem) chance(p, steps float64) bool {
	if p <= 0 || steps <= 0 {
		return false
	}
	scaled := 1 - math.Pow(1-p, steps)
	return ds.rng.Float64() < scaled
}

// stepBack 回退一级
//
// 损伤值设为目标阶段下界加余量，不会立刻重新触发刚离开的阶段；
// 高于目标阶段生成的裂纹被移除，低于 Shatter 时清空粒子。
func (ds *DestructionSystem) stepBack(now time.Time) {
	var dest components.Category
	switch ds.category {
	case components.CategoryPristine:
		return
	case components.CategoryRebuilding:
		dest = components.CategoryRecovering
		ds.damage = math.Min(ds.damage, ds.cfg.RebuildExit)
	case components.CategoryRecovering:
		dest = components.CategoryPristine
	default:
		dest = ds.category - 1
	}

	if dest == components.CategoryPristine {
		ds.restore(now)
		ds.emit(components.CueStepBack, 0.4, ds.cfg.CueDuration())
		log.Printf("[DestructionSystem] Step back -> Pristine")
		return
	}

	if !dest.IsRecovery() {
		ds.damage = clampUnit(ds.cfg.LowerBound(dest) + ds.cfg.StepBackMargin)
		ds.cracks.PruneAbove(dest)
		if dest < components.CategoryShatter {
			ds.particles.Clear()
		}
	}

	ds.enter(dest, now)
	ds.lastActivityAt = now
	ds.pendingRecovery = false
	ds.emit(components.CueStepBack, 0.4, ds.cfg.CueDuration())
	log.Printf("[DestructionSystem] Step back -> %s (damage=%.3f)", dest, ds.damage)
}

// fullReset 完全重置到 Pristine
func (ds *DestructionSystem) fullReset(now time.Time) {
	ds.restore(now)
	ds.emit(components.CueFullReset, 1, ds.cfg.RecoveryCueDuration())
	log.Printf("[DestructionSystem] Full reset")
}

// restore 回到 Pristine：清空两个存储并重置计时器
func (ds *DestructionSystem) restore(now time.Time) {
	ds.damage = 0
	ds.enter(components.CategoryPristine, now)
	ds.cracks.Clear()
	ds.particles.Clear()
	ds.lastActivityAt = now
	ds.pendingRecovery = false
}

// enter 切换阶段并记录进入时间
func (ds *DestructionSystem) enter(cat components.Category, now time.Time) {
	ds.previous = ds.category
	ds.category = cat
	ds.stateEnteredAt = now
}

// emit 记录一个反馈事件（帧末随快照交给分发器）
func (ds *DestructionSystem) emit(kind components.CueKind, intensity float64, duration time.Duration) {
	ds.cues = append(ds.cues, components.Cue{
		Kind:      kind,
		Category:  ds.category,
		Intensity: clampUnit(intensity),
		Duration:  duration,
	})
}

// Snapshot 生成只读快照（切片均为拷贝）
func (ds *DestructionSystem) Snapshot(now time.Time) components.Snapshot {
	return components.Snapshot{
		Category:     ds.category,
		Previous:     ds.previous,
		Damage:       ds.damage,
		Cracks:       ds.cracks.Cracks(),
		Particles:    ds.particles.Particles(),
		StateElapsed: now.Sub(ds.stateEnteredAt),
		IdleFor:      now.Sub(ds.lastActivityAt),
		Cues:         ds.cues,
	}
}

// clampUnit 将值限制在 [0, 1]
func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
