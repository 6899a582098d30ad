package systems

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

const testFrame = 16 * time.Millisecond

var testStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// destructionHarness 驱动状态机的测试时钟
type destructionHarness struct {
	t   *testing.T
	cfg *config.DestructionConfig
	ds  *DestructionSystem
	now time.Time
}

func newDestructionHarness(t *testing.T, seed int64, mutate func(*config.DestructionConfig)) *destructionHarness {
	t.Helper()
	cfg := config.DefaultDestructionConfig()
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return &destructionHarness{
		t:   t,
		cfg: cfg,
		ds:  NewDestructionSystem(cfg, rand.New(rand.NewSource(seed)), testStart),
		now: testStart,
	}
}

// step 推进一帧并带上输入
func (h *destructionHarness) step(delta int, button components.ButtonEvent) components.Snapshot {
	h.now = h.now.Add(testFrame)
	return h.ds.Update(h.now, delta, button)
}

// idle 推进 n 个无输入帧，返回最后一帧快照和期间所有反馈
func (h *destructionHarness) idle(n int) (components.Snapshot, []components.Cue) {
	var snap components.Snapshot
	var cues []components.Cue
	for i := 0; i < n; i++ {
		snap = h.step(0, components.ButtonNone)
		cues = append(cues, snap.Cues...)
	}
	return snap, cues
}

// driveTo 用正向旋转把状态机推进到指定破坏阶段
func (h *destructionHarness) driveTo(cat components.Category) components.Snapshot {
	h.t.Helper()
	target := h.cfg.LowerBound(cat) + 0.02
	delta := int(target/h.cfg.IncreaseRate) + 1
	if cat == components.CategoryPristine {
		delta = 0
	}
	snap := h.step(delta, components.ButtonNone)
	if snap.Category != cat {
		h.t.Fatalf("driveTo(%s): landed in %s at damage %.3f", cat, snap.Category, snap.Damage)
	}
	return snap
}

func countCues(cues []components.Cue, kind components.CueKind) int {
	n := 0
	for _, c := range cues {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func TestDestructionSystem_InitialState(t *testing.T) {
	h := newDestructionHarness(t, 1, nil)
	snap := h.ds.Snapshot(testStart)

	if snap.Category != components.CategoryPristine || snap.Damage != 0 {
		t.Errorf("expected Pristine/0, got %s/%.3f", snap.Category, snap.Damage)
	}
	if len(snap.Cracks) != 0 || len(snap.Particles) != 0 {
		t.Errorf("expected empty stores, got %d cracks %d particles", len(snap.Cracks), len(snap.Particles))
	}
}

// TestDestructionSystem_RotationToMedium +20 格旋转从 Pristine 直接进入 Medium
func TestDestructionSystem_RotationToMedium(t *testing.T) {
	h := newDestructionHarness(t, 1, nil)

	snap := h.step(20, components.ButtonNone)

	if snap.Damage != 0.30 {
		t.Errorf("expected damage 0.30, got %v", snap.Damage)
	}
	if snap.Category != components.CategoryMedium {
		t.Fatalf("expected Medium, got %s", snap.Category)
	}
	if snap.Previous != components.CategoryPristine {
		t.Errorf("expected previous Pristine, got %s", snap.Previous)
	}
	if len(snap.Cues) != 1 {
		t.Fatalf("expected exactly one cue, got %v", snap.Cues)
	}
	if cue := snap.Cues[0]; cue.Kind != components.CueEnter || cue.Category != components.CategoryMedium {
		t.Errorf("expected Enter(Medium), got %s", cue)
	}
	if len(snap.Cracks) < h.cfg.Cracks.SeedsPerTier*components.CategoryMedium.Ordinal() {
		t.Errorf("expected at least %d seeded cracks, got %d",
			h.cfg.Cracks.SeedsPerTier*components.CategoryMedium.Ordinal(), len(snap.Cracks))
	}

	// 同样的损伤值不会再次触发
	_, cues := h.idle(30)
	if n := countCues(cues, components.CueEnter); n != 0 {
		t.Errorf("dwelling in Medium re-fired %d enter cues", n)
	}
}

// TestDestructionSystem_ThresholdBoundaries 测试边界值归入较高阶段且不抖动
func TestDestructionSystem_ThresholdBoundaries(t *testing.T) {
	for i, low := range config.DefaultThresholds {
		want := components.Category(i + 1)
		h := newDestructionHarness(t, 1, nil)
		h.ds.damage = low

		snap := h.step(0, components.ButtonNone)
		if snap.Category != want {
			t.Errorf("damage %.2f: expected %s, got %s", low, want, snap.Category)
		}
		for j := 0; j < 5; j++ {
			if again := h.step(0, components.ButtonNone); again.Category != want {
				t.Errorf("damage %.2f flickered to %s", low, again.Category)
			}
		}
	}
}

// TestDestructionSystem_ShatterBurstOnce 进入 Shatter 只爆发一次
func TestDestructionSystem_ShatterBurstOnce(t *testing.T) {
	h := newDestructionHarness(t, 3, nil)

	snap := h.driveTo(components.CategoryShatter)
	if len(snap.Particles) != h.cfg.Particles.BurstCount {
		t.Fatalf("expected burst of %d particles, got %d", h.cfg.Particles.BurstCount, len(snap.Particles))
	}

	prev := len(snap.Particles)
	for i := 0; i < 200; i++ {
		snap = h.step(0, components.ButtonNone)
		if snap.Category != components.CategoryShatter {
			t.Fatalf("left Shatter unexpectedly: %s", snap.Category)
		}
		if len(snap.Particles) > prev {
			t.Fatalf("tick %d: particles re-spawned while dwelling in Shatter (%d -> %d)", i, prev, len(snap.Particles))
		}
		prev = len(snap.Particles)
	}
	if prev != 0 {
		t.Errorf("expected burst to fade out completely, %d remain", prev)
	}
}

// TestDestructionSystem_HeavyShatterDrift 高破坏阶段持续补充漂浮粒子
func TestDestructionSystem_HeavyShatterDrift(t *testing.T) {
	h := newDestructionHarness(t, 4, nil)

	snap := h.driveTo(components.CategoryHeavyShatter)
	// 同一帧可能已经补充了一个漂浮粒子
	if n := len(snap.Particles); n < h.cfg.Particles.HeavyBurstCount || n > h.cfg.Particles.HeavyBurstCount+1 {
		t.Fatalf("expected heavy burst of %d, got %d", h.cfg.Particles.HeavyBurstCount, n)
	}

	// 等爆发粒子全部淡出后仍应有漂浮粒子
	snap, _ = h.idle(400)
	if snap.Category != components.CategoryHeavyShatter {
		t.Fatalf("expected to stay in HeavyShatter, got %s", snap.Category)
	}
	if len(snap.Particles) == 0 {
		t.Error("expected drifting particles in HeavyShatter")
	}
}

// TestDestructionSystem_ZeroElapsedTicks 零输入零时间的连续两帧状态完全一致
func TestDestructionSystem_ZeroElapsedTicks(t *testing.T) {
	h := newDestructionHarness(t, 5, nil)
	h.driveTo(components.CategoryHeavyShatter)
	h.idle(10)

	first := h.ds.Update(h.now, 0, components.ButtonNone)
	second := h.ds.Update(h.now, 0, components.ButtonNone)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("zero-elapsed ticks diverged:\nfirst:  %s %.4f %d cracks %d particles\nsecond: %s %.4f %d cracks %d particles",
			first.Category, first.Damage, len(first.Cracks), len(first.Particles),
			second.Category, second.Damage, len(second.Cracks), len(second.Particles))
	}
	if len(second.Cues) != 0 {
		t.Errorf("zero-elapsed tick emitted cues: %v", second.Cues)
	}
}

// TestDestructionSystem_IdleRecoveryFromSilence 从 Silence 空闲后确定地回到 Pristine
func TestDestructionSystem_IdleRecoveryFromSilence(t *testing.T) {
	h := newDestructionHarness(t, 6, nil)

	snap := h.step(100, components.ButtonNone)
	if snap.Damage != 1 || snap.Category != components.CategorySilence {
		t.Fatalf("expected Silence at damage 1, got %s at %.3f", snap.Category, snap.Damage)
	}

	// 超时之前保持 Silence
	idleFrames := int(h.cfg.IdleTimeout() / testFrame)
	snap, _ = h.idle(idleFrames - 1)
	if snap.Category != components.CategorySilence || h.ds.PendingRecovery() {
		t.Fatalf("left Silence before idle timeout: %s pending=%v", snap.Category, h.ds.PendingRecovery())
	}

	recoveryFrames := int(1/(h.cfg.RecoveryRate*h.cfg.TickRate*testFrame.Seconds())) + 10
	var seen []components.Category
	var cues []components.Cue
	for i := 0; i < 10+recoveryFrames; i++ {
		snap = h.step(0, components.ButtonNone)
		cues = append(cues, snap.Cues...)
		if len(seen) == 0 || seen[len(seen)-1] != snap.Category {
			seen = append(seen, snap.Category)
		}
		if snap.Category == components.CategoryPristine {
			break
		}
	}

	want := []components.Category{
		components.CategorySilence,
		components.CategoryRebuilding,
		components.CategoryRecovering,
		components.CategoryPristine,
	}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("expected path %v, got %v", want, seen)
	}
	if snap.Damage != 0 || len(snap.Cracks) != 0 || len(snap.Particles) != 0 {
		t.Errorf("expected clean Pristine, got damage %.3f, %d cracks, %d particles",
			snap.Damage, len(snap.Cracks), len(snap.Particles))
	}
	for _, kind := range []components.CueKind{components.CueRebuild, components.CueRecovery, components.CueRestored} {
		if n := countCues(cues, kind); n != 1 {
			t.Errorf("expected exactly one %s cue, got %d", kind, n)
		}
	}
}

// TestDestructionSystem_IdleNeedsTwoTicks 空闲检测先挂起，下一帧仍空闲才进入重建
func TestDestructionSystem_IdleNeedsTwoTicks(t *testing.T) {
	h := newDestructionHarness(t, 7, nil)
	h.driveTo(components.CategorySmall)

	h.now = h.now.Add(h.cfg.IdleTimeout() + time.Millisecond)
	snap := h.ds.Tick(h.now)
	if !h.ds.PendingRecovery() || snap.Category != components.CategorySmall {
		t.Fatalf("expected pending recovery in Small, got pending=%v %s", h.ds.PendingRecovery(), snap.Category)
	}

	// 同一时刻重复 tick 不推进
	if snap = h.ds.Tick(h.now); snap.Category != components.CategorySmall {
		t.Fatalf("zero-elapsed tick should not start rebuilding, got %s", snap.Category)
	}

	// 活动清除挂起
	h.now = h.now.Add(testFrame)
	snap = h.ds.Update(h.now, 1, components.ButtonNone)
	if h.ds.PendingRecovery() || snap.Category.IsRecovery() {
		t.Fatalf("activity should cancel pending recovery, got pending=%v %s", h.ds.PendingRecovery(), snap.Category)
	}

	h.now = h.now.Add(h.cfg.IdleTimeout() + time.Millisecond)
	h.ds.Tick(h.now)
	h.now = h.now.Add(testFrame)
	snap = h.ds.Tick(h.now)
	if snap.Category != components.CategoryRebuilding {
		t.Fatalf("expected Rebuilding, got %s", snap.Category)
	}
	if len(snap.Cues) != 1 || snap.Cues[0].Kind != components.CueRebuild {
		t.Errorf("expected one Rebuild cue, got %v", snap.Cues)
	}
	if snap.StateElapsed != 0 {
		t.Errorf("expected state timer reset, got %v", snap.StateElapsed)
	}
}

// TestDestructionSystem_NoRecoveryWithoutDamage Pristine 且无损伤时空闲不会进入重建
func TestDestructionSystem_NoRecoveryWithoutDamage(t *testing.T) {
	h := newDestructionHarness(t, 8, nil)
	h.now = h.now.Add(time.Minute)
	h.ds.Tick(h.now)
	h.now = h.now.Add(testFrame)
	snap := h.ds.Tick(h.now)

	if snap.Category != components.CategoryPristine || h.ds.PendingRecovery() {
		t.Errorf("expected idle Pristine, got %s pending=%v", snap.Category, h.ds.PendingRecovery())
	}
}

// TestDestructionSystem_RecoveryIgnoresForward 重建阶段忽略正向旋转，反向旋转加速恢复
func TestDestructionSystem_RecoveryIgnoresForward(t *testing.T) {
	h := newDestructionHarness(t, 9, nil)
	h.step(60, components.ButtonNone)
	h.idle(int(h.cfg.IdleTimeout()/testFrame) + 2)
	if h.ds.Category() != components.CategoryRebuilding {
		t.Fatalf("expected Rebuilding, got %s", h.ds.Category())
	}

	before := h.ds.Damage()
	snap := h.step(10, components.ButtonNone)
	if snap.Damage > before {
		t.Errorf("forward rotation raised damage during Rebuilding: %.3f -> %.3f", before, snap.Damage)
	}
	if snap.Category != components.CategoryRebuilding {
		t.Errorf("forward rotation should not leave Rebuilding, got %s", snap.Category)
	}

	before = snap.Damage
	snap = h.step(-10, components.ButtonNone)
	if snap.Damage >= before-10*h.cfg.IncreaseRate+1e-9 {
		t.Errorf("reverse rotation should speed up recovery: %.3f -> %.3f", before, snap.Damage)
	}
}

// TestDestructionSystem_ReversePolicy 反向旋转在非恢复阶段是否降低损伤由配置决定
func TestDestructionSystem_ReversePolicy(t *testing.T) {
	tests := []struct {
		name            string
		reverseRecovers bool
		wantDamage      float64
		wantCategory    components.Category
	}{
		{"reverse ignored", false, 0.50, components.CategoryLarge},
		{"reverse recovers", true, 0.35, components.CategoryMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newDestructionHarness(t, 10, func(c *config.DestructionConfig) {
				c.IncreaseRate = 0.05
				c.ReverseRecovers = tt.reverseRecovers
			})
			h.step(10, components.ButtonNone)
			snap := h.step(-3, components.ButtonNone)

			if diff := snap.Damage - tt.wantDamage; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected damage %.2f, got %.4f", tt.wantDamage, snap.Damage)
			}
			if snap.Category != tt.wantCategory {
				t.Errorf("expected %s, got %s", tt.wantCategory, snap.Category)
			}
			if snap.IdleFor != 0 {
				t.Errorf("reverse rotation should count as activity, idle=%v", snap.IdleFor)
			}
		})
	}
}

// TestDestructionSystem_ReverseToPristineClears 反向旋转回到 Pristine 时清空存储
func TestDestructionSystem_ReverseToPristineClears(t *testing.T) {
	h := newDestructionHarness(t, 11, func(c *config.DestructionConfig) {
		c.ReverseRecovers = true
	})
	h.driveTo(components.CategoryShatter)

	snap := h.step(-200, components.ButtonNone)
	if snap.Category != components.CategoryPristine || snap.Damage != 0 {
		t.Fatalf("expected Pristine at 0, got %s at %.3f", snap.Category, snap.Damage)
	}
	if len(snap.Cracks) != 0 || len(snap.Particles) != 0 {
		t.Errorf("expected empty stores, got %d cracks %d particles", len(snap.Cracks), len(snap.Particles))
	}
}

// TestDestructionSystem_FullResetFromAnyState 长按从任意状态一帧内回到 Pristine
func TestDestructionSystem_FullResetFromAnyState(t *testing.T) {
	states := append(components.DestructionCategories(), components.CategoryRebuilding, components.CategoryRecovering)

	for _, cat := range states {
		t.Run(cat.String(), func(t *testing.T) {
			h := newDestructionHarness(t, 12, nil)
			switch {
			case cat == components.CategoryRebuilding:
				h.step(100, components.ButtonNone)
				h.idle(int(h.cfg.IdleTimeout()/testFrame) + 2)
			case cat == components.CategoryRecovering:
				h.step(30, components.ButtonNone)
				h.idle(int(h.cfg.IdleTimeout()/testFrame) + 3)
			default:
				h.driveTo(cat)
			}
			if h.ds.Category() != cat {
				t.Fatalf("setup: expected %s, got %s", cat, h.ds.Category())
			}

			h.step(0, components.ButtonLongPress)
			snap := h.step(0, components.ButtonNone)

			if snap.Category != components.CategoryPristine || snap.Damage != 0 {
				t.Errorf("expected Pristine at 0, got %s at %.3f", snap.Category, snap.Damage)
			}
			if len(snap.Cracks) != 0 || len(snap.Particles) != 0 {
				t.Errorf("expected empty stores, got %d cracks %d particles", len(snap.Cracks), len(snap.Particles))
			}
			if countCues(snap.Cues, components.CueFullReset) != 1 {
				t.Errorf("expected one FullReset cue, got %v", snap.Cues)
			}
		})
	}
}

// TestDestructionSystem_CommandPreemptsRotation 排队的命令抢占下一帧的旋转和一次性效果
func TestDestructionSystem_CommandPreemptsRotation(t *testing.T) {
	h := newDestructionHarness(t, 13, nil)
	h.driveTo(components.CategorySmall)
	h.step(0, components.ButtonLongPress)

	snap := h.step(50, components.ButtonNone)
	if snap.Category != components.CategoryPristine || snap.Damage != 0 {
		t.Fatalf("expected reset to win over rotation, got %s at %.3f", snap.Category, snap.Damage)
	}
	if n := countCues(snap.Cues, components.CueEnter); n != 0 {
		t.Errorf("pre-empted tick fired %d enter cues", n)
	}
}

// TestDestructionSystem_StepBack 短按回退一级
func TestDestructionSystem_StepBack(t *testing.T) {
	tests := []struct {
		from components.Category
		want components.Category
	}{
		{components.CategoryTiny, components.CategoryPristine},
		{components.CategorySmall, components.CategoryTiny},
		{components.CategoryMedium, components.CategorySmall},
		{components.CategoryLarge, components.CategoryMedium},
		{components.CategoryShatter, components.CategoryLarge},
		{components.CategoryHeavyShatter, components.CategoryShatter},
		{components.CategorySilence, components.CategoryHeavyShatter},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			h := newDestructionHarness(t, 14, nil)
			h.driveTo(tt.from)

			h.step(0, components.ButtonShortPress)
			snap := h.step(0, components.ButtonNone)

			if snap.Category != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, snap.Category)
			}
			wantDamage := 0.0
			if tt.want != components.CategoryPristine {
				wantDamage = h.cfg.LowerBound(tt.want) + h.cfg.StepBackMargin
			}
			if diff := snap.Damage - wantDamage; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected damage %.3f, got %.3f", wantDamage, snap.Damage)
			}
			for _, c := range snap.Cracks {
				if c.Tier > tt.want {
					t.Errorf("crack from tier %s survived step back to %s", c.Tier, tt.want)
				}
			}
			if tt.want < components.CategoryShatter && len(snap.Particles) != 0 {
				t.Errorf("expected particles cleared below Shatter, got %d", len(snap.Particles))
			}
			if countCues(snap.Cues, components.CueStepBack) != 1 {
				t.Errorf("expected one StepBack cue, got %v", snap.Cues)
			}

			// 不会立刻重新进入刚离开的阶段
			snap, _ = h.idle(20)
			if snap.Category != tt.want {
				t.Errorf("re-triggered %s after step back", snap.Category)
			}
		})
	}
}

// TestDestructionSystem_StepBackRecovery 恢复阶段的回退
func TestDestructionSystem_StepBackRecovery(t *testing.T) {
	h := newDestructionHarness(t, 15, nil)
	h.step(100, components.ButtonNone)
	h.idle(int(h.cfg.IdleTimeout()/testFrame) + 2)
	if h.ds.Category() != components.CategoryRebuilding {
		t.Fatalf("expected Rebuilding, got %s", h.ds.Category())
	}

	h.step(0, components.ButtonShortPress)
	snap := h.step(0, components.ButtonNone)
	if snap.Category != components.CategoryRecovering {
		t.Fatalf("expected Recovering, got %s", snap.Category)
	}
	if snap.Damage > h.cfg.RebuildExit {
		t.Errorf("expected damage <= %.2f, got %.3f", h.cfg.RebuildExit, snap.Damage)
	}

	h.step(0, components.ButtonShortPress)
	snap = h.step(0, components.ButtonNone)
	if snap.Category != components.CategoryPristine || snap.Damage != 0 {
		t.Fatalf("expected Pristine at 0, got %s at %.3f", snap.Category, snap.Damage)
	}
	if len(snap.Cracks) != 0 || len(snap.Particles) != 0 {
		t.Errorf("expected empty stores, got %d cracks %d particles", len(snap.Cracks), len(snap.Particles))
	}

	// Pristine 下回退无效果
	h.step(0, components.ButtonShortPress)
	snap = h.step(0, components.ButtonNone)
	if snap.Category != components.CategoryPristine || len(snap.Cues) != 0 {
		t.Errorf("step back from Pristine should be a no-op, got %s %v", snap.Category, snap.Cues)
	}
}

// TestDestructionSystem_RandomInvariants 随机输入序列下的不变量
func TestDestructionSystem_RandomInvariants(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		h := newDestructionHarness(t, seed, func(c *config.DestructionConfig) {
			c.ReverseRecovers = seed%2 == 0
			c.Cracks.Capacity = 40
			c.Particles.Capacity = 90
			c.IdleTimeoutMs = 500
		})
		input := rand.New(rand.NewSource(seed + 100))

		for i := 0; i < 3000; i++ {
			delta := 0
			if input.Intn(4) == 0 {
				delta = input.Intn(21) - 8
			}
			button := components.ButtonNone
			switch input.Intn(200) {
			case 0:
				button = components.ButtonShortPress
			case 1:
				button = components.ButtonLongPress
			}
			// 偶尔长时间停顿或零间隔
			switch input.Intn(50) {
			case 0:
				h.now = h.now.Add(time.Second)
			case 1:
				h.now = h.now.Add(-testFrame)
			}

			snap := h.step(delta, button)

			if snap.Damage < 0 || snap.Damage > 1 {
				t.Fatalf("seed %d tick %d: damage %.4f out of range", seed, i, snap.Damage)
			}
			if !snap.Category.IsRecovery() {
				if want := h.cfg.CategoryFor(snap.Damage); want != snap.Category {
					t.Fatalf("seed %d tick %d: category %s does not match damage %.4f (%s)",
						seed, i, snap.Category, snap.Damage, want)
				}
			}
			if len(snap.Cracks) > h.cfg.Cracks.Capacity {
				t.Fatalf("seed %d tick %d: %d cracks exceed capacity", seed, i, len(snap.Cracks))
			}
			if len(snap.Particles) > h.cfg.Particles.Capacity {
				t.Fatalf("seed %d tick %d: %d particles exceed capacity", seed, i, len(snap.Particles))
			}
			for _, c := range snap.Cracks {
				if c.Generation > h.cfg.Cracks.MaxGeneration {
					t.Fatalf("seed %d tick %d: crack generation %d exceeds max", seed, i, c.Generation)
				}
			}
			for _, p := range snap.Particles {
				if p.Alpha < 0 {
					t.Fatalf("seed %d tick %d: negative particle alpha", seed, i)
				}
			}
		}
	}
}

// TestDestructionSystem_DeterministicReplay 相同种子和输入得到相同快照序列
func TestDestructionSystem_DeterministicReplay(t *testing.T) {
	run := func() []components.Snapshot {
		h := newDestructionHarness(t, 77, nil)
		var out []components.Snapshot
		for i := 0; i < 300; i++ {
			delta := 0
			if i%7 == 0 {
				delta = 3
			}
			out = append(out, h.step(delta, components.ButtonNone))
		}
		return out
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs with the same seed and input diverged")
	}
}
