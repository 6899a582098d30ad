package systems

import (
	"math"
	"math/rand"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

// crackJob 待处理的裂纹生成任务
type crackJob struct {
	x, y       float64
	angle      float64
	generation int
}

// CrackSystem 分形裂纹场
//
// 有界存储：任何插入都先检查容量，满了就静默丢弃。
// 分支生成使用显式的 FIFO 工作队列而不是递归，
// 每个任务都重新检查容量和代数上限，总工作量与分支扇出无关。
type CrackSystem struct {
	cfg    config.CrackConfig
	cracks []components.CrackComponent
	queue  []crackJob // 复用的工作队列缓冲
}

// NewCrackSystem creates an empty crack field sized from the config.
func NewCrackSystem(cfg config.CrackConfig) *CrackSystem {
	return &CrackSystem{
		cfg:    cfg,
		cracks: make([]components.CrackComponent, 0, cfg.Capacity),
		queue:  make([]crackJob, 0, 16),
	}
}

// Size 当前裂纹数量
func (cs *CrackSystem) Size() int {
	return len(cs.cracks)
}

// Capacity 裂纹上限
func (cs *CrackSystem) Capacity() int {
	return cs.cfg.Capacity
}

// IsFull 是否已达上限
func (cs *CrackSystem) IsFull() bool {
	return len(cs.cracks) >= cs.cfg.Capacity
}

// Cracks 返回所有裂纹的拷贝
func (cs *CrackSystem) Cracks() []components.CrackComponent {
	out := make([]components.CrackComponent, len(cs.cracks))
	copy(out, cs.cracks)
	return out
}

// BranchProbability 返回第 generation 代裂纹产生分支的概率
// 达到最大代数的裂纹永远不会分支
func (cs *CrackSystem) BranchProbability(generation int) float64 {
	if generation >= cs.cfg.MaxGeneration {
		return 0
	}
	return cs.cfg.BranchBase * math.Pow(cs.cfg.BranchDecay, float64(generation))
}

// Seed 从 (x, y) 沿 angle 方向生成一条第 generation 代裂纹，并按概率继续分支
//
// 参数:
//   - x, y: 起点
//   - angle: 方向（弧度）
//   - generation: 代数，超过 MaxGeneration 时不生成
//   - tier: 生成时所处的破坏阶段
//   - rng: 随机源
//
// 返回:
//   - int: 本次实际新增的裂纹数量
func (cs *CrackSystem) Seed(x, y, angle float64, generation int, tier components.Category, rng *rand.Rand) int {
	if generation < 0 || generation > cs.cfg.MaxGeneration {
		return 0
	}

	added := 0
	cs.queue = append(cs.queue[:0], crackJob{x: x, y: y, angle: angle, generation: generation})

	for head := 0; head < len(cs.queue); head++ {
		if cs.IsFull() {
			break
		}
		job := cs.queue[head]

		// 能量随分支深度递减：长度除以 (代数+1)
		length := cs.cfg.Length.Random(rng) / float64(job.generation+1)
		crack := components.CrackComponent{
			X:          job.x,
			Y:          job.y,
			Angle:      job.angle,
			Length:     length,
			Generation: job.generation,
			Tier:       tier,
			Alpha:      1,
		}
		cs.cracks = append(cs.cracks, crack)
		added++

		next := job.generation + 1
		if next > cs.cfg.MaxGeneration {
			continue
		}
		if rng.Float64() >= cs.BranchProbability(job.generation) {
			continue
		}

		ex, ey := crack.End()
		children := 1 + rng.Intn(2)
		first := 1.0
		if rng.Intn(2) == 0 {
			first = -1.0
		}
		for i := 0; i < children; i++ {
			// 两支时分列两侧
			sign := first
			if i == 1 {
				sign = -first
			}
			spread := cs.cfg.BranchSpread.Random(rng)
			cs.queue = append(cs.queue, crackJob{
				x:          ex,
				y:          ey,
				angle:      job.angle + sign*spread,
				generation: next,
			})
		}
	}

	cs.queue = cs.queue[:0]
	return added
}

// BranchExisting 随机选一条未达最大代数的裂纹，从其中点长出一条子裂纹
//
// 场为空、已满或没有可分支的裂纹时不做任何事。
// 新裂纹记在当前阶段 tier 下。
//
// 返回:
//   - int: 新增裂纹数量
func (cs *CrackSystem) BranchExisting(tier components.Category, rng *rand.Rand) int {
	if len(cs.cracks) == 0 || cs.IsFull() {
		return 0
	}

	eligible := 0
	for i := range cs.cracks {
		if cs.cracks[i].Generation < cs.cfg.MaxGeneration {
			eligible++
		}
	}
	if eligible == 0 {
		return 0
	}

	pick := rng.Intn(eligible)
	var parent components.CrackComponent
	for i := range cs.cracks {
		if cs.cracks[i].Generation >= cs.cfg.MaxGeneration {
			continue
		}
		if pick == 0 {
			parent = cs.cracks[i]
			break
		}
		pick--
	}

	mx, my := parent.Midpoint()
	spread := cs.cfg.BranchSpread.Random(rng)
	if rng.Intn(2) == 0 {
		spread = -spread
	}
	return cs.Seed(mx, my, parent.Angle+spread, parent.Generation+1, tier, rng)
}

// FadeAndPrune 所有裂纹透明度乘以 decay，低于 FadeEpsilon 的移除
// 纯视觉效果，不影响损伤值
//
// 返回:
//   - int: 移除的数量
func (cs *CrackSystem) FadeAndPrune(decay float64) int {
	if decay < 0 {
		decay = 0
	}
	kept := cs.cracks[:0]
	for _, c := range cs.cracks {
		c.Alpha *= decay
		if c.Alpha >= cs.cfg.FadeEpsilon {
			kept = append(kept, c)
		}
	}
	removed := len(cs.cracks) - len(kept)
	cs.cracks = kept
	return removed
}

// PruneAbove 移除所有在高于 tier 的阶段生成的裂纹（手动回退使用）
func (cs *CrackSystem) PruneAbove(tier components.Category) int {
	kept := cs.cracks[:0]
	for _, c := range cs.cracks {
		if c.Tier <= tier {
			kept = append(kept, c)
		}
	}
	removed := len(cs.cracks) - len(kept)
	cs.cracks = kept
	return removed
}

// Clear 清空裂纹场
func (cs *CrackSystem) Clear() {
	cs.cracks = cs.cracks[:0]
}
