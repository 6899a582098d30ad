package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SpawnRegion 粒子爆发的生成区域
type SpawnRegion string

const (
	// SpawnRing 在表盘中心周围的圆环内生成
	SpawnRing SpawnRegion = "ring"
	// SpawnCanvas 在整个画布内生成
	SpawnCanvas SpawnRegion = "canvas"
)

// MaxStepsPerTick 单次更新最多推进的标准帧数（MaxDeltaTime*TickRate 的上限）
const MaxStepsPerTick = 30

// DestructionConfig 破坏/重建状态机的全部可调参数
//
// 所有"每帧"速率都以标准帧（TickRate，默认 60Hz）为单位，
// 实际帧间隔不同时按经过时间等比缩放。
//
// 配置文件位置: data/shatterdial.yaml
type DestructionConfig struct {
	// IncreaseRate 每单位正向旋转增加的损伤值
	IncreaseRate float64 `yaml:"increaseRate"`

	// RecoveryRate 重建/恢复阶段每标准帧减少的损伤值
	RecoveryRate float64 `yaml:"recoveryRate"`

	// IdleTimeoutMs 无输入多久后开始重建（毫秒）
	IdleTimeoutMs int `yaml:"idleTimeoutMs"`

	// ReverseRecovers 反向旋转是否在非恢复阶段直接降低损伤值
	ReverseRecovers bool `yaml:"reverseRecovers"`

	// StepBackMargin 手动回退后损伤值落在目标阶段下界之上的余量
	StepBackMargin float64 `yaml:"stepBackMargin"`

	// TickRate 标准帧率（Hz）
	TickRate float64 `yaml:"tickRate"`

	// MaxDeltaTime 单帧最大时间步长（秒），防止卡顿后一次跳过太多
	MaxDeltaTime float64 `yaml:"maxDeltaTime"`

	// Thresholds Tiny..Silence 七个阶段的损伤下界，严格递增
	Thresholds []float64 `yaml:"thresholds"`

	// RebuildExit Rebuilding 切换到 Recovering 的损伤值
	RebuildExit float64 `yaml:"rebuildExit"`

	Display   DisplayConfig  `yaml:"display"`
	Cracks    CrackConfig    `yaml:"cracks"`
	Particles ParticleConfig `yaml:"particles"`
	Feedback  FeedbackConfig `yaml:"feedback"`
}

// DisplayConfig 圆形屏幕的画布尺寸
type DisplayConfig struct {
	// Size 方形画布边长（像素），圆心在 (Size/2, Size/2)
	Size float64 `yaml:"size"`
	// Radius 可见圆盘半径（像素）
	Radius float64 `yaml:"radius"`
}

// Center 返回画布中心
func (d DisplayConfig) Center() (float64, float64) {
	return d.Size / 2, d.Size / 2
}

// CrackConfig 分形裂纹参数
type CrackConfig struct {
	// Capacity 裂纹总数上限 (CAP)
	Capacity int `yaml:"capacity"`
	// MaxGeneration 最大分支深度 (GEN_MAX)
	MaxGeneration int `yaml:"maxGeneration"`
	// Length 主裂纹长度范围（像素），第 g 代长度除以 g+1
	Length Range `yaml:"length"`
	// BranchSpread 分支相对父裂纹的偏转角范围（弧度）
	BranchSpread Range `yaml:"branchSpread"`
	// BranchBase 第 0 代的分支概率
	BranchBase float64 `yaml:"branchBase"`
	// BranchDecay 每深一代分支概率的衰减系数
	BranchDecay float64 `yaml:"branchDecay"`
	// SeedsPerTier 进入阶段时按阶段序号播种的主裂纹数量系数
	SeedsPerTier int `yaml:"seedsPerTier"`
	// SeedChance 开裂区间内每标准帧新增一条主裂纹的概率
	SeedChance float64 `yaml:"seedChance"`
	// BranchChance 开裂区间内每标准帧从已有裂纹分叉的概率
	BranchChance float64 `yaml:"branchChance"`
	// FadeFactor 重建阶段每标准帧的透明度衰减系数
	FadeFactor float64 `yaml:"fadeFactor"`
	// FadeEpsilon 透明度低于该值的裂纹被移除
	FadeEpsilon float64 `yaml:"fadeEpsilon"`
	// OriginSpread 裂纹起点分布半径（占圆盘半径的比例）
	OriginSpread float64 `yaml:"originSpread"`
}

// ParticleConfig 碎片粒子参数
type ParticleConfig struct {
	// Capacity 粒子总数上限 (CAP_P)
	Capacity int `yaml:"capacity"`
	// BurstCount 进入 Shatter 时的爆发数量
	BurstCount int `yaml:"burstCount"`
	// HeavyBurstCount 进入 HeavyShatter 时的爆发数量
	HeavyBurstCount int `yaml:"heavyBurstCount"`
	// SpawnRegion 生成区域: ring / canvas
	SpawnRegion SpawnRegion `yaml:"spawnRegion"`
	// RingInner/RingOuter 圆环内外半径（占圆盘半径的比例）
	RingInner float64 `yaml:"ringInner"`
	RingOuter float64 `yaml:"ringOuter"`
	// Speed 初速度范围（像素/标准帧）
	Speed Range `yaml:"speed"`
	// Gravity 每标准帧的竖直加速度（0 关闭）
	Gravity float64 `yaml:"gravity"`
	// Drag 每标准帧的速度保留系数
	Drag float64 `yaml:"drag"`
	// AlphaDecay 每标准帧的透明度保留系数
	AlphaDecay float64 `yaml:"alphaDecay"`
	// Epsilon 透明度低于该值的粒子被移除
	Epsilon float64 `yaml:"epsilon"`
	// DriftChance 高破坏阶段每标准帧补充一个粒子的概率
	DriftChance float64 `yaml:"driftChance"`
	// ConvergeGain 聚合模式下朝目标的速度增益
	ConvergeGain float64 `yaml:"convergeGain"`
	// ConvergeDamping 聚合模式下旧速度的保留比例
	ConvergeDamping float64 `yaml:"convergeDamping"`
	// ConvergeSnap 距目标小于该距离时粒子被移除（像素）
	ConvergeSnap float64 `yaml:"convergeSnap"`
}

// FeedbackConfig 反馈事件的提示参数
type FeedbackConfig struct {
	// CueDurationMs 普通阶段事件的建议时长
	CueDurationMs int `yaml:"cueDurationMs"`
	// RecoveryCueDurationMs 重建/恢复事件的建议时长
	RecoveryCueDurationMs int `yaml:"recoveryCueDurationMs"`
}

// DefaultDestructionConfig 返回默认配置
func DefaultDestructionConfig() *DestructionConfig {
	return &DestructionConfig{
		IncreaseRate:    0.015,
		RecoveryRate:    0.006,
		IdleTimeoutMs:   8000,
		ReverseRecovers: false,
		StepBackMargin:  0.01,
		TickRate:        60,
		MaxDeltaTime:    0.1,
		Thresholds:      append([]float64(nil), DefaultThresholds...),
		RebuildExit:     DefaultRebuildExit,
		Display: DisplayConfig{
			Size:   240,
			Radius: 116,
		},
		Cracks: CrackConfig{
			Capacity:      320,
			MaxGeneration: 4,
			Length:        Range{Min: 28, Max: 64},
			BranchSpread:  Range{Min: 0.3, Max: 0.9},
			BranchBase:    0.65,
			BranchDecay:   0.6,
			SeedsPerTier:  2,
			SeedChance:    0.05,
			BranchChance:  0.04,
			FadeFactor:    0.96,
			FadeEpsilon:   0.03,
			OriginSpread:  0.85,
		},
		Particles: ParticleConfig{
			Capacity:        240,
			BurstCount:      80,
			HeavyBurstCount: 120,
			SpawnRegion:     SpawnRing,
			RingInner:       0.55,
			RingOuter:       0.95,
			Speed:           Range{Min: 0.8, Max: 3.2},
			Gravity:         0.06,
			Drag:            0.985,
			AlphaDecay:      0.975,
			Epsilon:         0.02,
			DriftChance:     0.25,
			ConvergeGain:    0.12,
			ConvergeDamping: 0.8,
			ConvergeSnap:    3,
		},
		Feedback: FeedbackConfig{
			CueDurationMs:         120,
			RecoveryCueDurationMs: 600,
		},
	}
}

// LoadDestructionConfig 加载破坏配置
//
// 从指定路径加载 YAML 格式的配置文件，未出现的字段保留默认值。
//
// 参数:
//   - path: 配置文件路径（如 "data/shatterdial.yaml"）
//
// 返回:
//   - *DestructionConfig: 加载成功后的配置结构
//   - error: 加载失败时返回错误
func LoadDestructionConfig(path string) (*DestructionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read destruction config: %w", err)
	}
	return ParseDestructionConfig(data)
}

// ParseDestructionConfig 从 YAML 数据解析配置（叠加在默认值之上）并验证
func ParseDestructionConfig(data []byte) (*DestructionConfig, error) {
	config := DefaultDestructionConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse destruction config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid destruction config: %w", err)
	}

	return config, nil
}

// Validate 验证配置有效性
//
// 检查：
//   - 速率、容量、概率在合理范围内
//   - 阈值表正好 7 项且严格递增，位于 (0, 1]
//   - 衰减系数位于 (0, 1)
//
// 返回:
//   - error: 验证失败时返回错误，成功返回 nil
func (c *DestructionConfig) Validate() error {
	if c.IncreaseRate <= 0 {
		return fmt.Errorf("increaseRate must be > 0, got %v", c.IncreaseRate)
	}
	if c.RecoveryRate <= 0 || c.RecoveryRate > 1 {
		return fmt.Errorf("recoveryRate must be in (0, 1], got %v", c.RecoveryRate)
	}
	if c.IdleTimeoutMs <= 0 {
		return fmt.Errorf("idleTimeoutMs must be > 0, got %d", c.IdleTimeoutMs)
	}
	if c.StepBackMargin < 0 {
		return fmt.Errorf("stepBackMargin must be >= 0, got %v", c.StepBackMargin)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tickRate must be > 0, got %v", c.TickRate)
	}
	if c.MaxDeltaTime <= 0 {
		return fmt.Errorf("maxDeltaTime must be > 0, got %v", c.MaxDeltaTime)
	}
	if steps := c.MaxDeltaTime * c.TickRate; steps > MaxStepsPerTick {
		return fmt.Errorf("maxDeltaTime*tickRate must be <= %d, got %v", MaxStepsPerTick, steps)
	}

	if len(c.Thresholds) != len(DefaultThresholds) {
		return fmt.Errorf("thresholds must list %d values (Tiny..Silence), got %d",
			len(DefaultThresholds), len(c.Thresholds))
	}
	prev := 0.0
	for i, low := range c.Thresholds {
		if low <= prev || low > 1 {
			return fmt.Errorf("thresholds[%d]=%v must be increasing within (0, 1]", i, low)
		}
		if c.StepBackMargin > 0 && i > 0 && c.Thresholds[i-1]+c.StepBackMargin >= low {
			return fmt.Errorf("stepBackMargin %v does not fit between thresholds %v and %v",
				c.StepBackMargin, c.Thresholds[i-1], low)
		}
		prev = low
	}
	if c.RebuildExit <= 0 || c.RebuildExit >= 1 {
		return fmt.Errorf("rebuildExit must be in (0, 1), got %v", c.RebuildExit)
	}

	if c.Display.Size <= 0 || c.Display.Radius <= 0 || c.Display.Radius > c.Display.Size/2 {
		return fmt.Errorf("display radius %v must fit inside canvas size %v", c.Display.Radius, c.Display.Size)
	}

	if err := c.Cracks.validate(); err != nil {
		return fmt.Errorf("cracks: %w", err)
	}
	if err := c.Particles.validate(); err != nil {
		return fmt.Errorf("particles: %w", err)
	}

	return nil
}

func (c *CrackConfig) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be > 0, got %d", c.Capacity)
	}
	if c.MaxGeneration < 0 {
		return fmt.Errorf("maxGeneration must be >= 0, got %d", c.MaxGeneration)
	}
	if c.Length.Min <= 0 {
		return fmt.Errorf("length must be positive, got %s", c.Length)
	}
	if c.BranchSpread.Min < 0 {
		return fmt.Errorf("branchSpread must be >= 0, got %s", c.BranchSpread)
	}
	if !isProbability(c.BranchBase) || !isProbability(c.SeedChance) || !isProbability(c.BranchChance) {
		return fmt.Errorf("branchBase/seedChance/branchChance must be probabilities")
	}
	if c.BranchDecay < 0 || c.BranchDecay > 1 {
		return fmt.Errorf("branchDecay must be in [0, 1], got %v", c.BranchDecay)
	}
	if c.SeedsPerTier < 0 {
		return fmt.Errorf("seedsPerTier must be >= 0, got %d", c.SeedsPerTier)
	}
	if c.FadeFactor <= 0 || c.FadeFactor >= 1 {
		return fmt.Errorf("fadeFactor must be in (0, 1), got %v", c.FadeFactor)
	}
	if c.FadeEpsilon <= 0 || c.FadeEpsilon >= 1 {
		return fmt.Errorf("fadeEpsilon must be in (0, 1), got %v", c.FadeEpsilon)
	}
	if c.OriginSpread < 0 || c.OriginSpread > 1 {
		return fmt.Errorf("originSpread must be in [0, 1], got %v", c.OriginSpread)
	}
	return nil
}

func (c *ParticleConfig) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be > 0, got %d", c.Capacity)
	}
	if c.BurstCount < 0 || c.HeavyBurstCount < 0 {
		return fmt.Errorf("burst counts must be >= 0")
	}
	switch c.SpawnRegion {
	case SpawnRing, SpawnCanvas:
	default:
		return fmt.Errorf("spawnRegion must be %q or %q, got %q", SpawnRing, SpawnCanvas, c.SpawnRegion)
	}
	if c.RingInner < 0 || c.RingInner > c.RingOuter || c.RingOuter > 1 {
		return fmt.Errorf("ring radii must satisfy 0 <= ringInner <= ringOuter <= 1")
	}
	if c.Speed.Min < 0 {
		return fmt.Errorf("speed must be >= 0, got %s", c.Speed)
	}
	if c.Drag <= 0 || c.Drag > 1 {
		return fmt.Errorf("drag must be in (0, 1], got %v", c.Drag)
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		return fmt.Errorf("alphaDecay must be in (0, 1), got %v", c.AlphaDecay)
	}
	if c.Epsilon <= 0 || c.Epsilon >= 1 {
		return fmt.Errorf("epsilon must be in (0, 1), got %v", c.Epsilon)
	}
	if !isProbability(c.DriftChance) {
		return fmt.Errorf("driftChance must be a probability, got %v", c.DriftChance)
	}
	if c.ConvergeGain <= 0 || c.ConvergeGain > 1 {
		return fmt.Errorf("convergeGain must be in (0, 1], got %v", c.ConvergeGain)
	}
	if c.ConvergeDamping < 0 || c.ConvergeDamping >= 1 {
		return fmt.Errorf("convergeDamping must be in [0, 1), got %v", c.ConvergeDamping)
	}
	if c.ConvergeSnap <= 0 {
		return fmt.Errorf("convergeSnap must be > 0, got %v", c.ConvergeSnap)
	}
	return nil
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}

// IdleTimeout 返回空闲超时时长
func (c *DestructionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMs) * time.Millisecond
}

// TickDuration 返回一个标准帧的时长
func (c *DestructionConfig) TickDuration() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRate)
}

// CueDuration 返回普通事件的建议时长
func (c *DestructionConfig) CueDuration() time.Duration {
	return time.Duration(c.Feedback.CueDurationMs) * time.Millisecond
}

// RecoveryCueDuration 返回重建/恢复事件的建议时长
func (c *DestructionConfig) RecoveryCueDuration() time.Duration {
	return time.Duration(c.Feedback.RecoveryCueDurationMs) * time.Millisecond
}

// ResolveDestructionConfig 按优先级取得可用配置，永不失败
//
// 参数:
//   - path: 外部配置文件，非空时优先使用
//   - builtin: 内置 YAML 数据（如嵌入的 data/shatterdial.yaml），可为 nil
//
// 加载或验证失败时记录警告，退回下一级；最终退回 DefaultDestructionConfig。
func ResolveDestructionConfig(path string, builtin []byte) *DestructionConfig {
	if path != "" {
		cfg, err := LoadDestructionConfig(path)
		if err == nil {
			log.Printf("[Config] Loaded destruction config from %s", path)
			return cfg
		}
		log.Printf("[Config] Warning: %v (falling back to built-in config)", err)
	}
	if builtin != nil {
		cfg, err := ParseDestructionConfig(builtin)
		if err == nil {
			return cfg
		}
		log.Printf("[Config] Warning: built-in config rejected: %v", err)
	}
	return DefaultDestructionConfig()
}
