// Package replay 确定性回放：按脚本驱动表盘并检查每一步的状态
//
// 脚本使用虚拟时钟和固定随机种子，同一脚本的结果逐帧一致，
// 可以作为回归测试，也可以复现现场问题。
package replay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

// DefaultFrameMs 默认帧间隔（约 60Hz）
const DefaultFrameMs = 16

// Script 回放脚本
//
// 示例:
//
//	name: basic
//	seed: 7
//	config:
//	  idleTimeoutMs: 1000
//	steps:
//	  - rotate: 20
//	    expect: {category: Medium, damage: "[0.299 0.301]", cue: Enter(Medium)}
//	  - button: long
//	    wait: 1
//	    expect: {category: Pristine, cracks: 0, particles: 0}
type Script struct {
	Name    string    `yaml:"name"`
	Seed    int64     `yaml:"seed"`
	FrameMs int       `yaml:"frameMs"`
	Config  yaml.Node `yaml:"config"` // 叠加在基础配置上的覆盖项
	Steps   []Step    `yaml:"steps"`
}

// Step 一个脚本步骤
//
// 先执行一帧带输入的帧，再执行 Wait 帧无输入的帧；整体重复 Repeat 次。
// Expect 在步骤结束后检查。
type Step struct {
	Label  string       `yaml:"label"`
	Rotate int          `yaml:"rotate"`
	Button string       `yaml:"button"` // "", short, long
	Wait   int          `yaml:"wait"`
	Repeat int          `yaml:"repeat"`
	Expect *Expectation `yaml:"expect"`
}

// Expectation 步骤结束时的断言，未填写的字段不检查
type Expectation struct {
	Category  string        `yaml:"category"`
	Damage    *config.Range `yaml:"damage"`
	Cracks    *config.Range `yaml:"cracks"`
	Particles *config.Range `yaml:"particles"`
	Cue       string        `yaml:"cue"`   // 本步骤内必须出现的事件，如 "Enter(Medium)"
	NoCue     string        `yaml:"noCue"` // 本步骤内不能出现的事件
}

// Load 从文件加载脚本
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse 解析并验证脚本
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse replay script: %w", err)
	}
	if s.FrameMs == 0 {
		s.FrameMs = DefaultFrameMs
	}
	if s.FrameMs < 0 {
		return nil, fmt.Errorf("frameMs must be > 0, got %d", s.FrameMs)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("replay script has no steps")
	}
	for i, step := range s.Steps {
		if _, err := parseButton(step.Button); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if step.Wait < 0 || step.Repeat < 0 {
			return nil, fmt.Errorf("step %d: wait and repeat must be >= 0", i)
		}
		if step.Expect != nil && step.Expect.Category != "" {
			if _, ok := parseCategory(step.Expect.Category); !ok {
				return nil, fmt.Errorf("step %d: unknown category %q", i, step.Expect.Category)
			}
		}
	}
	return &s, nil
}

// ApplyConfig 把脚本里的覆盖项叠加到 base 的副本上并验证
func (s *Script) ApplyConfig(base *config.DestructionConfig) (*config.DestructionConfig, error) {
	cfg := *base
	cfg.Thresholds = append([]float64(nil), base.Thresholds...)
	if s.Config.Kind != 0 {
		if err := s.Config.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to apply config overrides: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config overrides: %w", err)
	}
	return &cfg, nil
}

func parseButton(s string) (components.ButtonEvent, error) {
	switch s {
	case "", "none":
		return components.ButtonNone, nil
	case "short":
		return components.ButtonShortPress, nil
	case "long":
		return components.ButtonLongPress, nil
	}
	return components.ButtonNone, fmt.Errorf("unknown button %q (want short or long)", s)
}

func parseCategory(name string) (components.Category, bool) {
	for c := components.CategoryPristine; c <= components.CategoryRecovering; c++ {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}
