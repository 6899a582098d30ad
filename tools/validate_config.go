// validate_config 检查表盘配置文件和回放脚本
//
// 用法:
//
//	go run tools/validate_config.go [data/shatterdial.yaml] [data/replays]
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decker502/shatterdial/pkg/config"
	"github.com/decker502/shatterdial/pkg/replay"
)

func main() {
	configPath := "data/shatterdial.yaml"
	replayDir := "data/replays"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		replayDir = os.Args[2]
	}

	cfg, err := config.LoadDestructionConfig(configPath)
	if err != nil {
		fmt.Printf("❌ 配置无效: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 配置格式正确: %s\n", configPath)
	fmt.Printf("✅ 阈值: %v, 重建出口: %v\n", cfg.Thresholds, cfg.RebuildExit)
	fmt.Printf("✅ 容量: 裂纹 %d, 粒子 %d, 最大分支深度 %d\n",
		cfg.Cracks.Capacity, cfg.Particles.Capacity, cfg.Cracks.MaxGeneration)

	// 与代码默认值不一致时提示（不算错误）
	defaults := config.DefaultDestructionConfig()
	if cfg.IncreaseRate != defaults.IncreaseRate || cfg.IdleTimeoutMs != defaults.IdleTimeoutMs {
		fmt.Printf("⚠️  配置与内置默认值不同 (increaseRate %v/%v, idleTimeoutMs %d/%d)\n",
			cfg.IncreaseRate, defaults.IncreaseRate, cfg.IdleTimeoutMs, defaults.IdleTimeoutMs)
	}

	scripts, err := filepath.Glob(filepath.Join(replayDir, "*.yaml"))
	if err != nil {
		fmt.Printf("❌ 扫描回放脚本失败: %v\n", err)
		os.Exit(1)
	}

	invalid := 0
	for _, path := range scripts {
		script, err := replay.Load(path)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			invalid++
			continue
		}
		if _, err := script.ApplyConfig(cfg); err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			invalid++
			continue
		}
		fmt.Printf("✅ %s: %d 步\n", filepath.Base(path), len(script.Steps))
	}

	if invalid > 0 {
		fmt.Printf("❌ 有 %d 个回放脚本无效\n", invalid)
		os.Exit(1)
	}
}
