// shatterdial-tui 在终端里运行表盘（tcell 渲染，beep 扬声器音效）
//
// 用法:
//
//	go run ./cmd/shatterdial-tui [--config path] [--seed n] [--mute] [--log file]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/shatterdial/internal/tone"
	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
	"github.com/decker502/shatterdial/pkg/game"
	"github.com/decker502/shatterdial/pkg/systems"
	"github.com/decker502/shatterdial/pkg/tui"
)

var (
	configFlag  = flag.String("config", "", "Path to a destruction config YAML (default: built-in values)")
	seedFlag    = flag.Int64("seed", 0, "Random seed (0 = time based)")
	logFlag     = flag.String("log", "", "Write logs to this file (terminal is owned by the UI)")
	reverseFlag = flag.Bool("reverse-recovers", false, "Reverse rotation lowers damage outside recovery")
	muteFlag    = flag.Bool("mute", false, "Disable sound")
	volumeFlag  = flag.Float64("volume", 0.6, "Sound volume 0.0 ~ 1.0")
)

func main() {
	flag.Parse()
	os.Exit(realMain(run))
}

// realMain 打开日志后执行 run 并返回退出码，defer 在 os.Exit 之前执行
func realMain(run func() error) int {
	if *logFlag == "" {
		log.SetOutput(io.Discard)
	} else {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "shatterdial-tui: %v\n", err)
		return 1
	}
	return 0
}

func run() error {
	cfg := config.ResolveDestructionConfig(*configFlag, nil)
	if *reverseFlag {
		cfg.ReverseRecovers = true
	}

	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("[TUI] Random seed: %d", seed)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	// 事件写入日志；音频不可用时静音运行
	feedback := game.MultiFeedback{game.FeedbackFunc(func(cue components.Cue) {
		log.Printf("[TUI] Cue %s", cue)
	})}
	if !*muteFlag {
		spk, err := tone.NewSpeaker(*volumeFlag, seed)
		if err != nil {
			log.Printf("[TUI] Audio initialization failed: %v", err)
		} else {
			defer spk.Close()
			feedback = append(feedback, spk)
		}
	}

	input := tui.NewInput()
	renderer := tui.NewScreenRenderer(screen, cfg.Display)
	system := systems.NewDestructionSystem(cfg, rand.New(rand.NewSource(seed)), time.Now())
	engine := game.NewEngine(system, input, feedback, renderer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := engine.Run(ctx, cfg.TickDuration(), tui.Events(screen, input, renderer, cancel)); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	snap := engine.LastSnapshot()
	log.Printf("[TUI] Exit after %d ticks in %s (damage %.2f)", engine.Ticks(), snap.Category, snap.Damage)
	return nil
}
