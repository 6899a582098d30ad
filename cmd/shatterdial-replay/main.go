// shatterdial-replay 在虚拟时钟上执行回放脚本并输出逐步摘要
//
// 用法:
//
//	go run ./cmd/shatterdial-replay [--config path] [--seed n] data/replays/*.yaml
//
// 任一脚本断言失败时退出码为 1。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/decker502/shatterdial/pkg/config"
	"github.com/decker502/shatterdial/pkg/replay"
)

var (
	configFlag  = flag.String("config", "", "Base destruction config YAML (default: built-in values)")
	seedFlag    = flag.Int64("seed", 0, "Override the script seed (0 = keep)")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging")
	quietFlag   = flag.Bool("quiet", false, "Only print failures")
)

func main() {
	flag.Parse()

	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: shatterdial-replay [flags] script.yaml...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	base := config.ResolveDestructionConfig(*configFlag, nil)

	failed := 0
	for _, path := range flag.Args() {
		ok, err := runScript(path, base)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if !ok {
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("%d of %d scripts failed\n", failed, flag.NArg())
		os.Exit(1)
	}
	fmt.Printf("%d scripts passed\n", flag.NArg())
}

func runScript(path string, base *config.DestructionConfig) (bool, error) {
	script, err := replay.Load(path)
	if err != nil {
		return false, err
	}
	if *seedFlag != 0 {
		script.Seed = *seedFlag
	}

	result, err := replay.Run(script, base)
	if err != nil {
		return false, err
	}

	if !*quietFlag || !result.Passed() {
		result.WriteSummary(os.Stdout)
	}
	return result.Passed(), nil
}
