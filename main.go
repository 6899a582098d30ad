package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/shatterdial/pkg/app"
	"github.com/decker502/shatterdial/pkg/embedded"
)

var (
	configFlag  = flag.String("config", "", "Path to a destruction config YAML (default: built-in data/shatterdial.yaml)")
	seedFlag    = flag.Int64("seed", 0, "Random seed (0 = time based)")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
	reverseFlag = flag.Bool("reverse-recovers", false, "Reverse rotation lowers damage outside recovery")
	hudFlag     = flag.Bool("hud", false, "Show category and damage label")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	dial, err := app.NewApp(app.Config{
		Verbose:         *verboseFlag,
		ConfigPath:      *configFlag,
		Seed:            *seedFlag,
		ReverseRecovers: *reverseFlag,
		ShowHUD:         *hudFlag,
	})
	if err != nil {
		log.Fatal("初始化失败:", err)
	}

	ebiten.SetWindowSize(dial.WindowSize())
	ebiten.SetWindowTitle("Shatter Dial")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(dial); err != nil {
		log.Fatal(err)
	}

	dial.Shutdown()
	os.Exit(0)
}
