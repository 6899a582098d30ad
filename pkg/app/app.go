// Package app 提供表盘应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/shatterdial/internal/tone"
	"github.com/decker502/shatterdial/pkg/config"
	"github.com/decker502/shatterdial/pkg/embedded"
	"github.com/decker502/shatterdial/pkg/game"
	"github.com/decker502/shatterdial/pkg/input"
	"github.com/decker502/shatterdial/pkg/render"
	"github.com/decker502/shatterdial/pkg/systems"
	"github.com/decker502/shatterdial/pkg/utils"
)

// AppName gdata 存储使用的应用名
const AppName = "shatterdial"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 外部配置文件路径，为空则使用内置 data/shatterdial.yaml
	ConfigPath string
	// Seed 随机种子，0 表示使用当前时间
	Seed int64
	// ReverseRecovers 强制开启反向旋转恢复（覆盖配置文件）
	ReverseRecovers bool
	// ShowHUD 显示阶段/损伤文字
	ShowHUD bool
}

// App 是表盘应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	engine   *game.Engine
	renderer *render.DialRenderer
	settings *game.SettingsManager
	size     int
	verbose  bool
	showHUD  bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// LoadConfig 按启动配置加载破坏参数
//
// 外部文件加载失败时退回内置配置，内置配置也无效时使用代码默认值。
func LoadConfig(cfg Config) *config.DestructionConfig {
	builtin, err := embedded.ReadFile(embedded.DefaultConfigPath)
	if err != nil {
		log.Printf("[App] Warning: failed to read embedded config: %v", err)
		builtin = nil
	}
	dc := config.ResolveDestructionConfig(cfg.ConfigPath, builtin)
	if cfg.ReverseRecovers {
		dc.ReverseRecovers = true
	}
	return dc
}

// NewRand 返回以 seed 为种子的随机源，seed 为 0 时使用当前时间
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("[App] Random seed: %d", seed)
	return rand.New(rand.NewSource(seed))
}

// NewApp 创建并初始化表盘应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	// 移动端屏幕上没有键盘切换 HUD 的方式，默认显示
	if utils.IsMobile() {
		cfg.ShowHUD = true
		log.Printf("[App] Mobile layout enabled")
	}

	dc := LoadConfig(cfg)
	rng := NewRand(cfg.Seed)
	now := time.Now()

	// 设置存储，失败时进入降级模式
	var gdataManager *gdata.Manager
	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[App] Warning: storage unavailable: %v", err)
	} else if m, err := gdata.Open(gdata.Config{AppName: AppName}); err != nil {
		log.Printf("[App] Warning: failed to open gdata: %v", err)
	} else {
		gdataManager = m
	}
	settings, err := game.NewSettingsManager(gdataManager)
	if err != nil {
		return nil, fmt.Errorf("设置加载失败: %w", err)
	}

	// 初始化音频上下文
	audioContext := audio.NewContext(int(tone.SampleRate))
	audioManager := game.NewAudioManager(audioContext, settings)
	log.Printf("[App] AudioManager initialized")

	cx, cy := dc.Display.Center()
	adapter := input.NewEbitenAdapter(input.DefaultOptions(cx, cy, dc.Display.Radius))
	renderer := render.NewDialRenderer(dc.Display, cfg.ShowHUD)
	system := systems.NewDestructionSystem(dc, rng, now)
	engine := game.NewEngine(system, adapter, audioManager, renderer)

	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	log.Printf("[App] Started: idle timeout %v, reverseRecovers=%v", dc.IdleTimeout(), dc.ReverseRecovers)

	return &App{
		engine:   engine,
		renderer: renderer,
		settings: settings,
		size:     int(dc.Display.Size),
		verbose:  cfg.Verbose,
		showHUD:  cfg.ShowHUD,
	}, nil
}

// Update 更新表盘逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.WindowSize())
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}
	// F1 切换 HUD，M 静音
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.showHUD = !a.showHUD
		a.renderer.SetShowHUD(a.showHUD)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		s := a.settings.GetSettings()
		a.settings.SetSoundEnabled(!s.SoundEnabled)
		a.saveSettings()
	}

	a.engine.Step(time.Now())
	return nil
}

func (a *App) toggleFullscreen() {
	fullscreen := !ebiten.IsFullscreen()
	if !fullscreen {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
	} else {
		ebiten.SetFullscreen(true)
	}
	a.settings.SetFullscreen(fullscreen)
	a.saveSettings()
}

func (a *App) saveSettings() {
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: failed to save settings: %v", err)
	}
}

// Draw 绘制表盘画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.renderer.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸（方形画布）
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.size, a.size
}

// WindowSize 返回默认窗口尺寸（画布的两倍）
func (a *App) WindowSize() (int, int) {
	return a.size * 2, a.size * 2
}

// Engine 返回主循环
func (a *App) Engine() *game.Engine {
	return a.engine
}

// Shutdown 保存设置，退出前调用
func (a *App) Shutdown() {
	a.saveSettings()
	snap := a.engine.LastSnapshot()
	log.Printf("[App] Shutdown after %d ticks in %s (damage %.2f)", a.engine.Ticks(), snap.Category, snap.Damage)
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
