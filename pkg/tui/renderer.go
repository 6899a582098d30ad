package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

// ScreenRenderer 实现 systems.Renderer，把快照画到 tcell 屏幕上
type ScreenRenderer struct {
	screen   tcell.Screen
	display  config.DisplayConfig
	snapshot components.Snapshot
	frames   uint64
}

// NewScreenRenderer 创建终端渲染器
func NewScreenRenderer(screen tcell.Screen, display config.DisplayConfig) *ScreenRenderer {
	return &ScreenRenderer{screen: screen, display: display}
}

// Render 保存快照并立即重绘
func (r *ScreenRenderer) Render(s components.Snapshot) {
	r.snapshot = s
	r.Redraw()
}

// Redraw 按当前终端尺寸重绘最近一次快照（终端尺寸变化时调用）
func (r *ScreenRenderer) Redraw() {
	w, h := r.screen.Size()
	NewFrame(r.snapshot, r.display, w, h).Draw(r.screen)
	r.frames++
}

// Frames 已绘制的帧数
func (r *ScreenRenderer) Frames() uint64 {
	return r.frames
}
