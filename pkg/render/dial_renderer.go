// Package render 在 ebiten 屏幕上绘制圆形旋钮显示
//
// 只读取快照，不修改任何状态。所有随时间变化的效果（呼吸、闪光）
// 都由快照中的阶段停留时间计算。
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

// DialRenderer 实现 systems.Renderer，并在 Draw 中绘制最近的快照
type DialRenderer struct {
	display  config.DisplayConfig
	snapshot components.Snapshot
	face     *text.GoXFace
	showHUD  bool
}

// NewDialRenderer 创建渲染器
//
// 参数:
//   - display: 画布尺寸和旋钮半径
//   - showHUD: 是否在旋钮下方显示阶段和损伤值
func NewDialRenderer(display config.DisplayConfig, showHUD bool) *DialRenderer {
	return &DialRenderer{
		display: display,
		face:    text.NewGoXFace(basicfont.Face7x13),
		showHUD: showHUD,
	}
}

// Render 实现 systems.Renderer
func (r *DialRenderer) Render(s components.Snapshot) {
	r.snapshot = s
}

// Snapshot 最近一次的快照
func (r *DialRenderer) Snapshot() components.Snapshot {
	return r.snapshot
}

// SetShowHUD 切换 HUD
func (r *DialRenderer) SetShowHUD(show bool) {
	r.showHUD = show
}

// Draw 绘制旋钮
// 顺序：背景 → 表面 → 光晕 → 裂纹 → 粒子 → 边框遮罩 → HUD
func (r *DialRenderer) Draw(screen *ebiten.Image) {
	s := r.snapshot
	cx, cy := r.display.Center()
	fcx, fcy := float32(cx), float32(cy)
	radius := float32(r.display.Radius)

	screen.Fill(backgroundColor)

	surface := SurfaceColor(s.Category)
	if flash := FlashIntensity(s); flash > 0 {
		surface = mix(surface, crackColor, 0.35*flash)
	}
	vector.DrawFilledCircle(screen, fcx, fcy, radius, surface, true)

	if glow := GlowIntensity(s); glow > 0 {
		vector.StrokeCircle(screen, fcx, fcy, radius*0.9, 6, withAlpha(shardColor, 0.25*glow), true)
		vector.StrokeCircle(screen, fcx, fcy, radius*0.6, 3, withAlpha(shardColor, 0.15*glow), true)
	}

	for _, c := range s.Cracks {
		ex, ey := c.End()
		vector.StrokeLine(screen,
			float32(c.X), float32(c.Y), float32(ex), float32(ey),
			CrackWidth(c.Generation), withAlpha(crackColor, c.Alpha), true)
	}

	for _, p := range s.Particles {
		size := float32(1.2)
		if p.Mode == components.ParticleConverge {
			size = 1.6
		}
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), size, withAlpha(shardColor, p.Alpha), true)
	}

	// 遮住圆盘外的裂纹和粒子
	bezel := float32(r.display.Size)
	vector.StrokeCircle(screen, fcx, fcy, radius+bezel/2, bezel, backgroundColor, true)
	vector.StrokeCircle(screen, fcx, fcy, radius, 2, color.RGBA{R: 90, G: 90, B: 100, A: 255}, true)

	if r.showHUD {
		r.drawHUD(screen, s)
	}
}

// drawHUD 左上角显示阶段和损伤值
func (r *DialRenderer) drawHUD(screen *ebiten.Image, s components.Snapshot) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(4, 2)
	op.ColorScale.ScaleWithColor(hudColor)
	text.Draw(screen, hudLabel(s), r.face, op)

	if hint := idleHint(s); hint != "" {
		op := &text.DrawOptions{}
		op.GeoM.Translate(4, float64(r.display.Size)-16)
		op.ColorScale.ScaleWithColor(hudColor)
		text.Draw(screen, hint, r.face, op)
	}
}
