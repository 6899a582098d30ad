package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/shatterdial/pkg/components"
	"github.com/decker502/shatterdial/pkg/config"
)

// Cell 一个终端字符格
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Frame 一帧的字符画，最后一行为状态栏
type Frame struct {
	Width, Height int
	Cells         []Cell
}

// 表面颜色，破坏越重越暗
var surfaceColors = map[components.Category]tcell.Color{
	components.CategoryPristine:     tcell.NewRGBColor(40, 70, 110),
	components.CategoryTiny:         tcell.NewRGBColor(38, 64, 100),
	components.CategorySmall:        tcell.NewRGBColor(36, 58, 90),
	components.CategoryMedium:       tcell.NewRGBColor(34, 50, 78),
	components.CategoryLarge:        tcell.NewRGBColor(30, 42, 64),
	components.CategoryShatter:      tcell.NewRGBColor(26, 32, 48),
	components.CategoryHeavyShatter: tcell.NewRGBColor(20, 24, 36),
	components.CategorySilence:      tcell.NewRGBColor(8, 8, 12),
	components.CategoryRebuilding:   tcell.NewRGBColor(24, 50, 60),
	components.CategoryRecovering:   tcell.NewRGBColor(32, 62, 84),
}

// NewFrame 将快照光栅化为 width x height 的字符画
//
// 表盘为椭圆：终端字符格高约为宽的两倍，横向半径取纵向的两倍。
func NewFrame(s components.Snapshot, display config.DisplayConfig, width, height int) *Frame {
	f := &Frame{Width: width, Height: height, Cells: make([]Cell, width*height)}
	for i := range f.Cells {
		f.Cells[i] = Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
	if width <= 0 || height <= 1 {
		return f
	}

	m := newMapping(display, width, height-1)
	surface := tcell.StyleDefault.Background(surfaceColors[s.Category])

	// 圆盘
	for row := 0; row < height-1; row++ {
		for col := 0; col < width; col++ {
			if m.inside(col, row) {
				f.set(col, row, ' ', surface)
			}
		}
	}

	// 裂纹：沿线段每半格采样一次
	for _, c := range s.Cracks {
		ex, ey := c.End()
		glyph := crackGlyph(c.Angle)
		style := surface.Foreground(gray(c.Alpha))
		x0, y0 := m.toCell(c.X, c.Y)
		x1, y1 := m.toCell(ex, ey)
		n := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))*2) + 1
		for i := 0; i <= n; i++ {
			t := float64(i) / float64(n)
			col := int(math.Round(x0 + (x1-x0)*t))
			row := int(math.Round(y0 + (y1-y0)*t))
			if m.inside(col, row) {
				f.set(col, row, glyph, style)
			}
		}
	}

	// 碎片
	for _, p := range s.Particles {
		x, y := m.toCell(p.X, p.Y)
		col, row := int(math.Round(x)), int(math.Round(y))
		if col < 0 || col >= width || row < 0 || row >= height-1 {
			continue
		}
		glyph := '.'
		if p.Alpha > 0.5 {
			glyph = '*'
		}
		style := f.at(col, row).Style.Foreground(tcell.NewRGBColor(230, 200, 160))
		if p.Mode == components.ParticleConverge {
			style = style.Foreground(tcell.NewRGBColor(140, 220, 255))
		}
		f.set(col, row, glyph, style)
	}

	f.text(0, height-1, StatusLine(s), tcell.StyleDefault.Reverse(true))
	return f
}

// StatusLine 状态栏文字
func StatusLine(s components.Snapshot) string {
	line := fmt.Sprintf(" %-12s %3d%% ", s.Category, int(math.Round(s.Damage*100)))
	if !s.Category.IsRecovery() && s.Damage > 0 && s.IdleFor >= 2e9 {
		line += fmt.Sprintf(" idle %ds ", int(s.IdleFor.Seconds()))
	}
	return line + " ←/→ rotate  space step back  r reset  q quit"
}

// Draw 把字符画写入屏幕并刷新
func (f *Frame) Draw(screen tcell.Screen) {
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			c := f.at(col, row)
			screen.SetContent(col, row, c.Rune, nil, c.Style)
		}
	}
	screen.Show()
}

// At 返回指定格子，越界返回空格
func (f *Frame) At(col, row int) Cell {
	if col < 0 || col >= f.Width || row < 0 || row >= f.Height {
		return Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
	return f.at(col, row)
}

// Row 返回一行文字（调试和测试用）
func (f *Frame) Row(row int) string {
	runes := make([]rune, f.Width)
	for col := range runes {
		runes[col] = f.At(col, row).Rune
	}
	return string(runes)
}

func (f *Frame) at(col, row int) Cell {
	return f.Cells[row*f.Width+col]
}

func (f *Frame) set(col, row int, r rune, style tcell.Style) {
	f.Cells[row*f.Width+col] = Cell{Rune: r, Style: style}
}

func (f *Frame) text(col, row int, s string, style tcell.Style) {
	for _, r := range s {
		if col >= f.Width {
			return
		}
		f.set(col, row, r, style)
		col++
	}
}

// mapping 画布像素坐标到字符格坐标
type mapping struct {
	cx, cy     float64 // 画布中心
	radius     float64 // 画布圆盘半径
	ccol, crow float64 // 字符格中心
	rx, ry     float64 // 字符格半径
}

func newMapping(display config.DisplayConfig, width, height int) mapping {
	cx, cy := display.Center()
	ry := float64(height-1) / 2
	rx := ry * 2
	if rx > float64(width-1)/2 {
		rx = float64(width-1) / 2
		ry = rx / 2
	}
	return mapping{
		cx: cx, cy: cy,
		radius: display.Radius,
		ccol:   float64(width-1) / 2,
		crow:   float64(height-1) / 2,
		rx:     rx,
		ry:     ry,
	}
}

func (m mapping) toCell(x, y float64) (float64, float64) {
	return m.ccol + (x-m.cx)/m.radius*m.rx, m.crow + (y-m.cy)/m.radius*m.ry
}

func (m mapping) inside(col, row int) bool {
	if m.rx <= 0 || m.ry <= 0 {
		return false
	}
	dx := (float64(col) - m.ccol) / m.rx
	dy := (float64(row) - m.crow) / m.ry
	return dx*dx+dy*dy <= 1
}

// crackGlyph 按方向选择线段字符（屏幕坐标，y 向下）
func crackGlyph(angle float64) rune {
	a := math.Mod(angle, math.Pi)
	if a < 0 {
		a += math.Pi
	}
	switch {
	case a < math.Pi/8 || a >= 7*math.Pi/8:
		return '-'
	case a < 3*math.Pi/8:
		return '\\'
	case a < 5*math.Pi/8:
		return '|'
	default:
		return '/'
	}
}

func gray(alpha float64) tcell.Color {
	v := int32(80 + 175*math.Max(0, math.Min(1, alpha)))
	return tcell.NewRGBColor(v, v, v)
}
