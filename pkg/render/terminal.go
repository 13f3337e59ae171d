package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the color buffer onto scr inside area using upper half blocks:
// each cell shows two framebuffer rows, the top as foreground and the bottom
// as background. Cell (col, row) of area samples pixels (col, 2*row) and
// (col, 2*row+1) relative to area's origin.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

// cellColor returns nil for transparent pixels so the terminal's own
// background shows through.
func cellColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Display is a cell screen that can flush its contents, such as
// *uv.Terminal.
type Display interface {
	uv.Screen
	Display() error
}

// TerminalPresenter shows frames on a cell display, reserving the bottom
// HUDRows rows for a status line.
type TerminalPresenter struct {
	dst     Display
	cols    int
	rows    int
	HUDRows int
}

// NewTerminalPresenter creates a presenter for a display of cols x rows
// cells.
func NewTerminalPresenter(dst Display, cols, rows int) *TerminalPresenter {
	return &TerminalPresenter{dst: dst, cols: cols, rows: rows, HUDRows: 1}
}

// Resize records a new display size.
func (p *TerminalPresenter) Resize(cols, rows int) {
	p.cols, p.rows = cols, rows
}

// FramebufferSize returns the pixel size a frame should have to fill the
// display above the HUD.
func (p *TerminalPresenter) FramebufferSize() (width, height int) {
	return max(p.cols, 0), max(p.rows-p.HUDRows, 0) * 2
}

// Present draws fb and the HUD text, then flushes the display.
func (p *TerminalPresenter) Present(fb *Framebuffer, hud string) error {
	imageRows := max(p.rows-p.HUDRows, 0)
	fb.Draw(p.dst, uv.Rect(0, 0, p.cols, imageRows))

	if p.HUDRows > 0 && imageRows < p.rows {
		p.drawText(imageRows, hud)
	}

	if err := p.dst.Display(); err != nil {
		return &PresentationError{Op: "terminal", Err: err}
	}
	return nil
}

// drawText writes s on row using the display's width method, so wide runes
// take two cells, and blanks the rest of the row. Zero-width runes are
// dropped and a rune that would cross the right edge ends the text.
func (p *TerminalPresenter) drawText(row int, s string) {
	method := p.dst.WidthMethod()
	col := 0
	for _, r := range s {
		cell := uv.NewCell(method, string(r))
		if cell.Width == 0 {
			continue
		}
		if col+cell.Width > p.cols {
			break
		}
		p.dst.SetCell(col, row, cell)
		col += cell.Width
	}
	for ; col < p.cols; col++ {
		p.dst.SetCell(col, row, &uv.Cell{Content: " ", Width: 1})
	}
}
