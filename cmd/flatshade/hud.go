package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/taigrr/flatshade/pkg/render"
	"github.com/taigrr/flatshade/pkg/view"
)

// HUD builds the one-line status shown under the image.
type HUD struct {
	filename  string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	message   string
	msgUntil  time.Time
}

// NewHUD creates a HUD for the named model.
func NewHUD(filename string) *HUD {
	return &HUD{filename: filename, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Flash shows msg in place of the key hints for a few seconds.
func (h *HUD) Flash(msg string) {
	h.message = msg
	h.msgUntil = time.Now().Add(3 * time.Second)
}

// Line formats the status line for the last frame.
func (h *HUD) Line(stats render.FrameStats, snap view.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3.0f fps  %s  %d/%d tris", h.fps, h.filename, stats.Drawn, stats.Triangles)
	if stats.Culled > 0 {
		fmt.Fprintf(&b, " (%d culled)", stats.Culled)
	}
	fmt.Fprintf(&b, "  x%.2f  %s flat %s cull %s wire",
		snap.ViewScale, check(snap.Flatten), check(snap.Cull), check(snap.Wireframe))

	if h.message != "" && time.Now().Before(h.msgUntil) {
		b.WriteString("  " + h.message)
	} else {
		b.WriteString("  wasd turn  -/= zoom  c b x toggle  p snap  esc quit")
	}
	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
