package main

import (
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/taigrr/flatshade/pkg/config"
	"github.com/taigrr/flatshade/pkg/render"
	"github.com/taigrr/flatshade/pkg/view"
)

// runWindow shows the viewer in a desktop window. It blocks until the
// window closes.
func runWindow(renderer *render.Renderer, cfg config.Config, name string) error {
	vc := cfg.ViewConfig()
	// ebiten reports held keys every tick, so input need not fade out.
	vc.Hold = 0

	g := &windowGame{
		renderer: renderer,
		state:    initialState(cfg, vc),
		cfg:      cfg,
		hud:      NewHUD(name),
	}

	ebiten.SetWindowTitle("flatshade - " + name)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(cfg.FPS)
	return ebiten.RunGame(g)
}

type windowGame struct {
	renderer *render.Renderer
	state    *view.State
	cfg      config.Config
	hud      *HUD
	img      *ebiten.Image
	frame    *render.Framebuffer
}

func (g *windowGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.state.Turn(keyAxis(ebiten.KeyD, ebiten.KeyA), keyAxis(ebiten.KeyW, ebiten.KeyS))
	g.state.Zoom(keyAxis(ebiten.KeyEqual, ebiten.KeyMinus))

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.state.ToggleFlatten()
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		g.state.ToggleCull()
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.state.ToggleWireframe()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.state.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.state.Impulse((rand.Float64()-0.5)*0.3, (rand.Float64()-0.5)*0.3)
	}

	g.state.Step(1 / float64(ebiten.TPS()))
	g.frame = g.renderer.Render(g.state.FrameParams())
	g.hud.UpdateFPS()

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if path, err := saveSnapshot(g.frame, g.cfg); err != nil {
			g.hud.Flash("snapshot failed")
		} else {
			g.hud.Flash("saved " + path)
		}
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		return
	}
	if g.img == nil {
		g.img = ebiten.NewImage(g.frame.Width, g.frame.Height)
	}
	g.img.WritePixels(g.frame.ToImage().Pix)
	screen.DrawImage(g.img, nil)
	ebitenutil.DebugPrint(screen, g.hud.Line(g.renderer.Stats(), g.state.Snapshot()))
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// keyAxis returns +1 while pos is held, -1 while neg is held, else 0.
func keyAxis(pos, neg ebiten.Key) float64 {
	var v float64
	if ebiten.IsKeyPressed(pos) {
		v++
	}
	if ebiten.IsKeyPressed(neg) {
		v--
	}
	return v
}
