// flatshade - flat-shaded mesh viewer
// Renders OBJ, STL and glTF meshes with an orthographic software
// rasterizer, in the terminal, in a desktop window, or to an image file.
//
// Controls:
//
//	A/D         - Yaw left/right
//	W/S         - Pitch up/down
//	-/=         - Zoom out/in
//	Mouse drag  - Spin
//	Space       - Random spin
//	C           - Toggle flatten scale
//	B           - Toggle back-face culling
//	X           - Toggle wireframe overlay
//	R           - Reset view
//	P           - Save a snapshot
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/flatshade/pkg/config"
	"github.com/taigrr/flatshade/pkg/export"
	"github.com/taigrr/flatshade/pkg/models"
	"github.com/taigrr/flatshade/pkg/render"
	"github.com/taigrr/flatshade/pkg/view"
)

var (
	configPath = flag.String("config", "", "Path to a JSON config file")
	outPath    = flag.String("out", "", "Render one frame to this image file (.png, .webp, .tga, .bmp) and exit")
	window     = flag.Bool("window", false, "Open a desktop window instead of drawing in the terminal")
	verbose    = flag.Bool("v", false, "Log per-frame statistics to stderr")
	caption    = flag.String("caption", "", "Caption stamped on saved images")

	width     = flag.Int("w", 0, "Frame width in pixels (window and -out; default 900)")
	height    = flag.Int("h", 0, "Frame height in pixels (window and -out; default 700)")
	targetFPS = flag.Int("fps", 0, "Target FPS (default 60)")
	bgColor   = flag.String("bg", "", "Background color (R,G,B or #rrggbb)")
	baseColor = flag.String("color", "", "Surface color (R,G,B or #rrggbb)")
	cull      = flag.Bool("cull", false, "Start with back-face culling on")
	wire      = flag.Bool("wire", false, "Start with the wireframe overlay on")
	subpixel  = flag.Bool("subpixel", false, "Keep fractional screen coordinates")
	snapDir   = flag.String("snapdir", "", "Directory for snapshots (default .)")
	snapFmt   = flag.String("snapfmt", "", "Snapshot format: png, webp, tga or bmp")

	yaw     = flag.Float64("yaw", 0, "Initial yaw in radians")
	pitch   = flag.Float64("pitch", 0, "Initial pitch in radians")
	zoom    = flag.Float64("scale", 1, "Initial view scale")
	flatten = flag.Bool("flatten", false, "Start with the flatten scale applied")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "flatshade - flat-shaded mesh viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: flatshade [options] <model.obj|model.stl|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  -/=         - Zoom out/in\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Spin\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  C           - Toggle flatten\n")
		fmt.Fprintf(os.Stderr, "  B           - Toggle back-face culling\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  P           - Save snapshot\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	cfg.Resolve(config.Flags{
		Width:          *width,
		Height:         *height,
		FPS:            *targetFPS,
		Background:     *bgColor,
		BaseColor:      *baseColor,
		Cull:           *cull,
		Wireframe:      *wire,
		Subpixel:       *subpixel,
		SnapshotDir:    *snapDir,
		SnapshotFormat: *snapFmt,
	})
	return cfg, cfg.Validate()
}

func setupLogging() {
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(modelPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.RenderOptions()
	if err != nil {
		return err
	}

	// The terminal viewer owns the tty; only log there when asked to.
	if *outPath != "" || *window || *verbose {
		setupLogging()
	}

	mesh, err := models.Load(modelPath, cfg.TargetPixels())
	if err != nil {
		return err
	}

	fmt.Printf("Loaded: %s (%d vertices, %d triangles)\n", filepath.Base(modelPath), mesh.VertexCount(), mesh.TriangleCount())
	render.Logger().Debug("mesh loaded",
		slog.String("path", modelPath),
		slog.Any("center", mesh.Center),
		slog.Float64("scale", mesh.Scale),
	)

	renderer := render.NewRenderer(mesh, opts)

	switch {
	case *outPath != "":
		return renderToFile(renderer, cfg)
	case *window:
		return runWindow(renderer, cfg, filepath.Base(modelPath))
	default:
		return runTerminal(mesh, renderer, cfg, filepath.Base(modelPath))
	}
}

// initialState applies the -yaw, -pitch, -scale and -flatten flags and the
// configured toggles.
func initialState(cfg config.Config, vc view.Config) *view.State {
	state := view.New(vc)
	state.SetPose(*yaw, *pitch, *zoom)
	if *flatten {
		state.ToggleFlatten()
	}
	if cfg.Cull {
		state.ToggleCull()
	}
	if cfg.Wireframe {
		state.ToggleWireframe()
	}
	return state
}

func renderToFile(renderer *render.Renderer, cfg config.Config) error {
	state := initialState(cfg, cfg.ViewConfig())

	fb := renderer.Render(state.FrameParams())
	stats := renderer.Stats()
	if err := export.Save(*outPath, fb.ToImage(), export.Options{Scale: cfg.SnapshotScale, Caption: *caption}); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d of %d triangles drawn, %d culled)\n", *outPath, stats.Drawn, stats.Triangles, stats.Culled)
	return nil
}

// saveSnapshot writes the current frame into the snapshot directory and
// returns the file name.
func saveSnapshot(fb *render.Framebuffer, cfg config.Config) (string, error) {
	path := export.SnapshotName(cfg.SnapshotDir, time.Now(), cfg.SnapshotFormat)
	if err := export.Save(path, fb.ToImage(), export.Options{Scale: cfg.SnapshotScale, Caption: *caption}); err != nil {
		render.Logger().Warn("snapshot failed", "err", err)
		return "", err
	}
	return path, nil
}

func runTerminal(mesh *models.Mesh, renderer *render.Renderer, cfg config.Config, name string) error {
	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	presenter := render.NewTerminalPresenter(term, cols, rows)
	state := initialState(cfg, cfg.ViewConfig())
	hud := NewHUD(name)

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// The frame loop owns the presenter and framebuffer; the event
	// goroutine hands resizes and snapshot requests over.
	resized := make(chan uv.WindowSizeEvent, 1)
	snapshot := make(chan struct{}, 1)

	go func() {
		var mouseDown bool
		var lastX, lastY int

		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case <-resized:
				default:
				}
				resized <- ev

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					cancel()
					return
				case ev.MatchString("a", "left"):
					state.Turn(-1, 0)
				case ev.MatchString("d", "right"):
					state.Turn(1, 0)
				case ev.MatchString("w", "up"):
					state.Turn(0, 1)
				case ev.MatchString("s", "down"):
					state.Turn(0, -1)
				case ev.MatchString("=", "+"):
					state.Zoom(1)
				case ev.MatchString("-", "_"):
					state.Zoom(-1)
				case ev.MatchString("c"):
					state.ToggleFlatten()
				case ev.MatchString("b"):
					state.ToggleCull()
				case ev.MatchString("x"):
					state.ToggleWireframe()
				case ev.MatchString("r"):
					state.Reset()
				case ev.MatchString("space"):
					state.Impulse((rand.Float64()-0.5)*0.3, (rand.Float64()-0.5)*0.3)
				case ev.MatchString("p"):
					select {
					case snapshot <- struct{}{}:
					default:
					}
				}

			case uv.KeyReleaseEvent:
				if ev.MatchString("a", "d", "w", "s", "left", "right", "up", "down", "-", "=", "+", "_") {
					state.Release()
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastX, lastY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					state.Impulse(float64(ev.X-lastX)*0.03, float64(lastY-ev.Y)*0.03)
					lastX, lastY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					state.Nudge(0.1)
				case uv.MouseWheelDown:
					state.Nudge(-0.1)
				}
			}
		}
	}()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	fit := func() {
		w, h := presenter.FramebufferSize()
		renderer.Resize(w, h)
		mesh.Fit(float64(min(w, h)) * cfg.FitRatio)
	}
	fit()

	targetDuration := time.Second / time.Duration(cfg.FPS)
	lastFrame := time.Now()
	failures := presentFailures{limit: maxPresentFailures}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-resized:
			term.Erase()
			term.Resize(ev.Width, ev.Height)
			presenter.Resize(ev.Width, ev.Height)
			fit()
		case <-snapshot:
			if path, err := saveSnapshot(renderer.Framebuffer(), cfg); err != nil {
				hud.Flash("snapshot failed")
			} else {
				hud.Flash("saved " + path)
			}
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		state.Step(dt)
		fb := renderer.Render(state.FrameParams())

		hud.UpdateFPS()
		err := presenter.Present(fb, hud.Line(renderer.Stats(), state.Snapshot()))
		if err != nil {
			hud.Flash("display error, frame skipped")
		}
		if err := failures.record(err); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
