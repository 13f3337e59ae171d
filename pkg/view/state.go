// Package view holds the interactive viewing parameters: rotation angles,
// zoom and display toggles. Input handlers mutate a State from any
// goroutine; the frame loop takes one consistent snapshot per frame.
package view

import (
	"sync"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/flatshade/pkg/math3d"
	"github.com/taigrr/flatshade/pkg/render"
)

// Config sets rates and limits for a State.
type Config struct {
	FPS int // spring step rate

	YawRate   float64 // radians per second while a yaw key is held
	PitchRate float64 // radians per second while a pitch key is held
	ScaleRate float64 // view-scale units per second while a zoom key is held

	MinScale float64
	MaxScale float64

	FlattenScale math3d.Vec3 // model scale applied when flatten is on

	// Hold is the fraction of held-key input kept after each step. Terminals
	// report no key release, so input fades out; a toolkit that samples key
	// state every frame uses 0.
	Hold float64
}

// DefaultConfig returns the rates used by the viewers.
func DefaultConfig() Config {
	return Config{
		FPS:          60,
		YawRate:      1.6,
		PitchRate:    1.0,
		ScaleRate:    0.75,
		MinScale:     0.5,
		MaxScale:     2.0,
		FlattenScale: math3d.V3(1.10, 0.75, 1.10),
		Hold:         0.9,
	}
}

// Axis tracks one rotation angle. Position is changed directly by held keys
// and indirectly by Velocity, which a spring eases back to zero.
type Axis struct {
	Position float64
	Velocity float64
	spring   harmonica.Spring
	accel    float64
}

// NewAxis creates an axis whose velocity decays critically damped.
func NewAxis(fps int) Axis {
	return Axis{spring: harmonica.NewSpring(harmonica.FPS(max(fps, 1)), 4.0, 1.0)}
}

// Update applies velocity to position and decays the velocity.
func (a *Axis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// State is the mutable viewing state. Safe for concurrent use.
type State struct {
	mu  sync.Mutex
	cfg Config

	yaw, pitch Axis
	scale      float64

	// held input direction in [-1, 1] per control
	turnYaw, turnPitch, zoom float64

	flatten   bool
	cull      bool
	wireframe bool
}

// New creates a State at rest: no rotation, view scale 1, all toggles off.
func New(cfg Config) *State {
	if cfg.MaxScale < cfg.MinScale {
		cfg.MinScale, cfg.MaxScale = cfg.MaxScale, cfg.MinScale
	}
	s := &State{cfg: cfg}
	s.resetLocked()
	return s
}

func (s *State) resetLocked() {
	s.yaw = NewAxis(s.cfg.FPS)
	s.pitch = NewAxis(s.cfg.FPS)
	s.scale = s.clampScale(1)
	s.turnYaw, s.turnPitch, s.zoom = 0, 0, 0
}

func (s *State) clampScale(v float64) float64 {
	return min(max(v, s.cfg.MinScale), s.cfg.MaxScale)
}

// Reset returns rotation and zoom to rest. Toggles are kept.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Turn holds the yaw and pitch controls in a direction: +1, -1, or 0 to
// leave that control alone.
func (s *State) Turn(yaw, pitch float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if yaw != 0 {
		s.turnYaw = clampUnit(yaw)
	}
	if pitch != 0 {
		s.turnPitch = clampUnit(pitch)
	}
}

// Zoom holds the zoom control: +1 grows the view, -1 shrinks it.
func (s *State) Zoom(dir float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = clampUnit(dir)
}

// Release drops all held input immediately.
func (s *State) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turnYaw, s.turnPitch, s.zoom = 0, 0, 0
}

// Impulse adds angular velocity in radians per step, as from a mouse drag.
func (s *State) Impulse(yaw, pitch float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.yaw.Velocity += yaw
	s.pitch.Velocity += pitch
}

// SetPose places the model at the given angles and view scale and stops any
// spin.
func (s *State) SetPose(yaw, pitch, viewScale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.yaw.Position = yaw
	s.pitch.Position = pitch
	s.scale = s.clampScale(viewScale)
}

// Nudge changes the view scale by d at once, as from a scroll wheel.
func (s *State) Nudge(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scale = s.clampScale(s.scale + d)
}

// Step advances the state by dt seconds.
func (s *State) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.yaw.Position += s.turnYaw * s.cfg.YawRate * dt
	s.pitch.Position += s.turnPitch * s.cfg.PitchRate * dt
	s.scale = s.clampScale(s.scale + s.zoom*s.cfg.ScaleRate*dt)

	s.yaw.Update()
	s.pitch.Update()

	s.turnYaw *= s.cfg.Hold
	s.turnPitch *= s.cfg.Hold
	s.zoom *= s.cfg.Hold
}

// ToggleFlatten flips the flatten toggle and returns the new value.
func (s *State) ToggleFlatten() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flatten = !s.flatten
	return s.flatten
}

// ToggleCull flips back-face culling and returns the new value.
func (s *State) ToggleCull() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cull = !s.cull
	return s.cull
}

// ToggleWireframe flips the wireframe overlay and returns the new value.
func (s *State) ToggleWireframe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wireframe = !s.wireframe
	return s.wireframe
}

// Snapshot is a consistent copy of the state.
type Snapshot struct {
	Yaw, Pitch float64
	ViewScale  float64
	Flatten    bool
	Cull       bool
	Wireframe  bool
}

// Snapshot returns the current values.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Yaw:       s.yaw.Position,
		Pitch:     s.pitch.Position,
		ViewScale: s.scale,
		Flatten:   s.flatten,
		Cull:      s.cull,
		Wireframe: s.wireframe,
	}
}

// ModelMatrix returns RotateY(yaw) * RotateX(pitch), followed by the
// flatten scale when flatten is on.
func ModelMatrix(snap Snapshot, flattenScale math3d.Vec3) math3d.Mat4 {
	m := math3d.RotateY(snap.Yaw).Mul(math3d.RotateX(snap.Pitch))
	if snap.Flatten {
		m = m.Mul(math3d.Scale(flattenScale))
	}
	return m
}

// FrameParams returns the renderer inputs for the current state.
func (s *State) FrameParams() render.FrameParams {
	snap := s.Snapshot()
	return render.FrameParams{
		Model:         ModelMatrix(snap, s.cfg.FlattenScale),
		ViewScale:     snap.ViewScale,
		CullBackfaces: snap.Cull,
		Wireframe:     snap.Wireframe,
	}
}

func clampUnit(v float64) float64 {
	return min(max(v, -1), 1)
}
