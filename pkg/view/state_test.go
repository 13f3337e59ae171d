package view

import (
	"math"
	"sync"
	"testing"

	"github.com/taigrr/flatshade/pkg/math3d"
)

func noHold() Config {
	cfg := DefaultConfig()
	cfg.Hold = 0
	return cfg
}

func TestNewAtRest(t *testing.T) {
	snap := New(DefaultConfig()).Snapshot()
	want := Snapshot{ViewScale: 1}
	if snap != want {
		t.Errorf("Snapshot = %+v, want %+v", snap, want)
	}
}

func TestTurnRates(t *testing.T) {
	tests := []struct {
		name             string
		yaw, pitch       float64
		wantYaw, wantPit float64
	}{
		{"yaw left", 1, 0, 0.8, 0},
		{"yaw right", -1, 0, -0.8, 0},
		{"pitch up", 0, 1, 0, 0.5},
		{"both", 1, -1, 0.8, -0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(noHold())
			s.Turn(tc.yaw, tc.pitch)
			s.Step(0.5)

			snap := s.Snapshot()
			if math.Abs(snap.Yaw-tc.wantYaw) > 1e-12 || math.Abs(snap.Pitch-tc.wantPit) > 1e-12 {
				t.Errorf("yaw, pitch = %v, %v, want %v, %v", snap.Yaw, snap.Pitch, tc.wantYaw, tc.wantPit)
			}

			// Input was not held again, so the next step does nothing.
			s.Step(0.5)
			if again := s.Snapshot(); again != snap {
				t.Errorf("released input kept turning: %+v -> %+v", snap, again)
			}
		})
	}
}

func TestTurnFades(t *testing.T) {
	s := New(DefaultConfig())
	s.Turn(1, 0)
	s.Step(0.1)
	first := s.Snapshot().Yaw
	s.Step(0.1)
	second := s.Snapshot().Yaw - first

	if second <= 0 || second >= first {
		t.Errorf("second step turned %v after %v, want a smaller positive amount", second, first)
	}
}

func TestZoomClamped(t *testing.T) {
	s := New(noHold())

	s.Zoom(1)
	s.Step(0.4)
	if got := s.Snapshot().ViewScale; math.Abs(got-1.3) > 1e-12 {
		t.Errorf("ViewScale = %v, want 1.3", got)
	}

	s.Zoom(1)
	s.Step(10)
	if got := s.Snapshot().ViewScale; got != 2 {
		t.Errorf("ViewScale = %v, want 2", got)
	}

	s.Zoom(-1)
	s.Step(10)
	if got := s.Snapshot().ViewScale; got != 0.5 {
		t.Errorf("ViewScale = %v, want 0.5", got)
	}
}

func TestImpulseDecays(t *testing.T) {
	s := New(DefaultConfig())
	s.Impulse(0.1, -0.05)

	var prev float64
	for i := range 300 {
		s.Step(1.0 / 60)
		yaw := s.Snapshot().Yaw
		if i > 0 && yaw < prev {
			t.Fatalf("step %d: yaw went backwards %v -> %v", i, prev, yaw)
		}
		prev = yaw
	}

	if prev <= 0.1 {
		t.Errorf("yaw = %v after impulse, want > 0.1", prev)
	}
	s.Step(1.0 / 60)
	if moved := s.Snapshot().Yaw - prev; moved > 1e-6 {
		t.Errorf("still moving %v per step after decay", moved)
	}
	if s.Snapshot().Pitch >= 0 {
		t.Errorf("pitch = %v, want negative", s.Snapshot().Pitch)
	}
}

func TestToggles(t *testing.T) {
	s := New(DefaultConfig())

	if !s.ToggleFlatten() || !s.ToggleCull() || !s.ToggleWireframe() {
		t.Fatal("first toggle should turn on")
	}
	snap := s.Snapshot()
	if !snap.Flatten || !snap.Cull || !snap.Wireframe {
		t.Errorf("Snapshot = %+v, want all toggles on", snap)
	}

	s.Turn(1, 1)
	s.Step(1)
	s.Reset()
	snap = s.Snapshot()
	if snap.Yaw != 0 || snap.Pitch != 0 || snap.ViewScale != 1 {
		t.Errorf("Reset left %+v", snap)
	}
	if !snap.Flatten || !snap.Cull || !snap.Wireframe {
		t.Error("Reset cleared toggles")
	}

	if s.ToggleCull() {
		t.Error("second toggle should turn off")
	}
}

func TestModelMatrix(t *testing.T) {
	flat := math3d.V3(1.10, 0.75, 1.10)

	t.Run("identity at rest", func(t *testing.T) {
		got := ModelMatrix(Snapshot{}, flat).MulPoint(math3d.V3(1, 2, 3))
		if got != math3d.V3(1, 2, 3) {
			t.Errorf("got %v, want (1,2,3)", got)
		}
	})

	t.Run("flatten scales before rotating", func(t *testing.T) {
		snap := Snapshot{Yaw: math.Pi / 2, Flatten: true}
		got := ModelMatrix(snap, flat).MulPoint(math3d.V3(1, 1, 0))
		// Scale gives (1.1, 0.75, 0); a quarter turn about Y moves X to -Z.
		want := math3d.V3(0, 0.75, -1.1)
		if got.Sub(want).Len() > 1e-12 {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("yaw then pitch order", func(t *testing.T) {
		snap := Snapshot{Yaw: 0.7, Pitch: -0.4}
		got := ModelMatrix(snap, flat)
		want := math3d.RotateY(0.7).Mul(math3d.RotateX(-0.4))
		if got != want {
			t.Errorf("ModelMatrix = %v, want RotateY*RotateX", got)
		}
	})
}

func TestFrameParams(t *testing.T) {
	s := New(DefaultConfig())
	s.ToggleCull()
	s.ToggleFlatten()

	p := s.FrameParams()
	if !p.CullBackfaces || p.Wireframe || p.ViewScale != 1 {
		t.Errorf("FrameParams = %+v", p)
	}
	if got := p.Model.MulPoint(math3d.V3(1, 1, 1)); got != math3d.V3(1.10, 0.75, 1.10) {
		t.Errorf("model applied to (1,1,1) = %v, want flatten scale", got)
	}
}

func TestConcurrentInput(t *testing.T) {
	s := New(DefaultConfig())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				s.Turn(1, -1)
				s.Impulse(0.001, 0)
				s.ToggleWireframe()
			}
		}()
	}
	for range 200 {
		s.Step(1.0 / 60)
		_ = s.FrameParams()
	}
	wg.Wait()

	if s.Snapshot().Yaw <= 0 {
		t.Error("concurrent input lost")
	}
}

func TestSetPose(t *testing.T) {
	s := New(DefaultConfig())
	s.Impulse(0.5, 0.5)
	s.SetPose(0.3, -0.2, 5)

	snap := s.Snapshot()
	if snap.Yaw != 0.3 || snap.Pitch != -0.2 || snap.ViewScale != 2 {
		t.Errorf("Snapshot = %+v, want yaw 0.3, pitch -0.2, clamped scale 2", snap)
	}

	s.Step(1.0 / 60)
	if again := s.Snapshot(); again != snap {
		t.Errorf("SetPose left spin behind: %+v -> %+v", snap, again)
	}
}

func TestNudge(t *testing.T) {
	s := New(DefaultConfig())
	s.Nudge(0.25)
	if got := s.Snapshot().ViewScale; got != 1.25 {
		t.Errorf("ViewScale = %v, want 1.25", got)
	}
	for range 20 {
		s.Nudge(-0.1)
	}
	if got := s.Snapshot().ViewScale; got != 0.5 {
		t.Errorf("ViewScale = %v, want 0.5", got)
	}
}
