package render

import (
	"math"
	"testing"
)

func TestFramebufferReset(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 5}, {17, 9}, {64, 64}} {
		fb := NewFramebuffer(size[0], size[1])
		fb.Depth[len(fb.Depth)-1] = 0.5
		fb.Pixels[0] = RGB(1, 1, 1)

		bg := RGB(8, 10, 14)
		fb.Reset(bg)

		for i := range fb.Pixels {
			if fb.Pixels[i] != bg {
				t.Fatalf("%dx%d: pixel %d = %v, want %v", size[0], size[1], i, fb.Pixels[i], bg)
			}
			if !math.IsInf(fb.Depth[i], 1) {
				t.Fatalf("%dx%d: depth %d = %v, want +Inf", size[0], size[1], i, fb.Depth[i])
			}
		}
	}
}

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	c := RGB(10, 20, 30)

	fb.SetPixel(-1, 0, c)
	fb.SetPixel(4, 0, c)
	fb.SetPixel(0, 3, c)
	for _, p := range fb.Pixels {
		if p == c {
			t.Fatal("out-of-bounds SetPixel wrote into the buffer")
		}
	}

	fb.SetPixel(3, 2, c)
	if fb.GetPixel(3, 2) != c {
		t.Error("in-bounds SetPixel lost")
	}
	if fb.GetPixel(9, 9) != (Color{}) {
		t.Error("out-of-bounds GetPixel not transparent")
	}
	if !math.IsInf(fb.DepthAt(-1, 0), 1) {
		t.Error("out-of-bounds DepthAt not +Inf")
	}
}

func TestNewFramebufferNegativeSize(t *testing.T) {
	fb := NewFramebuffer(-3, 10)
	if fb.Width != 0 || len(fb.Pixels) != 0 {
		t.Errorf("framebuffer = %dx%d with %d pixels, want empty", fb.Width, fb.Height, len(fb.Pixels))
	}
	fb.Reset(RGB(1, 2, 3))
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           [][2]int
	}{
		{"horizontal", 1, 1, 4, 1, [][2]int{{1, 1}, {2, 1}, {3, 1}, {4, 1}}},
		{"vertical reversed", 2, 3, 2, 0, [][2]int{{2, 0}, {2, 1}, {2, 2}, {2, 3}}},
		{"diagonal", 0, 0, 3, 3, [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"single point", 2, 2, 2, 2, [][2]int{{2, 2}}},
	}

	c := RGB(255, 255, 255)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(5, 5)
			fb.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1, c)

			count := 0
			for _, p := range fb.Pixels {
				if p == c {
					count++
				}
			}
			if count != len(tc.want) {
				t.Errorf("lit %d pixels, want %d", count, len(tc.want))
			}
			for _, p := range tc.want {
				if fb.GetPixel(p[0], p[1]) != c {
					t.Errorf("pixel %v not lit", p)
				}
			}
			for _, d := range fb.Depth {
				if !math.IsInf(d, 1) {
					t.Fatal("DrawLine touched the depth buffer")
				}
			}
		})
	}
}

func TestDrawLineClipsOffscreen(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.DrawLine(-5, 1, 8, 1, RGB(1, 1, 1))
	for x := range 4 {
		if fb.GetPixel(x, 1) != RGB(1, 1, 1) {
			t.Errorf("pixel (%d,1) not lit", x)
		}
	}
}

func TestToImage(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Reset(RGB(8, 10, 14))
	fb.SetPixel(2, 1, RGB(200, 100, 50))

	img := fb.ToImage()
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", b)
	}
	if got := img.RGBAAt(2, 1); got != RGB(200, 100, 50) {
		t.Errorf("RGBAAt(2,1) = %v", got)
	}
	if got := img.RGBAAt(0, 0); got != RGB(8, 10, 14) {
		t.Errorf("RGBAAt(0,0) = %v", got)
	}
}
