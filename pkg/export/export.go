// Package export writes rendered frames to image files.
//
// The format follows the file extension: .png, .webp, .tga or .bmp. Frames
// can be resampled and stamped with a one-line caption before encoding.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/taigrr/flatshade/pkg/render"
)

// ErrUnknownFormat is returned for file extensions with no encoder.
var ErrUnknownFormat = errors.New("unknown image format")

// Formats lists the supported extensions.
var Formats = []string{".png", ".webp", ".tga", ".bmp"}

// Options controls post-processing before encoding.
type Options struct {
	Scale   float64 // output size multiplier; 0 or 1 keeps the frame size
	Caption string  // drawn in the lower-left corner when non-empty
}

// Save writes img to path in the format named by its extension. Missing
// parent directories are created. Failures are reported as
// *render.PresentationError.
func Save(path string, img image.Image, opts Options) error {
	if err := save(path, img, opts); err != nil {
		return &render.PresentationError{Op: "export " + path, Err: err}
	}
	return nil
}

func save(path string, img image.Image, opts Options) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Encode(f, format, Prepare(img, opts))
}

// FormatOf returns the lower-cased extension of path if it is supported.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range Formats {
		if ext == f {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%q: %w", ext, ErrUnknownFormat)
}

// Encode writes img to w in format (an extension from Formats).
func Encode(w io.Writer, format string, img image.Image) error {
	switch format {
	case ".png":
		return png.Encode(w, img)
	case ".webp":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	case ".tga":
		return tga.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
}

// Prepare applies opts to img. The source is never modified; the result is
// a fresh image even when no option applies.
func Prepare(img image.Image, opts Options) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if opts.Scale > 0 && opts.Scale != 1 {
		w = max(int(math.Round(float64(w)*opts.Scale)), 1)
		h = max(int(math.Round(float64(h)*opts.Scale)), 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	if opts.Caption != "" {
		stampCaption(dst, opts.Caption)
	}
	return dst
}

var (
	captionInk  = color.RGBA{235, 235, 235, 255}
	captionBand = color.RGBA{0, 0, 0, 160}
)

// stampCaption draws text on a translucent band along the bottom edge.
func stampCaption(dst *image.RGBA, text string) {
	face := basicfont.Face7x13
	const pad = 4
	bandH := face.Height + 2*pad
	b := dst.Bounds()

	band := image.Rect(b.Min.X, b.Max.Y-bandH, b.Max.X, b.Max.Y).Intersect(b)
	draw.Draw(dst, band, image.NewUniform(captionBand), image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(captionInk),
		Face: face,
		Dot:  fixed.P(b.Min.X+pad, b.Max.Y-pad-face.Descent),
	}
	d.DrawString(text)
}

// SnapshotName returns a timestamped file name in dir with extension ext,
// for example dir/flatshade-20260102-150405.250.png. The stamp carries
// milliseconds so snapshots taken within the same second stay distinct.
func SnapshotName(dir string, t time.Time, ext string) string {
	return filepath.Join(dir, "flatshade-"+t.Format("20060102-150405.000")+ext)
}
