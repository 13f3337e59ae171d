package main

import (
	"errors"
	"fmt"

	"github.com/taigrr/flatshade/pkg/render"
)

// maxPresentFailures is how many frames in a row may fail to reach the
// display before the viewer gives up (about two seconds at 60 FPS).
const maxPresentFailures = 120

var errDisplayLost = errors.New("display unavailable")

// presentFailures counts consecutive presentation failures. A failed frame
// is logged and skipped; only a display that keeps failing ends the viewer.
type presentFailures struct {
	limit int
	run   int
}

// record notes the outcome of one Present call. It returns an error only
// once limit frames in a row have failed.
func (p *presentFailures) record(err error) error {
	if err == nil {
		p.run = 0
		return nil
	}

	p.run++
	render.Logger().Warn("present failed, frame skipped", "err", err, "consecutive", p.run)
	if p.run >= p.limit {
		return fmt.Errorf("%w after %d frames: %w", errDisplayLost, p.run, err)
	}
	return nil
}
