package render

import "fmt"

// PresentationError reports a failure to hand a finished frame to its
// destination (terminal flush, window upload, image file). The frame is
// dropped; the next one is rendered normally.
type PresentationError struct {
	Op  string
	Err error
}

func (e *PresentationError) Error() string {
	return fmt.Sprintf("present %s: %v", e.Op, e.Err)
}

func (e *PresentationError) Unwrap() error {
	return e.Err
}
