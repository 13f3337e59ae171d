package main

import (
	"errors"
	"testing"

	"github.com/taigrr/flatshade/pkg/render"
)

func TestPresentFailuresSkipsFrames(t *testing.T) {
	flush := &render.PresentationError{Op: "terminal", Err: errors.New("write: broken pipe")}
	p := presentFailures{limit: 3}

	for i := range 2 {
		if err := p.record(flush); err != nil {
			t.Fatalf("failure %d ended the viewer: %v", i+1, err)
		}
	}

	// A good frame resets the run.
	if err := p.record(nil); err != nil {
		t.Fatalf("record(nil) = %v", err)
	}
	for i := range 2 {
		if err := p.record(flush); err != nil {
			t.Fatalf("failure %d after recovery ended the viewer: %v", i+1, err)
		}
	}

	err := p.record(flush)
	if !errors.Is(err, errDisplayLost) {
		t.Fatalf("third consecutive failure = %v, want errDisplayLost", err)
	}
	var pe *render.PresentationError
	if !errors.As(err, &pe) {
		t.Errorf("error = %v, want it to wrap *render.PresentationError", err)
	}
}

func TestPresentFailuresDefaultLimit(t *testing.T) {
	p := presentFailures{limit: maxPresentFailures}
	cause := errors.New("flush")
	for i := range maxPresentFailures - 1 {
		if err := p.record(cause); err != nil {
			t.Fatalf("failure %d ended the viewer: %v", i+1, err)
		}
	}
	if err := p.record(cause); err == nil {
		t.Error("viewer kept running past maxPresentFailures")
	}
}
