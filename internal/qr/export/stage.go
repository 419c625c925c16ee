package export

import (
	"context"
	"fmt"
	"image"
	"sync"
)

// Target is anything whose current pixels can be captured.
type Target interface {
	Snapshot(ctx context.Context) (image.Image, error)
}

// Stage is the live view. Show replaces the displayed frame; captures
// read whichever frame is current when they run.
type Stage struct {
	mu    sync.RWMutex
	frame *image.RGBA
}

func NewStage() *Stage { return &Stage{} }

// Show lays c out and makes it the displayed frame. On error the previous
// frame stays attached.
func (s *Stage) Show(c Composition) error {
	frame, err := layout(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	return nil
}

// Clear detaches the displayed frame.
func (s *Stage) Clear() {
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
}

// Attached reports whether a frame is displayed.
func (s *Stage) Attached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame != nil
}

// Snapshot copies the displayed frame. It fails with ErrCapture when
// nothing is attached.
func (s *Stage) Snapshot(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frame == nil {
		return nil, fmt.Errorf("%w: nothing attached to the stage", ErrCapture)
	}
	out := image.NewRGBA(s.frame.Bounds())
	copy(out.Pix, s.frame.Pix)
	return out, nil
}
