package capture

import (
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/cardsight/internal/imaging"
)

// ImageSource serves captures from an in-memory screen image. It is used to
// replay saved screenshots and to drive the pipeline in tests.
type ImageSource struct {
	mu     sync.RWMutex
	screen image.Image
}

// NewImageSource creates a source backed by screen.
func NewImageSource(screen image.Image) *ImageSource {
	return &ImageSource{screen: screen}
}

// SetScreen replaces the backing image. Captures already returned are not
// affected because every capture copies its pixels.
func (s *ImageSource) SetScreen(screen image.Image) {
	s.mu.Lock()
	s.screen = screen
	s.mu.Unlock()
}

// Capture copies rect out of the backing image.
func (s *ImageSource) Capture(rect image.Rectangle) (image.Image, error) {
	s.mu.RLock()
	screen := s.screen
	s.mu.RUnlock()

	if screen == nil {
		return nil, fmt.Errorf("%w: no screen image", ErrCaptureUnavailable)
	}
	if !rect.In(screen.Bounds()) {
		return nil, fmt.Errorf("%w: %v outside screen %v", ErrCaptureUnavailable, rect, screen.Bounds())
	}
	img, err := imaging.Crop(screen, rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	return img, nil
}

// FileSource serves captures from a screenshot file on disk. The file is
// decoded again on every capture so that an external tool can keep
// overwriting it with fresh frames.
type FileSource struct {
	Path string
}

// Capture loads the screenshot and copies rect out of it.
func (f FileSource) Capture(rect image.Rectangle) (image.Image, error) {
	screen, err := imaging.LoadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	return NewImageSource(screen).Capture(rect)
}
